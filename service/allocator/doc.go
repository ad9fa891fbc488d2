// Package allocator owns the flat memory pool. It records at most one
// reservation per process id and guarantees that the sum of reservations never
// exceeds the configured capacity. There is no fragmentation model: any request
// that fits in the free total is granted.
package allocator
