// Package event defines process lifecycle events and their queue-backed
// publisher and listener.
package event
