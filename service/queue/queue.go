// Package queue provides a strict FIFO ordering keyed by a comparable id with
// head inspection and keyed removal.
package queue

// FIFO keeps items in arrival order
type FIFO[K comparable, T any] struct {
	items       []T
	keySelector func(T) K
}

// New creates an empty FIFO; keySelector extracts the identity of an item
func New[K comparable, T any](keySelector func(T) K) *FIFO[K, T] {
	return &FIFO[K, T]{keySelector: keySelector}
}

// Push appends item at the tail
func (q *FIFO[K, T]) Push(items ...T) {
	q.items = append(q.items, items...)
}

// PushFront puts item back at the head
func (q *FIFO[K, T]) PushFront(item T) {
	q.items = append([]T{item}, q.items...)
}

// Peek returns the head without removing it
func (q *FIFO[K, T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// Pop removes and returns the head
func (q *FIFO[K, T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	head := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return head, true
}

// Remove detaches the item with the given key preserving the order of the rest
func (q *FIFO[K, T]) Remove(key K) (T, bool) {
	var zero T
	for i, item := range q.items {
		if q.keySelector(item) != key {
			continue
		}
		copy(q.items[i:], q.items[i+1:])
		q.items[len(q.items)-1] = zero
		q.items = q.items[:len(q.items)-1]
		return item, true
	}
	return zero, false
}

// Lookup returns the item with the given key
func (q *FIFO[K, T]) Lookup(key K) (T, bool) {
	var zero T
	for _, item := range q.items {
		if q.keySelector(item) == key {
			return item, true
		}
	}
	return zero, false
}

// Len returns the number of queued items
func (q *FIFO[K, T]) Len() int {
	return len(q.items)
}

// Keys returns item keys head first
func (q *FIFO[K, T]) Keys() []K {
	ret := make([]K, 0, len(q.items))
	for _, item := range q.items {
		ret = append(ret, q.keySelector(item))
	}
	return ret
}

// Items returns a copy of the queued items head first
func (q *FIFO[K, T]) Items() []T {
	return append([]T(nil), q.items...)
}
