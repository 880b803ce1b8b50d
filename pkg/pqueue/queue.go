package pqueue

import "errors"

// ErrEmpty is the panic value of Dequeue on an empty queue.
var ErrEmpty = errors.New("priority queue is empty")

// CompareFunc orders two values. It returns a negative number when a sorts
// before b, a positive number when b sorts before a, and zero otherwise.
type CompareFunc[T any] func(a, b T) int

// Queue is a binary min-heap ordered by a CompareFunc.
//
// The backing slice only grows; size tracks the live prefix so that
// dequeues shrink the heap without reallocating.
type Queue[T comparable] struct {
	arr  []T
	size int
	cmp  CompareFunc[T]
}

// New creates an empty queue ordered by cmp.
func New[T comparable](cmp CompareFunc[T]) *Queue[T] {
	return &Queue[T]{cmp: cmp}
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.size }

// Cap returns the capacity of the backing storage.
func (q *Queue[T]) Cap() int { return len(q.arr) }

// Enqueue adds v to the queue.
func (q *Queue[T]) Enqueue(v T) {
	if q.size < len(q.arr) {
		q.arr[q.size] = v
	} else {
		q.arr = append(q.arr, v)
	}
	q.size++
	q.up(q.size - 1)
}

// Dequeue removes and returns the minimum element.
// It panics with ErrEmpty if the queue is empty; callers guard with Len.
func (q *Queue[T]) Dequeue() T {
	if q.size == 0 {
		panic(ErrEmpty)
	}
	res := q.arr[0]
	q.removeAt(0)
	return res
}

// Peek returns the minimum element without removing it.
// The second result is false if the queue is empty.
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.arr[0], true
}

// Remove deletes the first element equal to v.
// It reports whether an element was removed; removing an absent value is a no-op.
func (q *Queue[T]) Remove(v T) bool {
	for i := 0; i < q.size; i++ {
		if q.arr[i] == v {
			q.removeAt(i)
			return true
		}
	}
	return false
}

// Contains reports whether v is queued.
func (q *Queue[T]) Contains(v T) bool {
	for i := 0; i < q.size; i++ {
		if q.arr[i] == v {
			return true
		}
	}
	return false
}

// Values returns a copy of the queued elements in heap order.
// The order is not sorted and must not be relied upon.
func (q *Queue[T]) Values() []T {
	out := make([]T, q.size)
	copy(out, q.arr[:q.size])
	return out
}

// Clear empties the queue, keeping its storage.
func (q *Queue[T]) Clear() {
	var zero T
	for i := 0; i < q.size; i++ {
		q.arr[i] = zero
	}
	q.size = 0
}

// Valid reports whether the heap property holds for every node.
func (q *Queue[T]) Valid() bool {
	for i := 1; i < q.size; i++ {
		if q.cmp(q.arr[parent(i)], q.arr[i]) > 0 {
			return false
		}
	}
	return true
}

// removeAt replaces position i with the last element and restores heap order.
func (q *Queue[T]) removeAt(i int) {
	last := q.size - 1
	var zero T
	q.arr[i] = q.arr[last]
	q.arr[last] = zero
	q.size--
	if i < q.size {
		if !q.down(i) {
			q.up(i)
		}
	}
}

// up moves the element at i toward the root until its parent is not greater.
func (q *Queue[T]) up(i int) {
	for i > 0 {
		p := parent(i)
		if q.cmp(q.arr[p], q.arr[i]) <= 0 {
			break
		}
		q.arr[p], q.arr[i] = q.arr[i], q.arr[p]
		i = p
	}
}

// down sinks the element at i below any smaller child.
// It reports whether the element moved.
func (q *Queue[T]) down(i int) bool {
	start := i
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < q.size && q.cmp(q.arr[l], q.arr[smallest]) < 0 {
			smallest = l
		}
		if r < q.size && q.cmp(q.arr[r], q.arr[smallest]) < 0 {
			smallest = r
		}
		if smallest == i {
			return i != start
		}
		q.arr[smallest], q.arr[i] = q.arr[i], q.arr[smallest]
		i = smallest
	}
}

func parent(i int) int { return (i - 1) / 2 }
