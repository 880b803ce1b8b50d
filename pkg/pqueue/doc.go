// Package pqueue provides a comparator-driven binary min-heap.
//
// # Overview
//
// [Queue] keeps its elements in heap order according to a [CompareFunc]
// supplied at construction. The element that compares lowest is always at
// the root and is returned by [Queue.Peek] and [Queue.Dequeue].
//
// Unlike container/heap, the queue owns its storage and supports removal
// by value, which the overflow engine needs when an item is deregistered
// while it sits in either of its two queues.
//
// # Complexity
//
//   - [Queue.Enqueue], [Queue.Dequeue]: O(log n)
//   - [Queue.Peek], [Queue.Len]: O(1)
//   - [Queue.Remove], [Queue.Contains], [Queue.Values]: O(n)
//
// # Debugging
//
// [ToDOT] and [RenderSVG] draw the heap as a binary tree, which is handy
// when a comparator misbehaves:
//
//	q := pqueue.New(cmp.Compare[int])
//	q.Enqueue(3)
//	q.Enqueue(1)
//	svg, err := pqueue.RenderSVG(q, strconv.Itoa)
//
// A Queue is not safe for concurrent use.
package pqueue
