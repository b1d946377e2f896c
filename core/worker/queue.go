package worker

import "time"

// delayedItem is a message waiting for its deadline. seq breaks ties between
// equal deadlines so that submission order is preserved.
type delayedItem struct {
	at  time.Time
	seq uint64
	msg message
}

// delayedQueue is a min-heap ordered by deadline, then submission order.
// It implements container/heap.Interface; all access happens under the
// worker's queue mutex.
type delayedQueue []*delayedItem

func (q delayedQueue) Len() int { return len(q) }

func (q delayedQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q delayedQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *delayedQueue) Push(x any) {
	*q = append(*q, x.(*delayedItem))
}

func (q *delayedQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
