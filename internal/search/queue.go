package search

import "container/heap"

// queueEntry is a queued state. Entries are never removed when their state is
// evicted; the driver filters them when they come out.
type queueEntry struct {
	handle Handle
	key    float64
	seq    uint64
}

// priorityQueue implements heap.Interface ordered by key, then push order
type priorityQueue []queueEntry

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].key != pq[j].key {
		return pq[i].key < pq[j].key
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(queueEntry))
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	entry := old[n-1]
	*pq = old[0 : n-1]
	return entry
}

// stateQueue wraps the heap with a push counter
type stateQueue struct {
	pq  priorityQueue
	seq uint64
}

func (q *stateQueue) push(h Handle, key float64) {
	q.seq++
	heap.Push(&q.pq, queueEntry{handle: h, key: key, seq: q.seq})
}

func (q *stateQueue) pop() queueEntry {
	return heap.Pop(&q.pq).(queueEntry)
}

func (q *stateQueue) len() int {
	return q.pq.Len()
}
