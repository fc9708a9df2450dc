package sim

import (
	"sync"

	"github.com/weftworks/weft/internal/replica"
)

// Queue is a FIFO mailbox of patch envelopes awaiting delivery to one
// replica. The simulator drains queues synchronously, but enqueueing is
// safe from any goroutine so hosts can feed deliveries concurrently.
type Queue struct {
	mu   sync.Mutex
	envs []replica.Envelope
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{envs: make([]replica.Envelope, 0, 16)}
}

// Enqueue appends an envelope to the back of the queue.
func (q *Queue) Enqueue(env replica.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.envs = append(q.envs, env)
}

// TryDequeue removes and returns the front envelope, reporting false when
// the queue is empty.
func (q *Queue) TryDequeue() (replica.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.envs) == 0 {
		return replica.Envelope{}, false
	}
	env := q.envs[0]
	q.envs = q.envs[1:]
	return env, true
}

// Len returns the number of pending envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.envs)
}
