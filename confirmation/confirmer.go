// Package confirmation implements the pipeline's user confirmation channel:
// a pending-request queue that blocks resolution until a human answers or
// the window expires, and an auto-confirmer for unattended batch runs.
package confirmation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"receiptserver/normalization"
)

// Request is one confirmation waiting for a human answer.
type Request struct {
	ID            string    `json:"id"`
	RawName       string    `json:"raw_name"`
	SuggestedName string    `json:"suggested_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type pendingRequest struct {
	request Request
	answer  chan string
}

// QueueConfirmer parks confirmation requests in an in-memory queue until
// Resolve delivers an answer. Each request waits at most the configured
// timeout; an expired request returns ErrConfirmationTimeout so the
// pipeline can substitute its best guess. Safe for concurrent use.
type QueueConfirmer struct {
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

// NewQueueConfirmer creates a queue confirmer with the given answer window.
func NewQueueConfirmer(timeout time.Duration) *QueueConfirmer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &QueueConfirmer{
		timeout: timeout,
		pending: make(map[string]*pendingRequest),
	}
}

// RequestConfirmation enqueues a request and blocks until an answer
// arrives, the answer window expires or ctx is done.
func (q *QueueConfirmer) RequestConfirmation(ctx context.Context, rawName, suggestedName string) (string, error) {
	pend := &pendingRequest{
		request: Request{
			ID:            uuid.New().String(),
			RawName:       rawName,
			SuggestedName: suggestedName,
			CreatedAt:     time.Now(),
		},
		answer: make(chan string, 1),
	}

	q.mu.Lock()
	q.pending[pend.request.ID] = pend
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.pending, pend.request.ID)
		q.mu.Unlock()
	}()

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case answer := <-pend.answer:
		if answer == "" {
			// an empty answer accepts the suggestion as-is
			return suggestedName, nil
		}
		return answer, nil
	case <-timer.C:
		return "", normalization.ErrConfirmationTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve delivers the answer for a pending request. An empty canonical
// name accepts the suggestion. Resolving an unknown or already-resolved ID
// is an error.
func (q *QueueConfirmer) Resolve(id, canonicalName string) error {
	q.mu.Lock()
	pend, ok := q.pending[id]
	if ok {
		delete(q.pending, id)
	}
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending confirmation with id %s", id)
	}

	pend.answer <- canonicalName
	return nil
}

// Pending returns a snapshot of the waiting requests, oldest first.
func (q *QueueConfirmer) Pending() []Request {
	q.mu.Lock()
	requests := make([]Request, 0, len(q.pending))
	for _, pend := range q.pending {
		requests = append(requests, pend.request)
	}
	q.mu.Unlock()

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests
}

// Len returns the number of waiting requests.
func (q *QueueConfirmer) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// AutoConfirmer accepts every suggestion without asking anyone. Used by the
// batch CLI where no user is present.
type AutoConfirmer struct{}

// RequestConfirmation returns the suggestion unchanged.
func (AutoConfirmer) RequestConfirmation(_ context.Context, _, suggestedName string) (string, error) {
	return suggestedName, nil
}
