package services

import (
	"context"
	"sync"

	"fintrack/internal/models"

	"github.com/google/uuid"
)

// TransactionFeed is an in-process pub/sub hub pushing a user's refreshed
// entry list to their live subscribers after every write. Subscriber
// channels hold a single snapshot; a newer snapshot replaces an unread one
// so slow consumers always see the latest state and never block writers.
type TransactionFeed struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan []models.Transaction]struct{}
	metrics     MetricsRecorderInterface
}

// NewTransactionFeed creates a new transaction feed hub
func NewTransactionFeed(metrics MetricsRecorderInterface) *TransactionFeed {
	return &TransactionFeed{
		subscribers: make(map[uuid.UUID]map[chan []models.Transaction]struct{}),
		metrics:     metrics,
	}
}

// Subscribe registers a listener for the user's entry list updates. The
// returned cancel func must be called when the subscriber goes away; it is
// also invoked automatically when ctx is done.
func (f *TransactionFeed) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []models.Transaction, func()) {
	ch := make(chan []models.Transaction, 1)

	f.mu.Lock()
	if f.subscribers[userID] == nil {
		f.subscribers[userID] = make(map[chan []models.Transaction]struct{})
	}
	f.subscribers[userID][ch] = struct{}{}
	count := f.count()
	f.mu.Unlock()

	f.metrics.RecordFeedSubscribers(count)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			if subs, ok := f.subscribers[userID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(f.subscribers, userID)
				}
			}
			remaining := f.count()
			// Close under the lock so Publish can never write to a closed channel
			close(ch)
			f.mu.Unlock()

			f.metrics.RecordFeedSubscribers(remaining)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

// Publish delivers the snapshot to every subscriber of the user. Unread
// older snapshots are dropped in favor of the new one.
func (f *TransactionFeed) Publish(userID uuid.UUID, transactions []models.Transaction) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subscribers[userID] {
		select {
		case ch <- transactions:
		default:
			// Drop the stale snapshot, then deliver the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- transactions:
			default:
			}
		}
	}
}

// count must be called with the mutex held
func (f *TransactionFeed) count() int {
	total := 0
	for _, subs := range f.subscribers {
		total += len(subs)
	}
	return total
}
