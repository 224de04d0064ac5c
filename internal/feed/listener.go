// Package feed keeps store collections in step with changes made by other
// sessions of the same user.
package feed

import (
	"context"
	"fmt"
	"log"
	"sync"

	"robinhoodarmy/internal/gateway"
	"robinhoodarmy/internal/session"
)

// Target is a collection refreshed when its table changes
type Target interface {
	Table() string
	FetchAll(ctx context.Context) error
}

// Listener owns one subscription per target. Every change triggers a full
// refetch of the target; event payloads are not applied.
type Listener struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	subs      []*gateway.Subscription
	refetches sync.WaitGroup
	closeOnce sync.Once
}

// Start subscribes to every target's table for the session user. If any
// subscription fails the ones already opened are closed.
func Start(ctx context.Context, gw gateway.Gateway, s *session.Session, targets ...Target) (*Listener, error) {
	if !s.Valid() {
		return nil, session.ErrNoSession
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		ctx:    listenCtx,
		cancel: cancel,
	}

	for _, target := range targets {
		sub, err := gw.Subscribe(ctx, target.Table(), s.UserID, func(change gateway.Change) {
			l.refetch(target, change)
		})
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", target.Table(), err)
		}
		l.mu.Lock()
		l.subs = append(l.subs, sub)
		l.mu.Unlock()
	}

	return l, nil
}

func (l *Listener) refetch(target Target, change gateway.Change) {
	l.refetches.Add(1)
	defer l.refetches.Done()

	if l.ctx.Err() != nil {
		return
	}
	if err := target.FetchAll(l.ctx); err != nil {
		log.Printf("feed: refetch of %s after %s %s failed: %v", target.Table(), change.Event, change.ID, err)
	}
}

// Close unsubscribes everything and waits for in-flight refetches. It is
// safe to call more than once.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.cancel()

		l.mu.Lock()
		subs := l.subs
		l.subs = nil
		l.mu.Unlock()

		for _, sub := range subs {
			if err := sub.Close(); err != nil {
				log.Printf("feed: closing %s subscription: %v", sub.Table, err)
			}
		}
		l.refetches.Wait()
	})
	return nil
}
