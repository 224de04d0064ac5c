package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"robinhoodarmy/internal/realtime"
)

const (
	subscribeTimeout = 10 * time.Second
	feedReadTimeout  = 90 * time.Second
	feedWriteTimeout = 10 * time.Second
)

// Change is a row change pushed by the backend
type Change struct {
	ID     string
	Table  string
	Event  string
	Record json.RawMessage
}

// Subscription is an open change feed for one table. Close releases it.
type Subscription struct {
	Table string
	Topic string

	ws        *websocket.Conn
	writeMu   sync.Mutex
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// Subscribe opens a change feed for table rows owned by ownerID. handler is
// called from the subscription's reader goroutine.
func (c *Client) Subscribe(ctx context.Context, table, ownerID string, handler func(Change)) (*Subscription, error) {
	endpoint := c.baseURL + "/realtime/v1/websocket"
	if rest, ok := strings.CutPrefix(endpoint, "http"); ok {
		endpoint = "ws" + rest
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: subscribeTimeout,
	}
	header := http.Header{"Authorization": []string{"Bearer " + c.session.AccessToken}}

	ws, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, &AuthError{Status: resp.StatusCode, Message: "realtime connection rejected"}
		}
		return nil, &ConnectionError{Op: "subscribe " + table, Err: err}
	}

	sub := &Subscription{
		Table: table,
		Topic: fmt.Sprintf("%s:%s", table, uuid.NewString()),
		ws:    ws,
		done:  make(chan struct{}),
	}

	err = sub.write(realtime.Message{
		Type:   realtime.TypeSubscribe,
		Topic:  sub.Topic,
		Table:  table,
		Filter: realtime.OwnerFilter(ownerID),
	})
	if err != nil {
		ws.Close()
		return nil, &ConnectionError{Op: "subscribe " + table, Err: err}
	}

	// Wait for the backend to accept the subscription
	deadline := time.Now().Add(subscribeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for {
		ws.SetReadDeadline(deadline)
		var message realtime.Message
		if err := ws.ReadJSON(&message); err != nil {
			ws.Close()
			return nil, &ConnectionError{Op: "subscribe " + table, Err: err}
		}
		if message.Type == realtime.TypeError {
			ws.Close()
			return nil, &RemoteError{Message: message.Error}
		}
		if message.Type == realtime.TypeSubscribed && message.Topic == sub.Topic {
			break
		}
	}

	go sub.run(handler)
	return sub, nil
}

func (s *Subscription) run(handler func(Change)) {
	defer close(s.done)

	for {
		s.ws.SetReadDeadline(time.Now().Add(feedReadTimeout))
		var message realtime.Message
		if err := s.ws.ReadJSON(&message); err != nil {
			if !s.closed.Load() {
				log.Printf("realtime: %s feed ended: %v", s.Table, err)
			}
			return
		}

		switch message.Type {
		case realtime.TypeChange:
			if message.Topic != s.Topic {
				continue
			}
			handler(Change{
				ID:     message.ID,
				Table:  message.Table,
				Event:  message.Event,
				Record: message.Record,
			})
		case realtime.TypeHeartbeat:
			s.write(realtime.Message{Type: realtime.TypeHeartbeat})
		case realtime.TypeError:
			log.Printf("realtime: %s feed error: %s", s.Table, message.Error)
		}
	}
}

func (s *Subscription) write(message realtime.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	return s.ws.WriteJSON(message)
}

// Done is closed when the feed has stopped
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unsubscribes and waits for the reader goroutine to exit. It is
// safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.write(realtime.Message{Type: realtime.TypeUnsubscribe, Topic: s.Topic})

		s.writeMu.Lock()
		s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(feedWriteTimeout))
		s.writeMu.Unlock()

		err = s.ws.Close()
		<-s.done
	})
	return err
}
