package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
)

const realtimeSendBuffer = 32

// RealtimeHandler streams table changes to websocket subscribers
type RealtimeHandler struct {
	hub          *realtime.Hub
	upgrader     websocket.Upgrader
	Heartbeat    time.Duration
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		Heartbeat:    25 * time.Second,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
}

// Serve handles GET /realtime/v1/websocket
func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed for %s: %v", userID, err)
		return
	}
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(context.Background())
	defer handleCancel()

	send := make(chan realtime.Message, realtimeSendBuffer)
	subs := make(map[string]*realtime.Subscription)
	var forwarders sync.WaitGroup

	defer func() {
		handleCancel()
		for _, sub := range subs {
			sub.Close()
		}
		forwarders.Wait()
		log.Printf("realtime: %s disconnected", userID)
	}()

	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.ReadTimeout))
	})

	go func() {
		defer func() {
			handleCancel()
			// unblocks the reader
			ws.Close()
		}()

		heartbeat := time.NewTicker(h.Heartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-handleCtx.Done():
				return
			case message := <-send:
				ws.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
				if err := ws.WriteJSON(message); err != nil {
					log.Printf("realtime: write to %s failed: %v", userID, err)
					return
				}
			case <-heartbeat.C:
				ws.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
				if err := ws.WriteJSON(realtime.Message{Type: realtime.TypeHeartbeat}); err != nil {
					return
				}
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.WriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	enqueue := func(message realtime.Message) {
		select {
		case send <- message:
		case <-handleCtx.Done():
		}
	}

	// subs is only touched by this reader loop and the deferred cleanup
	for {
		select {
		case <-handleCtx.Done():
			return
		default:
		}

		ws.SetReadDeadline(time.Now().Add(h.ReadTimeout))
		var message realtime.Message
		if err := ws.ReadJSON(&message); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("realtime: read from %s failed: %v", userID, err)
			}
			return
		}

		switch message.Type {
		case realtime.TypeSubscribe:
			topic := message.Topic
			if topic == "" {
				topic = "realtime:" + message.Table
			}
			if !models.IsTable(message.Table) {
				enqueue(realtime.Message{Type: realtime.TypeError, Topic: topic, Error: "unknown table " + message.Table})
				continue
			}
			owner, err := realtime.ParseOwnerFilter(message.Filter)
			if err != nil {
				enqueue(realtime.Message{Type: realtime.TypeError, Topic: topic, Error: err.Error()})
				continue
			}
			if owner != userID {
				enqueue(realtime.Message{Type: realtime.TypeError, Topic: topic, Error: "filter must match the authenticated user"})
				continue
			}

			if old, ok := subs[topic]; ok {
				old.Close()
			}
			sub := h.hub.Subscribe(message.Table, userID)
			subs[topic] = sub

			forwarders.Add(1)
			go func() {
				defer forwarders.Done()
				for change := range sub.C() {
					out, err := realtime.ChangeMessage(topic, change)
					if err != nil {
						log.Printf("realtime: %v", err)
						continue
					}
					enqueue(out)
				}
			}()

			enqueue(realtime.Message{Type: realtime.TypeSubscribed, Topic: topic, Table: message.Table, Filter: message.Filter})

		case realtime.TypeUnsubscribe:
			if sub, ok := subs[message.Topic]; ok {
				sub.Close()
				delete(subs, message.Topic)
			}

		case realtime.TypeHeartbeat:

		default:
			enqueue(realtime.Message{Type: realtime.TypeError, Error: "unknown message type " + message.Type})
		}
	}
}
