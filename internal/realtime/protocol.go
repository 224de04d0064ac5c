package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message types exchanged over the realtime websocket
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypeSubscribed  = "subscribed"
	TypeChange      = "change"
	TypeError       = "error"
	TypeHeartbeat   = "heartbeat"
)

// Message is a single websocket frame in either direction
type Message struct {
	Type   string          `json:"type"`
	Topic  string          `json:"topic,omitempty"`
	Table  string          `json:"table,omitempty"`
	Filter string          `json:"filter,omitempty"`
	ID     string          `json:"id,omitempty"`
	Event  string          `json:"event,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OwnerFilter renders the filter expression for rows owned by userID
func OwnerFilter(userID string) string {
	return "user_id=eq." + userID
}

// ParseOwnerFilter extracts the owner id from a "user_id=eq.<id>" filter
func ParseOwnerFilter(filter string) (string, error) {
	column, expr, ok := strings.Cut(filter, "=")
	if !ok || column != "user_id" {
		return "", fmt.Errorf("unsupported filter %q", filter)
	}
	userID, ok := strings.CutPrefix(expr, "eq.")
	if !ok || userID == "" {
		return "", fmt.Errorf("unsupported filter %q", filter)
	}
	return userID, nil
}

// ChangeMessage converts a hub change into its wire form for a topic
func ChangeMessage(topic string, c Change) (Message, error) {
	record, err := json.Marshal(c.Record)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s record: %w", c.Table, err)
	}
	return Message{
		Type:   TypeChange,
		Topic:  topic,
		Table:  c.Table,
		ID:     c.ID,
		Event:  c.Event,
		Record: record,
	}, nil
}
