package realtime

import (
	"testing"
	"time"
)

func TestHubDeliversOnlyMatchingOwner(t *testing.T) {
	hub := NewHub(4)

	mine := hub.Subscribe("children", "u1")
	defer mine.Close()
	theirs := hub.Subscribe("children", "u2")
	defer theirs.Close()

	hub.Publish("children", "u1", EventInsert, map[string]string{"id": "c1"})

	select {
	case c := <-mine.C():
		if c.Table != "children" || c.Event != EventInsert || c.ID == "" {
			t.Errorf("unexpected change %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("expected change for u1")
	}

	select {
	case c := <-theirs.C():
		t.Errorf("u2 received change meant for u1: %+v", c)
	default:
	}
}

func TestHubIgnoresOtherTables(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe("robins", "u1")
	defer sub.Close()

	hub.Publish("children", "u1", EventUpdate, nil)

	select {
	case c := <-sub.C():
		t.Errorf("robins subscriber received %+v", c)
	default:
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe("children", "u1")

	if got := hub.Subscribers("children", "u1"); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	sub.Close()
	sub.Close()

	if got := hub.Subscribers("children", "u1"); got != 0 {
		t.Errorf("Subscribers() after Close = %d, want 0", got)
	}
	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed")
	}

	// Publishing after close must not panic
	hub.Publish("children", "u1", EventInsert, nil)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe("children", "u1")
	defer sub.Close()

	hub.Publish("children", "u1", EventInsert, nil)
	hub.Publish("children", "u1", EventUpdate, nil)

	first := <-sub.C()
	if first.Event != EventInsert {
		t.Errorf("first event = %s, want %s", first.Event, EventInsert)
	}
	select {
	case c := <-sub.C():
		t.Errorf("expected second change to be dropped, got %+v", c)
	default:
	}
}

func TestParseOwnerFilter(t *testing.T) {
	tests := []struct {
		filter  string
		want    string
		wantErr bool
	}{
		{OwnerFilter("u1"), "u1", false},
		{"user_id=eq.", "", true},
		{"name=eq.u1", "", true},
		{"user_id=neq.u1", "", true},
		{"garbage", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := ParseOwnerFilter(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOwnerFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOwnerFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}
