package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"robinhoodarmy/internal/gateway"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/session"
	"robinhoodarmy/internal/store"
	"robinhoodarmy/internal/testbackend"
)

func newStore(t *testing.T, b *testbackend.Backend, userID string) (*store.Store, *gateway.Client) {
	t.Helper()
	sess, err := session.FromToken(b.Token(t, userID))
	if err != nil {
		t.Fatalf("FromToken() error = %v", err)
	}
	gw, err := gateway.NewClient(b.URL, sess, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return store.New(gw, sess), gw
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestListenerRefetchesOnRemoteChange(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping backend test in short mode")
	}

	b := testbackend.New(t)
	ctx := context.Background()

	// Two sessions of the same user
	watching, gw := newStore(t, b, "alice")
	editing, _ := newStore(t, b, "alice")
	// Someone else entirely
	stranger, _ := newStore(t, b, "bob")

	l, err := Start(ctx, gw, watching.Session(), watching.Children, watching.Robins, watching.Content)
	assert.Equal(t, err, nil)
	defer l.Close()

	assert.Equal(t, b.Hub.Subscribers(models.TableChildren, "alice"), 1)
	assert.Equal(t, b.Hub.Subscribers(models.TableRobins, "alice"), 1)
	assert.Equal(t, b.Hub.Subscribers(models.TableEducationalContent, "alice"), 1)

	_, err = stranger.RegisterChild(ctx, models.ChildInput{Name: "Other", MotherName: "Mother", FatherName: "Father", AgeGroup: 6})
	assert.Equal(t, err, nil)

	_, err = editing.RegisterChild(ctx, models.ChildInput{Name: "Asha", MotherName: "Sunita", FatherName: "Ramesh", AgeGroup: 8})
	assert.Equal(t, err, nil)

	waitFor(t, func() bool { return watching.Children.Len() == 1 })
	assert.Equal(t, watching.Children.Items()[0].Name, "Asha")

	_, err = editing.GenerateContent(ctx, models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: "Story"})
	assert.Equal(t, err, nil)
	waitFor(t, func() bool { return watching.Content.Len() == 1 })
}

func TestListenerCloseUnsubscribes(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping backend test in short mode")
	}

	b := testbackend.New(t)
	s, gw := newStore(t, b, "alice")

	l, err := Start(context.Background(), gw, s.Session(), s.Children, s.Robins)
	assert.Equal(t, err, nil)

	assert.Equal(t, l.Close(), nil)
	assert.Equal(t, l.Close(), nil)

	waitFor(t, func() bool {
		return b.Hub.Subscribers(models.TableChildren, "alice") == 0 &&
			b.Hub.Subscribers(models.TableRobins, "alice") == 0
	})
}

func TestStartRequiresSession(t *testing.T) {
	_, err := Start(context.Background(), nil, nil)
	assert.Equal(t, errors.Is(err, session.ErrNoSession), true)
}
