package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/service"
	"robinhoodarmy/internal/session"
	"robinhoodarmy/internal/testbackend"
)

func newClient(t *testing.T, b *testbackend.Backend, userID string) *Client {
	t.Helper()
	s, err := session.FromToken(b.Token(t, userID))
	if err != nil {
		t.Fatalf("FromToken() error = %v", err)
	}
	c, err := NewClient(b.URL, s, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func newRobin(name string) models.RobinInput {
	return models.RobinInput{
		Name:             name,
		AssignedLocation: "Dwarka",
		AssignedDate:     "2024-01-07",
	}
}

func TestNewClientRequiresSession(t *testing.T) {
	_, err := NewClient("http://localhost", nil, time.Second)
	var authErr *AuthError
	assert.Equal(t, errors.As(err, &authErr), true)
}

func TestInsertQueryUpdate(t *testing.T) {
	b := testbackend.New(t)
	c := newClient(t, b, "alice")
	ctx := context.Background()

	var robin models.Robin
	err := c.Insert(ctx, models.TableRobins, newRobin("Asha"), &robin)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, robin.ID, "")
	assert.Equal(t, robin.DriveCount, 0)
	assert.Equal(t, robin.UserID, "alice")

	var second models.Robin
	err = c.Insert(ctx, models.TableRobins, newRobin("Bhavna"), &second)
	assert.Equal(t, err, nil)

	var robins []models.Robin
	err = c.Query(ctx, models.TableRobins, Filter{"user_id": "alice"}, &Order{Column: "name", Descending: true}, &robins)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(robins), 2)
	assert.Equal(t, robins[0].Name, "Bhavna")

	robins = nil
	err = c.Query(ctx, models.TableRobins, Filter{"name": "Asha"}, nil, &robins)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(robins), 1)

	var updated models.Robin
	err = c.Update(ctx, models.TableRobins, robin.ID, models.RobinPatch{AssignedLocation: models.StringPtr("Rohini")}, &updated)
	assert.Equal(t, err, nil)
	assert.Equal(t, updated.AssignedLocation, "Rohini")
}

func TestErrorTaxonomy(t *testing.T) {
	b := testbackend.New(t)
	alice := newClient(t, b, "alice")
	bob := newClient(t, b, "bob")
	ctx := context.Background()

	var robin models.Robin
	if err := alice.Insert(ctx, models.TableRobins, newRobin("Asha"), &robin); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// Another user's row does not exist for bob
	err := bob.Update(ctx, models.TableRobins, robin.ID, models.RobinPatch{Name: models.StringPtr("Mallory")}, nil)
	var notFound *NotFoundError
	assert.Equal(t, errors.As(err, &notFound), true)
	assert.Equal(t, notFound.ID, robin.ID)

	err = alice.Insert(ctx, models.TableRobins, map[string]string{"name": "A"}, nil)
	var validation *ValidationError
	assert.Equal(t, errors.As(err, &validation), true)

	_, err = alice.UploadBinary(ctx, "photos", "bob/robins/1.png", "image/png", []byte("png"))
	var storageErr *StorageError
	assert.Equal(t, errors.As(err, &storageErr), true)
	assert.Equal(t, storageErr.Status, http.StatusForbidden)

	err = alice.InvokeFunction(ctx, models.FnGenerateContent, models.GenerateRequest{AgeGroup: 25, Subject: "Science", ContentType: "Story"}, nil)
	var remote *RemoteError
	assert.Equal(t, errors.As(err, &remote), true)
	assert.Equal(t, remote.Error(), "Age group must be a number between 3 and 20")
	assert.Equal(t, b.Generator.Calls(), 0)

	// A token the backend did not sign
	token, _ := service.NewAuthService("other-secret", time.Hour).IssueToken("alice", "")
	forged, _ := session.FromToken(token)
	c, _ := NewClient(b.URL, forged, time.Second)
	err = c.Query(ctx, models.TableRobins, nil, nil, &[]models.Robin{})
	var authErr *AuthError
	assert.Equal(t, errors.As(err, &authErr), true)
}

func TestConnectionError(t *testing.T) {
	b := testbackend.New(t)
	c := newClient(t, b, "alice")
	b.Server.Close()

	err := c.Query(context.Background(), models.TableChildren, nil, nil, &[]models.Child{})
	var connErr *ConnectionError
	assert.Equal(t, errors.As(err, &connErr), true)
}

func TestRemoteErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Content generation failed: quota", "success": false})
	}))
	defer server.Close()

	b := testbackend.New(t)
	s, _ := session.FromToken(b.Token(t, "alice"))
	c, err := NewClient(server.URL, s, time.Second)
	assert.Equal(t, err, nil)

	err = c.InvokeFunction(context.Background(), models.FnGenerateContent, nil, nil)
	var remote *RemoteError
	assert.Equal(t, errors.As(err, &remote), true)
	assert.Equal(t, remote.Message, "Content generation failed: quota")
	assert.Equal(t, remote.Status, http.StatusInternalServerError)
}

func TestUploadBinary(t *testing.T) {
	b := testbackend.New(t)
	c := newClient(t, b, "alice")

	url, err := c.UploadBinary(context.Background(), "photos", "alice/robins/1700000000000.png", "image/png", []byte("png"))
	assert.Equal(t, err, nil)
	assert.Equal(t, url, b.URL+"/storage/v1/object/public/photos/alice/robins/1700000000000.png")
}

func TestSubscribe(t *testing.T) {
	b := testbackend.New(t)
	c := newClient(t, b, "alice")
	ctx := context.Background()

	changes := make(chan Change, 4)
	sub, err := c.Subscribe(ctx, models.TableRobins, "alice", func(change Change) {
		changes <- change
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, b.Hub.Subscribers(models.TableRobins, "alice"), 1)

	var robin models.Robin
	if err := c.Insert(ctx, models.TableRobins, newRobin("Asha"), &robin); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	select {
	case change := <-changes:
		assert.Equal(t, change.Event, "INSERT")
		assert.Equal(t, change.Table, models.TableRobins)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	assert.Equal(t, sub.Close(), nil)
	assert.Equal(t, sub.Close(), nil)

	deadline := time.Now().Add(5 * time.Second)
	for b.Hub.Subscribers(models.TableRobins, "alice") != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, b.Hub.Subscribers(models.TableRobins, "alice"), 0)
}

func TestSubscribeRejectsOtherOwner(t *testing.T) {
	b := testbackend.New(t)
	c := newClient(t, b, "alice")

	_, err := c.Subscribe(context.Background(), models.TableRobins, "bob", func(Change) {})
	var remote *RemoteError
	assert.Equal(t, errors.As(err, &remote), true)
}
