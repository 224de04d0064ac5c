// Package store keeps the signed-in user's records in memory and applies
// every change through the gateway first.
package store

import (
	"context"
	"fmt"
	"sync"

	"robinhoodarmy/internal/gateway"
)

// Record is an entity with a server-assigned id
type Record interface {
	RecordID() string
}

type validator interface {
	Validate() error
}

// validate runs v's checks when it has any. Failures are returned as
// *gateway.ValidationError, the same type the backend's rejections map to.
func validate(v interface{}) error {
	if c, ok := v.(validator); ok {
		return gateway.Invalid(c.Validate())
	}
	return nil
}

// newestFirst is the order every collection is fetched in
var newestFirst = &gateway.Order{Column: "created_at", Descending: true}

// Collection is the in-memory copy of one table for the session user,
// newest first. The lock is never held across a gateway call.
type Collection[T Record] struct {
	gw    gateway.Gateway
	table string
	owner string

	mu    sync.RWMutex
	items []T
}

// NewCollection creates an empty collection for table rows owned by owner
func NewCollection[T Record](gw gateway.Gateway, table, owner string) *Collection[T] {
	return &Collection[T]{
		gw:    gw,
		table: table,
		owner: owner,
	}
}

// Table returns the remote table name
func (c *Collection[T]) Table() string {
	return c.table
}

// FetchAll replaces the collection with the remote rows. On failure the
// previous contents are kept.
func (c *Collection[T]) FetchAll(ctx context.Context) error {
	var rows []T
	if err := c.gw.Query(ctx, c.table, gateway.Filter{"user_id": c.owner}, newestFirst, &rows); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", c.table, err)
	}

	c.mu.Lock()
	c.items = rows
	c.mu.Unlock()
	return nil
}

// Create inserts a record and puts the stored row at the front of the collection
func (c *Collection[T]) Create(ctx context.Context, input interface{}) (T, error) {
	var created T
	if err := validate(input); err != nil {
		return created, err
	}

	if err := c.gw.Insert(ctx, c.table, input, &created); err != nil {
		return created, fmt.Errorf("failed to create %s: %w", c.table, err)
	}

	c.mu.Lock()
	c.items = append([]T{created}, c.items...)
	c.mu.Unlock()
	return created, nil
}

// Mutate applies a partial update and replaces the matching entry in place
func (c *Collection[T]) Mutate(ctx context.Context, id string, patch interface{}) (T, error) {
	var updated T
	if err := validate(patch); err != nil {
		return updated, err
	}

	if err := c.gw.Update(ctx, c.table, id, patch, &updated); err != nil {
		return updated, fmt.Errorf("failed to update %s: %w", c.table, err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].RecordID() == id {
			c.items[i] = updated
			break
		}
	}
	c.mu.Unlock()
	return updated, nil
}

// Items returns a copy of the collection
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// Find returns the record with id
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of records held
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
