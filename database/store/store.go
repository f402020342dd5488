package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get/Update/Delete when no document has the
	// given ID.
	ErrNotFound = errors.New("store: document not found")
	// ErrAlreadyExists is returned by ConditionalCreate when a document with
	// the given ID exists. Slot allocation relies on this as its mutex
	// primitive.
	ErrAlreadyExists = errors.New("store: document already exists")
)

// TransactionalStore is the narrow storage contract the allocation algorithm
// depends on: keyed reads and writes plus an atomic conditional create. The
// underlying store must guarantee that only one concurrent writer can
// successfully create a given ID; slot claiming leans entirely on that.
type TransactionalStore interface {
	// Get decodes the document with the given ID into out.
	Get(ctx context.Context, collection, id string, out interface{}) error
	// ConditionalCreate inserts doc under the given ID, failing with
	// ErrAlreadyExists if the ID is taken. The doc's own ID field must match.
	ConditionalCreate(ctx context.Context, collection, id string, doc interface{}) error
	// Update applies a partial field update to the document with the given ID.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Delete removes the document with the given ID. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Increment atomically adds delta to a numeric field, creating the
	// document at zero first if it does not exist, and returns the new value.
	Increment(ctx context.Context, collection, id, field string, delta int) (int, error)
	// RunAtomic executes fn as one allocation step using the context it is
	// handed. Atomicity of individual claims comes from ConditionalCreate;
	// fn must compensate for writes it made before a later one failed.
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}
