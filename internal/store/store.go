// Package store provides a generic keyed JSON document store. It carries no
// business logic; typed repositories are layered on top of it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrVersionMismatch indicates a write lost a race: the document was
	// modified since the caller read it.
	ErrVersionMismatch = errors.New("document version mismatch")
)

// VersionAny disables the optimistic version check on a write.
const VersionAny int64 = -1

// Document is one stored JSON record. Version starts at 1 and increases by
// one on every successful write.
type Document struct {
	Collection string
	Key        string
	Data       json.RawMessage
	Version    int64
	UpdatedAt  time.Time
}

// DocumentStore is the persistence contract for keyed JSON documents.
//
// Put and Merge take the version the caller last observed; passing VersionAny
// skips the check. Merge performs a field-level merge of the patch object's
// top-level fields into the existing document, never a whole-document
// replace.
type DocumentStore interface {
	// Put creates or replaces the document.
	Put(ctx context.Context, collection, key string, data []byte, expectedVersion int64) (int64, error)

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, key string) (*Document, error)

	// Merge overlays the top-level fields of patch (a JSON object) onto the
	// existing document. Fails with ErrNotFound when the document is absent.
	Merge(ctx context.Context, collection, key string, patch []byte, expectedVersion int64) (int64, error)

	// Delete removes the document, reporting whether one was actually
	// removed.
	Delete(ctx context.Context, collection, key string) (bool, error)

	// List returns every document of a collection; order is store-defined.
	List(ctx context.Context, collection string) ([]*Document, error)

	// ListByField returns the documents whose top-level string field equals
	// value.
	ListByField(ctx context.Context, collection, field, value string) ([]*Document, error)
}

// MergeObjects overlays the top-level fields of patch onto base and returns
// the merged JSON object. Shared helper for store backends.
func MergeObjects(base, patch []byte) ([]byte, error) {
	merged := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, err
		}
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}
