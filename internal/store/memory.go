package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory DocumentStore used by tests and local
// development. It honors the same merge and versioning semantics as the
// postgres backend.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document // key: collection + "/" + key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

func memKey(collection, key string) string {
	return collection + "/" + key
}

func (m *MemoryStore) Put(ctx context.Context, collection, key string, data []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.docs[memKey(collection, key)]
	version := int64(1)
	if existing != nil {
		if expectedVersion != VersionAny && existing.Version != expectedVersion {
			return 0, fmt.Errorf("put %s/%s: %w", collection, key, ErrVersionMismatch)
		}
		version = existing.Version + 1
	} else if expectedVersion != VersionAny && expectedVersion != 0 {
		return 0, fmt.Errorf("put %s/%s: %w", collection, key, ErrVersionMismatch)
	}

	m.docs[memKey(collection, key)] = &Document{
		Collection: collection,
		Key:        key,
		Data:       append(json.RawMessage(nil), data...),
		Version:    version,
		UpdatedAt:  time.Now(),
	}
	return version, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[memKey(collection, key)]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, ErrNotFound)
	}
	return copyDoc(doc), nil
}

func (m *MemoryStore) Merge(ctx context.Context, collection, key string, patch []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[memKey(collection, key)]
	if !ok {
		return 0, fmt.Errorf("merge %s/%s: %w", collection, key, ErrNotFound)
	}
	if expectedVersion != VersionAny && doc.Version != expectedVersion {
		return 0, fmt.Errorf("merge %s/%s: %w", collection, key, ErrVersionMismatch)
	}

	merged, err := MergeObjects(doc.Data, patch)
	if err != nil {
		return 0, fmt.Errorf("merge %s/%s: %w", collection, key, err)
	}

	doc.Data = merged
	doc.Version++
	doc.UpdatedAt = time.Now()
	return doc.Version, nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[memKey(collection, key)]; !ok {
		return false, nil
	}
	delete(m.docs, memKey(collection, key))
	return true, nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*Document
	for _, doc := range m.docs {
		if doc.Collection == collection {
			docs = append(docs, copyDoc(doc))
		}
	}
	return docs, nil
}

func (m *MemoryStore) ListByField(ctx context.Context, collection, field, value string) ([]*Document, error) {
	docs, err := m.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matched []*Document
	for _, doc := range docs {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(doc.Data, &fields); err != nil {
			return nil, fmt.Errorf("list %s by %s: %w", collection, field, err)
		}
		var s string
		if raw, ok := fields[field]; ok && json.Unmarshal(raw, &s) == nil && s == value {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

func copyDoc(doc *Document) *Document {
	c := *doc
	c.Data = append(json.RawMessage(nil), doc.Data...)
	return &c
}
