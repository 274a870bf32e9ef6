// Package postgres backs the document store with a single jsonb table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edupulse/assessment-platform/internal/store"
)

type documentRow struct {
	Collection string         `gorm:"primaryKey;size:100"`
	Key        string         `gorm:"primaryKey;size:255"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	Version    int64          `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) (*DocumentStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &DocumentStore{db: db}, nil
}

func (s *DocumentStore) Put(ctx context.Context, collection, key string, data []byte, expectedVersion int64) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND key = ?", collection, key).
			First(&row).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if expectedVersion != store.VersionAny && expectedVersion != 0 {
				return fmt.Errorf("put %s/%s: %w", collection, key, store.ErrVersionMismatch)
			}
			version = 1
			return tx.Create(&documentRow{
				Collection: collection,
				Key:        key,
				Data:       datatypes.JSON(data),
				Version:    version,
			}).Error
		case err != nil:
			return err
		}

		if expectedVersion != store.VersionAny && row.Version != expectedVersion {
			return fmt.Errorf("put %s/%s: %w", collection, key, store.ErrVersionMismatch)
		}
		version = row.Version + 1
		return tx.Model(&documentRow{}).
			Where("collection = ? AND key = ?", collection, key).
			Updates(map[string]any{"data": datatypes.JSON(data), "version": version}).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, key string) (*store.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rowToDocument(&row), nil
}

func (s *DocumentStore) Merge(ctx context.Context, collection, key string, patch []byte, expectedVersion int64) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND key = ?", collection, key).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("merge %s/%s: %w", collection, key, store.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if expectedVersion != store.VersionAny && row.Version != expectedVersion {
			return fmt.Errorf("merge %s/%s: %w", collection, key, store.ErrVersionMismatch)
		}

		merged, err := store.MergeObjects(row.Data, patch)
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, key, err)
		}

		version = row.Version + 1
		return tx.Model(&documentRow{}).
			Where("collection = ? AND key = ?", collection, key).
			Updates(map[string]any{"data": datatypes.JSON(merged), "version": version}).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, key string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		Delete(&documentRow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]*store.Document, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToDocuments(rows), nil
}

func (s *DocumentStore) ListByField(ctx context.Context, collection, field, value string) ([]*store.Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND data ->> ? = ?", collection, field, value).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToDocuments(rows), nil
}

func rowToDocument(row *documentRow) *store.Document {
	return &store.Document{
		Collection: row.Collection,
		Key:        row.Key,
		Data:       append([]byte(nil), row.Data...),
		Version:    row.Version,
		UpdatedAt:  row.UpdatedAt,
	}
}

func rowsToDocuments(rows []documentRow) []*store.Document {
	docs := make([]*store.Document, len(rows))
	for i := range rows {
		docs[i] = rowToDocument(&rows[i])
	}
	return docs
}
