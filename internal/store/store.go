package store

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // SQLite dialect
)

// Snapshot is one persisted collection (the floor layout or the catalog)
// serialized as an opaque JSON blob under a fixed key. Versioning lives
// inside the payload, owned by whoever writes it.
type Snapshot struct {
	gorm.Model
	Key  string `gorm:"unique_index"`
	Data []byte
}

// Store persists keyed snapshots in a local SQLite database.
type Store struct {
	db *gorm.DB
}

// Open initializes the database connection and schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if err := db.AutoMigrate(&Snapshot{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save marshals v and stores it under key, replacing any previous snapshot.
func (s *Store) Save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %q: %w", key, err)
	}

	var existing Snapshot
	result := s.db.Where("key = ?", key).First(&existing)
	if result.RecordNotFound() {
		snap := Snapshot{Key: key, Data: data}
		if err := s.db.Create(&snap).Error; err != nil {
			return fmt.Errorf("failed to store snapshot %q: %w", key, err)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to look up snapshot %q: %w", key, result.Error)
	}

	if err := s.db.Model(&existing).Update("data", data).Error; err != nil {
		return fmt.Errorf("failed to update snapshot %q: %w", key, err)
	}
	return nil
}

// Load unmarshals the snapshot stored under key into out. It returns false
// when no snapshot exists yet.
func (s *Store) Load(key string, out interface{}) (bool, error) {
	var snap Snapshot
	result := s.db.Where("key = ?", key).First(&snap)
	if result.RecordNotFound() {
		return false, nil
	}
	if result.Error != nil {
		return false, fmt.Errorf("failed to read snapshot %q: %w", key, result.Error)
	}
	if err := json.Unmarshal(snap.Data, out); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %q: %w", key, err)
	}
	return true, nil
}
