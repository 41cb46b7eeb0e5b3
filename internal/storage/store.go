// Package storage persists simulation runs in a bbolt database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/table"
	"github.com/san-kum/loopsim/internal/ui"
)

const (
	BucketRuns   = "runs"
	BucketTables = "tables"

	DefaultFileName = "runs.db"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Metadata struct {
	ID        string             `json:"id"`
	Process   string             `json:"process"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Rows      int                `json:"rows"`
	Config    config.Config      `json:"config"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

type Run struct {
	Metadata
	Table *table.Table `json:"table"`
}

type Store struct {
	dbPath string
}

// New returns a store backed by the database file at dbPath.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// InDir returns a store using the default database file inside dir.
func InDir(dir string) *Store {
	return New(filepath.Join(dir, DefaultFileName))
}

func (s *Store) Path() string { return s.dbPath }

// Init creates the parent directory of the database file.
func (s *Store) Init() error {
	parentDir := filepath.Dir(s.dbPath)
	_, err := os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Debug("Creating directory for db: %s", parentDir)
		return os.MkdirAll(parentDir, 0755)
	}
	return err
}

func (s *Store) open() (*bolt.DB, error) {
	return bolt.Open(s.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
}

// Save stores tbl under a new id. A zero timestamp is set to now and
// the row count is taken from tbl.
func (s *Store) Save(meta Metadata, tbl *table.Table) (string, error) {
	if tbl == nil {
		return "", errors.New("storage: nil table")
	}

	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Rows = tbl.Len()

	metaData, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	tableData, err := json.Marshal(tbl)
	if err != nil {
		return "", err
	}

	db, err := s.open()
	if err != nil {
		return "", err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.Update(func(tx *bolt.Tx) error {
		runs, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		tables, err := tx.CreateBucketIfNotExists([]byte(BucketTables))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		if err := runs.Put([]byte(meta.ID), metaData); err != nil {
			return err
		}
		return tables.Put([]byte(meta.ID), tableData)
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) Load(id string) (*Run, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	run := &Run{}
	err = db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(BucketRuns))
		tables := tx.Bucket([]byte(BucketTables))
		if runs == nil || tables == nil {
			return ErrRunNotFound
		}

		metaData := runs.Get([]byte(id))
		tableData := tables.Get([]byte(id))
		if metaData == nil || tableData == nil {
			return ErrRunNotFound
		}

		if err := json.Unmarshal(metaData, &run.Metadata); err != nil {
			return fmt.Errorf("decode run %s: %w", id, err)
		}
		run.Table = &table.Table{}
		if err := json.Unmarshal(tableData, run.Table); err != nil {
			return fmt.Errorf("decode table %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the metadata of all runs, newest first. Unreadable entries
// are skipped.
func (s *Store) List() ([]Metadata, error) {
	if _, err := os.Stat(s.dbPath); errors.Is(err, os.ErrNotExist) {
		return []Metadata{}, nil
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	result := make([]Metadata, 0)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var meta Metadata
			if err := json.Unmarshal(v, &meta); err != nil {
				ui.Warning("Unable to read saved run %s: %v", string(k), err)
				return nil
			}
			result = append(result, meta)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID < result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (s *Store) Delete(id string) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket([]byte(BucketRuns))
		if runs == nil || runs.Get([]byte(id)) == nil {
			return ErrRunNotFound
		}
		if err := runs.Delete([]byte(id)); err != nil {
			return err
		}
		if tables := tx.Bucket([]byte(BucketTables)); tables != nil {
			return tables.Delete([]byte(id))
		}
		return nil
	})
}
