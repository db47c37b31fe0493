// Package state persists per-service restart bookkeeping for the current
// boot session. It is adapted from the teacher's BoltDB-backed cluster
// store: a single bucket, JSON-encoded values, opened once under the data
// mount. It exists purely for operator post-mortems (how many times did a
// service restart this boot, what was its last exit status) — it is never
// read back to change supervision behaviour, so it does not introduce the
// dynamic reconfiguration the spec excludes.
package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"rkinit/internal/config"
)

var bucketServices = []byte("services")

// Store is the bbolt-backed bookkeeping database.
type Store struct {
	db *bolt.DB
}

// ServiceRecord is the bookkeeping kept for one supervised service.
type ServiceRecord struct {
	Name          string    `json:"name"`
	RestartCount  int       `json:"restart_count"`
	LastExit      string    `json:"last_exit"`
	LastExitAt    time.Time `json:"last_exit_at"`
	LastSpawnedAt time.Time `json:"last_spawned_at"`
}

// Open creates or opens the bookkeeping database under dataDir.
func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, config.StateDBName)

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketServices)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create services bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) get(tx *bolt.Tx, name string) ServiceRecord {
	rec := ServiceRecord{Name: name}
	data := tx.Bucket(bucketServices).Get([]byte(name))
	if data != nil {
		_ = json.Unmarshal(data, &rec)
	}
	return rec
}

func (s *Store) put(tx *bolt.Tx, rec ServiceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketServices).Put([]byte(rec.Name), data)
}

// RecordSpawn bumps the restart counter and spawn timestamp for a service.
func (s *Store) RecordSpawn(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rec := s.get(tx, name)
		rec.RestartCount++
		rec.LastSpawnedAt = time.Now().UTC()
		return s.put(tx, rec)
	})
}

// RecordExit records the exit description for a service.
func (s *Store) RecordExit(name, exit string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rec := s.get(tx, name)
		rec.LastExit = exit
		rec.LastExitAt = time.Now().UTC()
		return s.put(tx, rec)
	})
}

// Get returns the bookkeeping record for a service.
func (s *Store) Get(name string) (ServiceRecord, error) {
	var rec ServiceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		rec = s.get(tx, name)
		return nil
	})
	return rec, err
}

// List returns the bookkeeping records for every service seen this boot.
func (s *Store) List() ([]ServiceRecord, error) {
	var recs []ServiceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketServices).ForEach(func(k, v []byte) error {
			var rec ServiceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	return recs, err
}
