// Package exchangejournal keeps an append-only journal of completed exchanges.
package exchangejournal

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/xroute/internal/domain"
	"github.com/vadiminshakov/xroute/pkg/retrier"
)

const (
	defaultJournalDir   = "./wal/exchanges"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	journalKeyPrefix    = "exchange_"
)

var errNotInitialized = errors.New("exchange journal is not initialized")

// WALStore persists exchange records in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) a journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create exchange journal dir")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "exchange_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init exchange journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the record. Record ID is required.
// Errors that repeat on every attempt are marked with retrier.Permanent.
func (s *WALStore) Save(record domain.ExchangeRecord) error {
	if s == nil || s.wal == nil {
		return retrier.Permanent(errNotInitialized)
	}
	if record.ID == "" {
		return retrier.Permanent(errors.New("exchange record id is required"))
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return retrier.Permanent(errors.Wrap(err, "marshal exchange record"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, journalKeyPrefix+record.ID, payload)
}

// RecordsAfter returns all records written after the provided WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]domain.ExchangeRecordEntry, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	entries := make([]domain.ExchangeRecordEntry, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, ok := s.wal.Get(idx)
		if !ok || !strings.HasPrefix(key, journalKeyPrefix) {
			continue
		}
		var record domain.ExchangeRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrapf(err, "decode exchange record %d", idx)
		}
		entries = append(entries, domain.ExchangeRecordEntry{Index: idx, Record: record})
	}

	return entries, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
