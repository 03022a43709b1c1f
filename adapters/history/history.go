// Package history stores completed calculations for later retrieval.
// Backends: file (one JSON document per calculation, grouped by zone)
// and memory.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Record is one stored calculation
type Record struct {
	// ID is the unique record identifier
	ID string `json:"id"`

	// ZoneID the calculation was made for
	ZoneID types.ZoneID `json:"zone_id"`

	// Start and End bound the session
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Total and VAT of the calculation
	Total decimal.Decimal `json:"total"`
	VAT   decimal.Decimal `json:"vat_amount"`

	// Currency of the amounts
	Currency types.Currency `json:"currency"`

	// Capped reports whether a daily maximum clamped the total
	Capped bool `json:"capped_by_daily_max"`

	// Source names what produced the record (api, cli)
	Source string `json:"source,omitempty"`

	// SnapshotHash ties the record to the dataset it was priced against
	SnapshotHash string `json:"snapshot_hash,omitempty"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter filters record listing
type ListFilter struct {
	ZoneID types.ZoneID
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Store is the calculation history interface
type Store interface {
	// Save stores a calculation record
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*Record, error)

	// List lists records, newest first
	List(ctx context.Context, filter *ListFilter) ([]*Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

func notFound(id string) error {
	return errors.Newf(errors.TypeNotFound, "calculation %s not found", id)
}

func matches(rec *Record, filter *ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.ZoneID != "" && rec.ZoneID != filter.ZoneID {
		return false
	}
	if !filter.Since.IsZero() && rec.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && rec.CreatedAt.After(filter.Until) {
		return false
	}
	return true
}

func page(records []*Record, filter *ListFilter) []*Record {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if filter == nil {
		return records
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return nil
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records
}

// FileStore is a file-based history backend
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	zoneDir := filepath.Join(s.basePath, string(rec.ZoneID))
	if err := os.MkdirAll(zoneDir, 0755); err != nil {
		return fmt.Errorf("creating zone directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return os.WriteFile(filepath.Join(zoneDir, rec.ID+".json"), data, 0644)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name(), id+".json"))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling record: %w", err)
		}
		return &rec, nil
	}
	return nil, notFound(id)
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		if matches(&rec, filter) {
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(records, filter), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(s.basePath, entry.Name(), id+".json")
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
	}
	return notFound(id)
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory history backend
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	for _, rec := range s.records {
		if matches(rec, filter) {
			records = append(records, rec)
		}
	}
	return page(records, filter), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		if path == "" {
			path = ".parkcalc-history"
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}
}

// Ensure interfaces are implemented
var _ io.Closer = (*FileStore)(nil)
var _ io.Closer = (*MemoryStore)(nil)
