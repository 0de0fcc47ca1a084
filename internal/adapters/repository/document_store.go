package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	natomic "github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
)

const (
	documentFilePerms = 0o644
	documentDirPerms  = 0o755
)

var errEmptyDocument = errors.New("document is empty")

// DocumentStore keeps the whole library in one pretty-printed JSON file.
// Every call re-reads the file; nothing is cached between calls.
type DocumentStore struct {
	path   string
	strict bool
	logger *logger.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex

	writeFailures atomic.Int64
	recoveries    atomic.Int64
}

// NewDocumentStore creates a store backed by cfg.Path
func NewDocumentStore(cfg config.StorageConfig, appLogger *logger.Logger) *DocumentStore {
	return &DocumentStore{
		path:   cfg.Path,
		strict: cfg.StrictWrites,
		logger: appLogger.WithComponent("document_store"),
	}
}

// Path returns the backing file path
func (s *DocumentStore) Path() string {
	return s.path
}

// WriteFailures returns how many writes have failed since start.
func (s *DocumentStore) WriteFailures() int64 {
	return s.writeFailures.Load()
}

// Recoveries returns how many times a default document replaced a missing or
// unreadable one.
func (s *DocumentStore) Recoveries() int64 {
	return s.recoveries.Load()
}

// Read loads the document, replacing it with the default one when the file
// is missing or cannot be parsed.
func (s *DocumentStore) Read() *entities.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Write replaces the whole document on disk.
func (s *DocumentStore) Write(doc *entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(doc)
}

// Update performs one locked read-modify-write cycle.
func (s *DocumentStore) Update(fn func(doc *entities.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	if err := fn(doc); err != nil {
		return err
	}

	return s.write(doc)
}

// GetBooks returns the stored books in insertion order. Never nil.
func (s *DocumentStore) GetBooks() []entities.Book {
	return s.Read().Books
}

// SaveBooks replaces the books section.
func (s *DocumentStore) SaveBooks(books []entities.Book) error {
	return s.Update(func(doc *entities.Document) error {
		doc.Books = books
		return nil
	})
}

// GetSettings returns the stored settings, or the defaults.
func (s *DocumentStore) GetSettings() entities.Settings {
	return s.Read().Settings
}

// SaveSettings replaces the settings section.
func (s *DocumentStore) SaveSettings(settings entities.Settings) error {
	return s.Update(func(doc *entities.Document) error {
		doc.Settings = settings
		return nil
	})
}

// CheckWritable verifies that the document directory accepts new files.
func (s *DocumentStore) CheckWritable() error {
	f, err := os.CreateTemp(filepath.Dir(s.path), ".probe-*")
	if err != nil {
		return fmt.Errorf("document directory is not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()

	return os.Remove(name)
}

func (s *DocumentStore) read() *entities.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Infow("Document not found, creating default", "path", s.path)
			return s.recoverDefault()
		}
		s.logger.LogStorageEvent("read_failed", s.path, err)
		return s.recoverDefault()
	}

	doc, err := decodeDocument(data, s.logger)
	if err != nil {
		s.logger.LogStorageEvent("parse_failed", s.path, err)
		return s.recoverDefault()
	}

	return doc
}

func (s *DocumentStore) recoverDefault() *entities.Document {
	s.recoveries.Add(1)

	doc := entities.DefaultDocument()
	// A failed write here is already logged and counted; reads never fail.
	_ = s.write(doc)

	return doc
}

func (s *DocumentStore) write(doc *entities.Document) error {
	doc.Normalize()

	err := s.writeFile(doc)
	if err == nil {
		return nil
	}

	s.writeFailures.Add(1)
	s.logger.LogStorageEvent("write_failed", s.path, err)

	if s.strict {
		return fmt.Errorf("%w: %v", entities.ErrStorage, err)
	}

	return nil
}

func (s *DocumentStore) writeFile(doc *entities.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), documentDirPerms); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	if err := natomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	// atomic.WriteFile leaves the temp file's permissions on new files
	if err := os.Chmod(s.path, documentFilePerms); err != nil {
		return fmt.Errorf("failed to set document permissions: %w", err)
	}

	return nil
}

// decodeDocument parses the document leniently. Comments and trailing commas
// are accepted; each section falls back to its default on its own.
func decodeDocument(data []byte, log *logger.Logger) (*entities.Document, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(standardized, &raw); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if raw == nil {
		return nil, errEmptyDocument
	}

	doc := entities.DefaultDocument()

	if section, ok := raw["users"]; ok {
		doc.Users = decodeList[entities.User](section, "users", log)
	}
	if section, ok := raw["books"]; ok {
		doc.Books = decodeList[entities.Book](section, "books", log)
	}
	if section, ok := raw["settings"]; ok {
		doc.Settings = decodeSettings(section, log)
	}

	return doc, nil
}

// decodeList decodes a JSON array entry by entry. A section that is not an
// array yields an empty list; entries that do not decode are dropped.
func decodeList[T any](section json.RawMessage, name string, log *logger.Logger) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(section, &items); err != nil {
		log.WithError(err).Warnw("Document section is not a list, using empty", "section", name)
		return []T{}
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			log.WithError(err).Warnw("Dropping undecodable entry", "section", name, "index", i)
			continue
		}
		out = append(out, v)
	}

	return out
}

func decodeSettings(section json.RawMessage, log *logger.Logger) entities.Settings {
	settings := entities.DefaultSettings()
	if err := json.Unmarshal(section, &settings); err != nil {
		log.WithError(err).Warn("Malformed settings, using defaults")
		return entities.DefaultSettings()
	}

	return settings
}
