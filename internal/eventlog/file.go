package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hubhook/internal/channel"
	"hubhook/internal/security"
	"hubhook/pkg/fileutil"
)

// fileRecord is the on-disk shape of a record
type fileRecord struct {
	ID        string          `json:"id"`
	Source    channel.Channel `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// FileStore persists the event log as a JSON array, oldest first.
//
// Every Append performs a read-modify-write of the whole file. The cycle is
// serialized by mu and the file is replaced atomically, so concurrent
// appends never lose updates and readers never see a torn file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (or creates) the JSON event log at path
func NewFileStore(path string) (*FileStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	fs := &FileStore{path: path}

	// Fail early on a corrupt file rather than on the first webhook
	if _, err := fs.load(); err != nil {
		return nil, err
	}

	return fs, nil
}

// ensureDir creates the parent directory of path when it is missing.
// Existing directories keep their permissions.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := security.CreateSecureDir(dir, security.PermDirectory); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}
	return nil
}

// Path returns the location of the event log file
func (fs *FileStore) Path() string {
	return fs.path
}

// Append adds a record to the log and rewrites the file
func (fs *FileStore) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return err
	}

	records = append(records, fileRecord{
		ID:        record.ID,
		Source:    record.Source,
		Timestamp: record.ReceivedAt.UTC(),
		Data:      cloneBody(record.Body),
	})

	return fs.save(records)
}

// List returns all records, newest first
func (fs *FileStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	stored, err := fs.load()
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(stored))
	for i, r := range stored {
		// The file is indented; bodies are handed back compact
		var body bytes.Buffer
		if err := json.Compact(&body, r.Data); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", r.ID, err)
		}
		records[i] = Record{
			ID:         r.ID,
			Source:     r.Source,
			ReceivedAt: r.Timestamp,
			Body:       body.Bytes(),
		}
	}

	return newestFirst(records), nil
}

// Count returns the number of records in the file
func (fs *FileStore) Count(ctx context.Context) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Close is a no-op; the file is not held open between operations
func (fs *FileStore) Close() error {
	return nil
}

// load reads the file. A missing or empty file is an empty log.
// Callers must hold mu (or be the constructor).
func (fs *FileStore) load() ([]fileRecord, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse event log %s: %w", fs.path, err)
	}

	return records, nil
}

// save writes records to disk atomically. Callers must hold mu.
func (fs *FileStore) save(records []fileRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode event log: %w", err)
	}

	if err := fileutil.WriteFileAtomic(fs.path, buf.Bytes(), security.PermDataFile); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}

	return nil
}
