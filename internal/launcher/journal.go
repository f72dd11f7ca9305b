package launcher

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JournalEntry records one launch.
type JournalEntry struct {
	Timestamp string   `json:"timestamp"`
	Runtime   string   `json:"runtime"`
	Args      []string `json:"args"`
	Classpath []string `json:"classpath,omitempty"`
	ExitCode  int      `json:"exit_code"`
	Duration  float64  `json:"duration_ms"`
	Error     string   `json:"error,omitempty"`
}

// Journal appends launch records in JSON-lines format.
type Journal struct {
	writer io.WriteCloser
	mu     sync.Mutex
}

// OpenJournal opens (or creates) the journal at path.
// An empty path returns a journal that discards entries.
func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		return &Journal{writer: nopWriteCloser{}}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{writer: file}, nil
}

// Record writes an entry, stamping it if Timestamp is empty.
func (j *Journal) Record(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	data = append(data, '\n')
	if _, err := j.writer.Write(data); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writer.Close()
}

// ReadJournal reads entries from path up to the first malformed record.
// A missing file yields no entries.
func ReadJournal(path string) ([]JournalEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	var entries []JournalEntry
	decoder := json.NewDecoder(file)
	for {
		var entry JournalEntry
		if err := decoder.Decode(&entry); err != nil {
			if err == io.EOF {
				break
			}
			// A syntax error leaves the decoder unusable
			return entries, nil
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }
