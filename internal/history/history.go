// Package history keeps a local record of audits run from the CLI.
// History is stored as a JSON file in the user's config directory.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/arin/codeaudit/internal/config"
)

const (
	fileName       = "history.json"
	maxEntries     = 200
	maxReplyLength = 4000
)

// fileMu guards concurrent access to the history file.
var fileMu sync.Mutex

// Entry is one audit run.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"` // file path, or "-" for stdin
	PackageType string    `json:"package_type"`
	Model       string    `json:"model"`
	Completed   bool      `json:"completed"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Warnings    int       `json:"warnings,omitempty"`
	Reply       string    `json:"reply,omitempty"`
}

// truncateReply caps the stored reply, backing off to a rune boundary.
func truncateReply(reply string) string {
	if len(reply) <= maxReplyLength {
		return reply
	}
	cut := maxReplyLength
	for cut > 0 && !utf8.RuneStart(reply[cut]) {
		cut--
	}
	return reply[:cut] + "\n... (truncated)"
}

func historyPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Save appends a new entry to the history file. Long replies are
// truncated before they are stored.
func Save(entry Entry) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	entry.Timestamp = time.Now()
	entry.Reply = truncateReply(entry.Reply)

	entries, _ := loadAll()
	entries = append(entries, entry)

	// Trim to max entries, keeping the most recent.
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(historyPath(), data, 0o600)
}

// Load returns the most recent n history entries. A limit of 0 returns all.
func Load(limit int) ([]Entry, error) {
	entries, err := loadAll()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

func loadAll() ([]Entry, error) {
	data, err := os.ReadFile(historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
