package conversation

import (
	"cypher_chat/pkg"
	"cypher_chat/src/logger"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// ErrCorruptTranscript marks a transcript file that is not a JSON entry list
var ErrCorruptTranscript = errors.New("corrupt transcript file")

// TranscriptArchive appends completed turns to one JSON file per session
type TranscriptArchive struct {
	baseDir string
	mu      sync.Mutex
}

func NewTranscriptArchive(baseDir string) *TranscriptArchive {
	return &TranscriptArchive{baseDir: baseDir}
}

// Load returns every archived entry of a session, oldest first
func (t *TranscriptArchive) Load(sessionID string) ([]pkg.TranscriptEntry, error) {
	path, err := t.path(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []pkg.TranscriptEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var entries []pkg.TranscriptEntry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptTranscript, path, err)
	}
	return entries, nil
}

func (t *TranscriptArchive) Save(entry pkg.TranscriptEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(t.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	path, err := t.path(entry.SessionID)
	if err != nil {
		return err
	}

	entries, err := t.Load(entry.SessionID)
	if errors.Is(err, ErrCorruptTranscript) {
		// keep the unreadable file for inspection and start a new one
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
		if renameErr := os.Rename(path, aside); renameErr != nil {
			return fmt.Errorf("failed to move corrupt transcript aside: %w", renameErr)
		}
		logger.Warn().Err(err).Str("session_id", entry.SessionID).Str("moved_to", aside).Msg("Corrupt transcript moved aside")
		entries = []pkg.TranscriptEntry{}
	} else if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace transcript file: %w", err)
	}

	logger.Debug().Str("path", path).Int("entries", len(entries)).Msg("Transcript saved")
	return nil
}

func (t *TranscriptArchive) path(sessionID string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(t.baseDir, sessionID+".json"), nil
}
