package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"chatbot/internal/domain"
)

// FileStore appends transcripts to a JSON lines file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("transcript: file store needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(ctx context.Context, t domain.Transcript) error {
	t = prepare(t)
	line, err := json.Marshal(toRecord(t))
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	return f.Close()
}

// List returns the last limit transcripts, oldest first. Malformed lines are skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]domain.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	var out []domain.Transcript
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		out = append(out, r.transcript())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript file: %w", err)
	}
	return tail(out, limit), nil
}

func (s *FileStore) Close() error { return nil }
