package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var errEmptyCompany = errors.New("company name is empty")

// FileLedger keeps one normalized company per line in a plain text file.
// The file is re-read on every call, so appends from other processes are seen,
// but claims and the check-and-set only hold within one process.
// Use RedisLedger when several processes scrape at once.
type FileLedger struct {
	path string

	mu     sync.Mutex
	claims map[string]struct{}
}

func NewFile(path string) *FileLedger {
	return &FileLedger{path: path, claims: make(map[string]struct{})}
}

func (l *FileLedger) Path() string {
	return l.path
}

func (l *FileLedger) Seen(_ context.Context, company string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys, err := l.read()
	if err != nil {
		return false, err
	}

	_, ok := keys[Normalize(company)]
	return ok, nil
}

func (l *FileLedger) Mark(_ context.Context, company string) (bool, error) {
	key := Normalize(company)
	if key == "" {
		return false, errEmptyCompany
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	keys, err := l.read()
	if err != nil {
		return false, err
	}

	if _, ok := keys[key]; ok {
		return false, nil
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(key + "\n"); err != nil {
		return false, fmt.Errorf("append to ledger: %w", err)
	}

	return true, nil
}

func (l *FileLedger) Claim(_ context.Context, company string) (bool, error) {
	key := Normalize(company)
	if key == "" {
		return false, errEmptyCompany
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.claims[key]; ok {
		return false, nil
	}
	l.claims[key] = struct{}{}
	return true, nil
}

func (l *FileLedger) Release(_ context.Context, company string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.claims, Normalize(company))
	return nil
}

// read loads the recorded keys. Callers hold mu.
func (l *FileLedger) read() (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return keys, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if key := Normalize(scanner.Text()); key != "" {
			keys[key] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return keys, nil
}
