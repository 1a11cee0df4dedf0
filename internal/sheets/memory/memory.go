// Package memory keeps mirrored tables in process. It backs the worker
// when no spreadsheet is configured, and the tests.
package memory

import (
	"context"
	"sync"

	"guidetrack/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
	writes int
}

var (
	_ sheets.TableWriter = (*Store)(nil)
	_ sheets.TableReader = (*Store)(nil)
)

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

func (s *Store) WriteTable(_ context.Context, tab string, header []string, rows [][]string) error {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, append([]string(nil), header...))
	for _, r := range rows {
		table = append(table, append([]string(nil), r...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[tab] = table
	s.writes++
	return nil
}

func (s *Store) ReadTable(_ context.Context, tab string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tab]
	if !ok {
		return nil, sheets.ErrUnknownTab
	}
	out := make([][]string, len(t))
	for i, r := range t {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// Writes counts WriteTable calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
