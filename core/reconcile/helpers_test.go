package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"tablesync/core/entity"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store keyed by table and id with replace semantics.
type memStore struct {
	name string

	mu        sync.Mutex
	tables    map[string]map[int64]entity.Entity
	prepared  map[string]bool
	failIDs   map[int64]error
	fetchErr  error
	upserts   int
	deletes   int
	fetchHook func()
}

func newMemStore(name string) *memStore {
	return &memStore{
		name:     name,
		tables:   make(map[string]map[int64]entity.Entity),
		prepared: make(map[string]bool),
		failIDs:  make(map[int64]error),
	}
}

func (s *memStore) Name() string { return s.name }

func (s *memStore) put(es ...entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range es {
		if s.tables[e.Table()] == nil {
			s.tables[e.Table()] = make(map[int64]entity.Entity)
		}
		s.tables[e.Table()][e.ID()] = e
	}
}

func (s *memStore) Prepare(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared[table] = true
	return nil
}

func (s *memStore) FetchAll(ctx context.Context, table string) ([]entity.Entity, error) {
	if s.fetchHook != nil {
		s.fetchHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []entity.Entity
	for _, e := range s.tables[table] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (s *memStore) Upsert(ctx context.Context, table string, e entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if err := s.failIDs[e.ID()]; err != nil {
		return err
	}
	if s.tables[table] == nil {
		s.tables[table] = make(map[int64]entity.Entity)
	}
	s.tables[table][e.ID()] = e.WithTable(table)
	return nil
}

func (s *memStore) Delete(ctx context.Context, table string, e entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if err := s.failIDs[e.ID()]; err != nil {
		return err
	}
	delete(s.tables[table], e.ID())
	return nil
}

func (s *memStore) ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts + s.deletes
}

var errBoom = errors.New("boom")

func ent(t *testing.T, table string, id int64, fields map[string]any) entity.Entity {
	t.Helper()
	e, err := entity.New(table, id, fields)
	require.NoError(t, err)
	return e
}

func keys(es []entity.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key()
	}
	sort.Strings(out)
	return out
}
