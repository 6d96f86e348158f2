// Package memory is an in-process backend for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	nextID int64
	cats   []core.Category
	txs    []core.Transaction
	goals  []core.Goal
	now    func() time.Time
}

// Seed is the layout of a seed file.
type Seed struct {
	Categories   []core.Category    `json:"categories"`
	Transactions []core.Transaction `json:"transactions"`
	Goals        []core.Goal        `json:"goals"`
}

// New returns a store holding cats, or the default categories when cats is empty.
func New(cats []core.Category) *Store {
	s := &Store{now: time.Now}
	if len(cats) == 0 {
		cats = core.DefaultCategories()
	}
	for _, c := range dedupeCategories(cats) {
		c.ID = s.newID()
		s.cats = append(s.cats, c)
	}
	return s
}

// NewFromFile loads a JSON seed. An empty path or a missing file yields a
// store with the default categories.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(nil), nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return NewFromSeed(seed)
}

// NewFromSeed builds a store from seed data. Transactions and goals refer to
// categories by name; every record is validated.
func NewFromSeed(seed Seed) (*Store, error) {
	s := New(seed.Categories)
	ctx := context.Background()
	for i, tx := range seed.Transactions {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	for i, g := range seed.Goals {
		if g.Status == "" {
			g.Status = core.GoalActive
		}
		if _, err := s.CreateGoal(ctx, g); err != nil {
			return nil, fmt.Errorf("seed goal %d: %w", i, err)
		}
	}
	return s, nil
}

func (s *Store) newID() *int64 {
	s.nextID++
	return core.Int64Ptr(s.nextID)
}

func (s *Store) Ping(context.Context) error { return nil }

// Snapshot returns copies; later writes never show up in a taken snapshot.
func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs := make([]core.Goal, len(s.goals))
	for i, g := range s.goals {
		gs[i] = cloneGoal(g)
	}
	return core.Snapshot{
		Transactions: append(make([]core.Transaction, 0, len(s.txs)), s.txs...),
		Categories:   append(make([]core.Category, 0, len(s.cats)), s.cats...),
		Goals:        gs,
		TakenAt:      s.now(),
	}, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cats {
		if strings.EqualFold(existing.Name, strings.TrimSpace(c.Name)) {
			return core.Category{}, fmt.Errorf("%w: %q", core.ErrDuplicateCategory, c.Name)
		}
	}
	c.ID = s.newID()
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, err := s.resolve(tx.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Category = cat
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = s.newID()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID != nil && *tx.ID == id {
			s.txs = append(s.txs[:i:i], s.txs[i+1:]...)
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.Category != nil {
		cat, err := s.resolve(*g.Category)
		if err != nil {
			return core.Goal{}, err
		}
		g.Category = &cat
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	g.ID = s.newID()
	s.goals = append(s.goals, g)
	return cloneGoal(g), nil
}

func (s *Store) ActiveGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0)
	for _, g := range s.goals {
		if g.Status == core.GoalActive {
			out = append(out, cloneGoal(g))
		}
	}
	return out, nil
}

// AccrueGoals checks every goal exists before moving any, and holds s.mu
// across the whole read-modify-write.
func (s *Store) AccrueGoals(_ context.Context, deltas []store.GoalDelta, on core.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := make([]int, len(deltas))
	for i, d := range deltas {
		j := s.goalIndex(d.GoalID)
		if j < 0 {
			return 0, fmt.Errorf("goal %d: %w", d.GoalID, core.ErrNotFound)
		}
		idx[i] = j
	}

	updated := 0
	for i, d := range deltas {
		g := &s.goals[idx[i]]
		if g.Status != core.GoalActive {
			continue
		}
		*g = goals.AddProgress(*g, d.Amount, on)
		updated++
	}
	return updated, nil
}

func (s *Store) CancelGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.goalIndex(id)
	if i < 0 {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	s.goals[i].Status = core.GoalCancelled
	return cloneGoal(s.goals[i]), nil
}

// goalIndex returns the position of the goal with id, or -1. Callers hold s.mu.
func (s *Store) goalIndex(id int64) int {
	for i := range s.goals {
		if s.goals[i].ID != nil && *s.goals[i].ID == id {
			return i
		}
	}
	return -1
}

// resolve finds the stored category matching ref. Callers hold s.mu.
func (s *Store) resolve(ref core.Category) (core.Category, error) {
	for _, c := range s.cats {
		if ref.ID != nil {
			if *c.ID == *ref.ID {
				return c, nil
			}
			continue
		}
		if strings.EqualFold(c.Name, strings.TrimSpace(ref.Name)) {
			return c, nil
		}
	}
	if ref.ID != nil {
		return core.Category{}, fmt.Errorf("category %d: %w", *ref.ID, core.ErrNotFound)
	}
	return core.Category{}, fmt.Errorf("category %q: %w", ref.Name, core.ErrNotFound)
}

func cloneGoal(g core.Goal) core.Goal {
	if g.CompletedAt != nil {
		d := *g.CompletedAt
		g.CompletedAt = &d
	}
	if g.Category != nil {
		c := *g.Category
		g.Category = &c
	}
	return g
}

// dedupeCategories drops later categories whose name repeats an earlier one.
func dedupeCategories(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		key := strings.ToLower(c.Name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
