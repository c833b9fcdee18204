package solutions

import (
	"context"
	"sync"
	"time"

	"github.com/Vovadm/exammath.ru/internal/models"
)

// memoryStore is an in-process Store with the same atomicity contract
// as the SQL implementation: RecordCheck either fully applies or not
// at all, serialized per store.
type memoryStore struct {
	mu      sync.Mutex
	tasks   map[int64]*models.Task
	stats   map[int64]*models.UserStats
	history map[int64][]models.HistoryEntry
	nextID  int64
	solved  map[[2]int64]bool
}

func newMemoryStore(tasks ...*models.Task) *memoryStore {
	m := &memoryStore{
		tasks:   map[int64]*models.Task{},
		stats:   map[int64]*models.UserStats{},
		history: map[int64][]models.HistoryEntry{},
		solved:  map[[2]int64]bool{},
	}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *memoryStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (m *memoryStore) RecordCheck(ctx context.Context, userID int64, task *models.Task, answer string, correct bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[userID]
	if !ok {
		st = &models.UserStats{UserID: userID}
		m.stats[userID] = st
	}

	key := [2]int64{userID, task.ID}
	firstSolve := correct && !m.solved[key]
	if correct {
		m.solved[key] = true
	}

	m.nextID++
	a := answer
	c := correct
	m.history[userID] = append(m.history[userID], models.HistoryEntry{
		ID:        m.nextID,
		TaskID:    task.ID,
		Answer:    &a,
		IsCorrect: &c,
		CreatedAt: time.Now(),
	})

	ApplyCheck(st, task.TaskType, correct, firstSolve, time.Now())
	return nil
}

func (m *memoryStore) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stats[userID]
	if !ok {
		return &models.UserStats{UserID: userID, StatsByType: map[string]models.TypeStat{}}, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memoryStore) History(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Entries append in id order; serve newest first.
	entries := m.history[userID]
	out := []models.HistoryEntry{}
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
