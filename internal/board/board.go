// Package board holds the two task columns in memory and mirrors every
// change to a persistence store.
//
// Every mutation runs under one lock: the columns are changed, then the
// full state is written through to the store before the lock is released.
// Reads take the same lock in shared mode and return copies.
package board

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"signalnoise/internal/models"
	"signalnoise/internal/store"
)

const maxIDAttempts = 8

// Board is the authoritative in-memory task state.
type Board struct {
	mu      sync.RWMutex
	store   store.Store
	columns map[models.Column][]*models.Task
	issued  map[string]struct{} // every id ever held, so none is reused
	newID   func() string
}

// New creates a board seeded from whatever s currently holds. If the store
// cannot be read at all the board starts empty.
func New(ctx context.Context, s store.Store) *Board {
	b := &Board{
		store:   s,
		columns: make(map[models.Column][]*models.Task, len(models.Columns)),
		issued:  make(map[string]struct{}),
		newID:   uuid.NewString,
	}
	snapshot, err := s.LoadAll(context.WithoutCancel(ctx))
	if err != nil {
		log.Printf("initial load from %s failed, starting empty: %v", s.Location(), err)
		snapshot = models.Snapshot{}
	}
	b.adopt(snapshot)

	return b
}

// List returns the tasks of column sorted by order. Tasks with equal order
// keep their insertion order.
func (b *Board) List(column models.Column) ([]models.Task, error) {
	if !column.Valid() {
		return nil, columnNotFound(column)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.sorted(column), nil
}

// Snapshot returns both columns, each sorted by order.
func (b *Board) Snapshot() models.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.snapshot()
}

// Stats counts the tasks in each column that are not ignored.
func (b *Board) Stats() models.Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var stats models.Stats
	for _, task := range b.columns[models.ColumnSignal] {
		if task.Counted() {
			stats.SignalCount++
		}
	}
	for _, task := range b.columns[models.ColumnNoise] {
		if task.Counted() {
			stats.NoiseCount++
		}
	}

	return stats
}

// Add appends a new task to column, ordered after every existing task there.
//
// A *PersistenceError is returned together with the created task if the
// save fails; the task stays on the board.
func (b *Board) Add(ctx context.Context, column models.Column, text string) (models.Task, error) {
	if !column.Valid() {
		return models.Task{}, columnNotFound(column)
	}
	if err := models.ValidateText(text); err != nil {
		return models.Task{}, invalidf("%v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := b.nextID()
	if err != nil {
		return models.Task{}, err
	}

	maxOrder := -1
	for _, task := range b.columns[column] {
		maxOrder = max(maxOrder, task.Order)
	}

	task := &models.Task{ID: id, Text: text, Order: maxOrder + 1}
	b.columns[column] = append(b.columns[column], task)
	b.issued[id] = struct{}{}

	return *task, b.persist(ctx)
}

// EditText replaces the text of a task.
func (b *Board) EditText(ctx context.Context, column models.Column, id, text string) (models.Task, error) {
	if !column.Valid() {
		return models.Task{}, columnNotFound(column)
	}
	if err := models.ValidateText(text); err != nil {
		return models.Task{}, invalidf("%v", err)
	}

	return b.update(ctx, column, id, func(task *models.Task) {
		task.Text = text
	})
}

// SetCompleted sets the completed flag of a task.
func (b *Board) SetCompleted(ctx context.Context, column models.Column, id string, completed bool) (models.Task, error) {
	return b.update(ctx, column, id, func(task *models.Task) {
		task.Completed = completed
	})
}

// SetIgnored sets the ignored flag of a task.
func (b *Board) SetIgnored(ctx context.Context, column models.Column, id string, ignored bool) (models.Task, error) {
	return b.update(ctx, column, id, func(task *models.Task) {
		task.Ignored = ignored
	})
}

// Delete removes a task from column.
func (b *Board) Delete(ctx context.Context, column models.Column, id string) error {
	if !column.Valid() {
		return columnNotFound(column)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tasks := b.columns[column]
	i := slices.IndexFunc(tasks, func(task *models.Task) bool { return task.ID == id })
	if i < 0 {
		return taskNotFound(column, id)
	}
	b.columns[column] = slices.Delete(tasks, i, i+1)

	return b.persist(ctx)
}

// BulkReorder replaces the membership and order of both columns.
//
// Together the two lists must name every task on the board exactly once.
// Otherwise a *ValidationError lists the missing, extra and duplicate ids and
// the board is left untouched. On success each column is rebuilt in the
// given sequence with orders 0..n-1; a task moves columns by appearing in the
// other list.
func (b *Board) BulkReorder(ctx context.Context, signalIDs, noiseIDs []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	byID := make(map[string]*models.Task)
	for _, column := range models.Columns {
		for _, task := range b.columns[column] {
			byID[task.ID] = task
		}
	}

	if err := checkReorder(byID, signalIDs, noiseIDs); err != nil {
		return err
	}

	rebuild := func(ids []string) []*models.Task {
		tasks := make([]*models.Task, len(ids))
		for i, id := range ids {
			task := byID[id]
			task.Order = i
			tasks[i] = task
		}
		return tasks
	}
	b.columns[models.ColumnSignal] = rebuild(signalIDs)
	b.columns[models.ColumnNoise] = rebuild(noiseIDs)

	return b.persist(ctx)
}

// Save writes the current state to the store.
func (b *Board) Save(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.persist(ctx)
}

// Reload discards the in-memory columns and replaces them with the store's
// contents, which are empty if nothing has been saved. Changes whose save
// failed are lost.
//
// If the store could not be read, the board keeps its current state and a
// *PersistenceError is returned along with that state.
func (b *Board) Reload(ctx context.Context) (models.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	loaded, err := b.store.LoadAll(context.WithoutCancel(ctx))
	if err != nil {
		return b.snapshot(), &PersistenceError{Op: "load", Err: err}
	}

	b.adopt(loaded)
	snapshot := b.snapshot()
	log.Printf("reloaded from %s: signal %d tasks, noise %d tasks",
		b.store.Location(), len(snapshot.Signal), len(snapshot.Noise))

	return snapshot, nil
}

// Clear empties both columns and erases the durable artifact.
func (b *Board) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, column := range models.Columns {
		b.columns[column] = nil
	}

	if err := b.store.EraseAll(context.WithoutCancel(ctx)); err != nil {
		return &PersistenceError{Op: "erase", Err: err}
	}

	return nil
}

func (b *Board) update(ctx context.Context, column models.Column, id string, apply func(*models.Task)) (models.Task, error) {
	if !column.Valid() {
		return models.Task{}, columnNotFound(column)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, task := range b.columns[column] {
		if task.ID == id {
			apply(task)
			return *task, b.persist(ctx)
		}
	}

	return models.Task{}, taskNotFound(column, id)
}

// persist must be called with b.mu held. The write is detached from ctx
// cancellation: once memory has changed, the save always runs.
func (b *Board) persist(ctx context.Context) error {
	snapshot := b.snapshot()
	if err := b.store.SaveAll(context.WithoutCancel(ctx), snapshot.Signal, snapshot.Noise); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	return nil
}

// adopt must be called with b.mu held.
func (b *Board) adopt(snapshot models.Snapshot) {
	if dropped := snapshot.Normalize(); dropped > 0 {
		log.Printf("dropped %d unusable records loaded from %s", dropped, b.store.Location())
	}

	for _, column := range models.Columns {
		loaded := snapshot.Tasks(column)
		tasks := make([]*models.Task, len(loaded))
		for i := range loaded {
			task := loaded[i]
			tasks[i] = &task
			b.issued[task.ID] = struct{}{}
		}
		b.columns[column] = tasks
	}
}

func (b *Board) snapshot() models.Snapshot {
	return models.Snapshot{
		Signal: b.sorted(models.ColumnSignal),
		Noise:  b.sorted(models.ColumnNoise),
	}
}

func (b *Board) sorted(column models.Column) []models.Task {
	tasks := make([]models.Task, len(b.columns[column]))
	for i, task := range b.columns[column] {
		tasks[i] = *task
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})

	return tasks
}

func (b *Board) nextID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := b.newID()
		if id == "" {
			continue
		}
		if _, taken := b.issued[id]; !taken {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w (%d attempts)", ErrIDGenerationFailed, maxIDAttempts)
}

func checkReorder(byID map[string]*models.Task, signalIDs, noiseIDs []string) error {
	provided := make(map[string]struct{}, len(signalIDs)+len(noiseIDs))
	duplicates := make(map[string]struct{})
	extras := make(map[string]struct{})

	for _, ids := range [][]string{signalIDs, noiseIDs} {
		for _, id := range ids {
			if _, seen := provided[id]; seen {
				duplicates[id] = struct{}{}
				continue
			}
			provided[id] = struct{}{}
			if _, ok := byID[id]; !ok {
				extras[id] = struct{}{}
			}
		}
	}

	missing := make(map[string]struct{})
	for id := range byID {
		if _, ok := provided[id]; !ok {
			missing[id] = struct{}{}
		}
	}

	if len(missing) == 0 && len(extras) == 0 && len(duplicates) == 0 {
		return nil
	}

	return &ValidationError{
		Msg:        "task id mismatch",
		Missing:    sortedKeys(missing),
		Extra:      sortedKeys(extras),
		Duplicates: sortedKeys(duplicates),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
