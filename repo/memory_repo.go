package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/models"
)

// MemoryRepo keeps employees in a map. It enforces the same unique email
// and not-found behaviour as the SQL schema and returns the same db
// sentinels, so service code cannot tell the two apart.
type MemoryRepo struct {
	mu     sync.RWMutex
	rows   map[int64]models.Employee
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]models.Employee), nextID: 1}
}

func (m *MemoryRepo) Create(_ context.Context, e *models.Employee) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(e.Email, 0) {
		return 0, &db.DBError{Sentinel: db.ErrDuplicateKey, Cause: fmt.Errorf("email %q exists", e.Email)}
	}
	now := time.Now().UTC()
	e.ID, e.CreatedAt, e.UpdatedAt = m.nextID, now, now
	m.nextID++
	m.rows[e.ID] = *e
	return 1, nil
}

func (m *MemoryRepo) FindAll(_ context.Context) ([]*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Employee, 0, len(m.rows))
	for _, e := range m.rows {
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id int64) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.rows[id]
	if !ok {
		return nil, &db.DBError{Sentinel: db.ErrNotFound, Cause: fmt.Errorf("employee %d", id)}
	}
	return &e, nil
}

func (m *MemoryRepo) Update(_ context.Context, e *models.Employee) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.rows[e.ID]
	if !ok {
		return 0, nil
	}
	if m.emailTaken(e.Email, e.ID) {
		return 0, &db.DBError{Sentinel: db.ErrDuplicateKey, Cause: fmt.Errorf("email %q exists", e.Email)}
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	m.rows[e.ID] = *e
	return 1, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *MemoryRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emailTaken(email, excludeID), nil
}

// RunInTx restores the previous contents when fn fails. Writes from other
// goroutines during fn are not isolated.
func (m *MemoryRepo) RunInTx(_ context.Context, fn func(EmployeeRepository) error) error {
	m.mu.RLock()
	snapshot := make(map[int64]models.Employee, len(m.rows))
	for id, e := range m.rows {
		snapshot[id] = e
	}
	nextID := m.nextID
	m.mu.RUnlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows, m.nextID = snapshot, nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// Len reports the number of stored employees.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// emailTaken must be called with mu held.
func (m *MemoryRepo) emailTaken(email string, excludeID int64) bool {
	for id, e := range m.rows {
		if id != excludeID && e.Email == email {
			return true
		}
	}
	return false
}

var (
	_ EmployeeRepository = (*MemoryRepo)(nil)
	_ TxRunner           = (*MemoryRepo)(nil)
)
