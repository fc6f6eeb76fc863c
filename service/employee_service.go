// Package service orchestrates the employee operations: validation, salary
// computation, email uniqueness and persistence through a repository.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/repo"
)

// EmployeeService holds no per-call state; it is safe to share.
type EmployeeService struct {
	repo   repo.EmployeeRepository
	tx     repo.TxRunner
	policy payroll.Policy
}

type Option func(*EmployeeService)

// WithPolicy replaces payroll.DefaultPolicy.
func WithPolicy(p payroll.Policy) Option {
	return func(s *EmployeeService) { s.policy = p }
}

// WithTxRunner makes Import atomic. Without it Import writes through the
// plain repository and a failure leaves earlier rows in place.
func WithTxRunner(r repo.TxRunner) Option {
	return func(s *EmployeeService) { s.tx = r }
}

func NewEmployeeService(r repo.EmployeeRepository, opts ...Option) *EmployeeService {
	s := &EmployeeService{repo: r, policy: payroll.DefaultPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = directRunner{r: r}
	}
	return s
}

// Policy returns the payroll policy in effect.
func (s *EmployeeService) Policy() payroll.Policy { return s.policy }

// Create validates p, computes the net salary and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, p models.CreateEmployeeParams) (*models.Employee, error) {
	e, err := s.build(p)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, s.repo, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces every mutable field of the employee p.ID and recomputes
// the salary. The stored row is left untouched when any check fails.
func (s *EmployeeService) Update(ctx context.Context, p models.UpdateEmployeeParams) (*models.Employee, error) {
	cur, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	e, err := s.build(p.Create())
	if err != nil {
		return nil, err
	}
	e.ID = cur.ID
	e.CreatedAt = cur.CreatedAt

	taken, err := s.repo.ExistsByEmail(ctx, e.Email, e.ID)
	if err != nil {
		return nil, storageErr("exists by email", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, e.Email)
	}

	n, err := s.repo.Update(ctx, e)
	if err != nil {
		return nil, storageErr("update", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, p.ID)
	}
	return e, nil
}

// Delete reports whether a row was removed. A missing id is not an error.
func (s *EmployeeService) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, storageErr("delete", err)
	}
	return n > 0, nil
}

// List returns every employee by ascending id, never nil.
func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storageErr("find all", err)
	}
	if all == nil {
		all = []*models.Employee{}
	}
	return all, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	switch {
	case db.IsNotFound(err):
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	case err != nil:
		return nil, storageErr("find by id", err)
	}
	return e, nil
}

// Import creates every item or none of them. All items are validated
// before the first write; duplicates inside the batch are rejected too.
func (s *EmployeeService) Import(ctx context.Context, items []models.CreateEmployeeParams) ([]*models.Employee, error) {
	built := make([]*models.Employee, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, p := range items {
		e, err := s.build(p)
		if err != nil {
			return nil, &ImportError{Row: i + 1, Err: err}
		}
		if first, dup := seen[e.Email]; dup {
			return nil, &ImportError{Row: i + 1, Err: fmt.Errorf("%w: %s (row %d)", ErrDuplicateEmail, e.Email, first)}
		}
		seen[e.Email] = i + 1
		built = append(built, e)
	}

	err := s.tx.RunInTx(ctx, func(r repo.EmployeeRepository) error {
		for i, e := range built {
			if err := s.insert(ctx, r, e); err != nil {
				return &ImportError{Row: i + 1, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return built, nil
}

// Preview computes a payslip without touching storage.
func (s *EmployeeService) Preview(baseSalary, workedHours float64) (payroll.Breakdown, error) {
	if err := s.policy.ValidateSalary(baseSalary); err != nil {
		return payroll.Breakdown{}, err
	}
	return s.policy.Compute(baseSalary, workedHours)
}

// build runs the rules and the pipeline and returns a transient record.
func (s *EmployeeService) build(p models.CreateEmployeeParams) (*models.Employee, error) {
	e := &models.Employee{
		Name:        strings.TrimSpace(p.Name),
		Email:       strings.TrimSpace(p.Email),
		Age:         p.Age,
		WorkedHours: p.WorkedHours,
	}

	in := payroll.Input{Name: e.Name, Age: e.Age, BaseSalary: p.BaseSalary}
	if err := s.policy.ValidateEmployee(in); err != nil {
		return nil, err
	}
	if !strings.Contains(e.Email, "@") {
		return nil, fmt.Errorf("%w: %q must contain @", ErrInvalidEmail, e.Email)
	}

	net, err := s.policy.NetSalary(p.BaseSalary, p.WorkedHours)
	if err != nil {
		return nil, err
	}
	e.NetSalary = net
	return e, nil
}

func (s *EmployeeService) insert(ctx context.Context, r repo.EmployeeRepository, e *models.Employee) error {
	taken, err := r.ExistsByEmail(ctx, e.Email, 0)
	if err != nil {
		return storageErr("exists by email", err)
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, e.Email)
	}
	if _, err := r.Create(ctx, e); err != nil {
		return storageErr("create", err)
	}
	return nil
}

type directRunner struct {
	r repo.EmployeeRepository
}

func (d directRunner) RunInTx(_ context.Context, fn func(repo.EmployeeRepository) error) error {
	return fn(d.r)
}
