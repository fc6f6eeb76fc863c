package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/models"
)

// EmployeeRepository is the storage contract the employee service relies
// on. Implementations never validate business rules; they only persist.
type EmployeeRepository interface {
	// Create inserts e, sets e.ID and the timestamps, and reports the
	// number of rows written.
	Create(ctx context.Context, e *models.Employee) (int64, error)
	// FindAll returns every employee ordered by ascending id.
	FindAll(ctx context.Context) ([]*models.Employee, error)
	// FindByID returns db.ErrNotFound when no row matches.
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	// Update overwrites every mutable column of the row with e.ID. Zero
	// affected rows means no such id.
	Update(ctx context.Context, e *models.Employee) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// ExistsByEmail reports whether another row uses email. excludeID of 0
	// excludes nothing.
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

type employeeRepo struct {
	q db.Querier
}

// NewEmployeeRepo returns an EmployeeRepository backed by q, which may be a
// *db.DB or a *db.Tx.
func NewEmployeeRepo(q db.Querier) EmployeeRepository {
	return &employeeRepo{q: q}
}

const (
	employeeColumns = `id, name, email, salary, age, worked_hours, created_at, updated_at`

	sqlInsertEmployee = `
		INSERT INTO employees (name, email, salary, age, worked_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	sqlFindAllEmployees = `
		SELECT ` + employeeColumns + `
		FROM   employees
		ORDER  BY id`

	sqlFindEmployeeByID = `
		SELECT ` + employeeColumns + `
		FROM   employees
		WHERE  id = ?`

	sqlUpdateEmployee = `
		UPDATE employees
		SET    name = ?, email = ?, salary = ?, age = ?, worked_hours = ?, updated_at = ?
		WHERE  id = ?`

	sqlDeleteEmployee = `
		DELETE FROM employees WHERE id = ?`

	sqlCountEmployeesByEmail = `
		SELECT COUNT(*)
		FROM   employees
		WHERE  email = ? AND id <> ?`
)

func (r *employeeRepo) Create(ctx context.Context, e *models.Employee) (int64, error) {
	now := time.Now().UTC()
	args := []any{e.Name, e.Email, e.NetSalary, e.Age, e.WorkedHours, now, now}

	if r.q.Dialect().Returning {
		var id int64
		if err := r.q.QueryRow(ctx, sqlInsertEmployee+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("repo/employee: create: %w", err)
		}
		e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
		return 1, nil
	}

	res, err := r.q.Exec(ctx, sqlInsertEmployee, args...)
	if err != nil {
		return 0, fmt.Errorf("repo/employee: create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("repo/employee: last insert id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repo/employee: rows affected: %w", err)
	}
	e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
	return n, nil
}

func (r *employeeRepo) FindAll(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.q.Query(ctx, sqlFindAllEmployees)
	if err != nil {
		return nil, fmt.Errorf("repo/employee: find all: %w", err)
	}
	defer rows.Close()

	employees := make([]*models.Employee, 0)
	for rows.Next() {
		e := &models.Employee{}
		if err := rows.Scan(scanTargets(e)...); err != nil {
			return nil, fmt.Errorf("repo/employee: scan: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo/employee: rows: %w", err)
	}
	return employees, nil
}

func (r *employeeRepo) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	e := &models.Employee{}
	if err := r.q.QueryRow(ctx, sqlFindEmployeeByID, id).Scan(scanTargets(e)...); err != nil {
		return nil, fmt.Errorf("repo/employee: find %d: %w", id, err)
	}
	return e, nil
}

func (r *employeeRepo) Update(ctx context.Context, e *models.Employee) (int64, error) {
	now := time.Now().UTC()
	res, err := r.q.Exec(ctx, sqlUpdateEmployee,
		e.Name, e.Email, e.NetSalary, e.Age, e.WorkedHours, now, e.ID)
	if err != nil {
		return 0, fmt.Errorf("repo/employee: update %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repo/employee: rows affected: %w", err)
	}
	if n > 0 {
		e.UpdatedAt = now
	}
	return n, nil
}

func (r *employeeRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.q.Exec(ctx, sqlDeleteEmployee, id)
	if err != nil {
		return 0, fmt.Errorf("repo/employee: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repo/employee: rows affected: %w", err)
	}
	return n, nil
}

func (r *employeeRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountEmployeesByEmail, email, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("repo/employee: exists by email: %w", err)
	}
	return n > 0, nil
}

// scanTargets lists the destinations for employeeColumns in order, so the
// column mapping lives in one place.
func scanTargets(e *models.Employee) []any {
	return []any{&e.ID, &e.Name, &e.Email, &e.NetSalary, &e.Age, &e.WorkedHours, &e.CreatedAt, &e.UpdatedAt}
}

var _ EmployeeRepository = (*employeeRepo)(nil)
