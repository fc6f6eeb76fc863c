package models

import (
	"fmt"
	"time"
)

// Employee represents a row in the "employees" table.
//
// NetSalary is the computed pay after attendance, overtime and the SIO
// deduction. The base salary a caller declares never reaches this struct;
// it only lives on the params types below.
type Employee struct {
	ID          int64
	Name        string
	Email       string
	NetSalary   float64
	Age         int
	WorkedHours float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Employee) String() string {
	return fmt.Sprintf(
		"Employee{id=%d, name='%s', email='%s', salary=%.2f, age=%d, workedHours=%.2f}",
		e.ID, e.Name, e.Email, e.NetSalary, e.Age, e.WorkedHours,
	)
}

// CreateEmployeeParams holds the raw input for a new employee.
type CreateEmployeeParams struct {
	Name        string
	Email       string
	BaseSalary  float64
	Age         int
	WorkedHours float64
}

// UpdateEmployeeParams replaces every mutable field of an existing
// employee. There is no partial update: the whole record is re-validated
// and the salary recomputed from BaseSalary.
type UpdateEmployeeParams struct {
	ID          int64
	Name        string
	Email       string
	BaseSalary  float64
	Age         int
	WorkedHours float64
}

// Create returns the create params carrying the same fields.
func (p UpdateEmployeeParams) Create() CreateEmployeeParams {
	return CreateEmployeeParams{
		Name:        p.Name,
		Email:       p.Email,
		BaseSalary:  p.BaseSalary,
		Age:         p.Age,
		WorkedHours: p.WorkedHours,
	}
}
