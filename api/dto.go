package api

import (
	"time"

	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/payroll"
)

type EmployeeRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	BaseSalary  float64 `json:"base_salary"`
	Age         int     `json:"age"`
	WorkedHours float64 `json:"worked_hours"`
}

func (r EmployeeRequest) createParams() models.CreateEmployeeParams {
	return models.CreateEmployeeParams{
		Name:        r.Name,
		Email:       r.Email,
		BaseSalary:  r.BaseSalary,
		Age:         r.Age,
		WorkedHours: r.WorkedHours,
	}
}

func (r EmployeeRequest) updateParams(id int64) models.UpdateEmployeeParams {
	return models.UpdateEmployeeParams{
		ID:          id,
		Name:        r.Name,
		Email:       r.Email,
		BaseSalary:  r.BaseSalary,
		Age:         r.Age,
		WorkedHours: r.WorkedHours,
	}
}

type EmployeeResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	NetSalary   float64   `json:"net_salary"`
	Age         int       `json:"age"`
	WorkedHours float64   `json:"worked_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEmployeeResponse(e *models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		NetSalary:   e.NetSalary,
		Age:         e.Age,
		WorkedHours: e.WorkedHours,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEmployeeResponses(es []*models.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, len(es))
	for i, e := range es {
		out[i] = toEmployeeResponse(e)
	}
	return out
}

type PreviewRequest struct {
	BaseSalary  float64 `json:"base_salary"`
	WorkedHours float64 `json:"worked_hours"`
}

type BreakdownResponse struct {
	BaseSalary      float64 `json:"base_salary"`
	WorkedHours     float64 `json:"worked_hours"`
	AfterAttendance float64 `json:"after_attendance"`
	Overtime        float64 `json:"overtime"`
	Gross           float64 `json:"gross"`
	SIODeduction    float64 `json:"sio_deduction"`
	Net             float64 `json:"net"`
}

func toBreakdownResponse(b payroll.Breakdown) BreakdownResponse {
	return BreakdownResponse(b)
}
