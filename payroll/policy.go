// Package payroll holds the employee validation rules and the salary
// computation pipeline. Everything here is pure: no I/O, no logging, no
// shared mutable state.
package payroll

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Policy carries the thresholds and rates the rules and the pipeline use.
// DefaultPolicy holds the company rules; a YAML file may override any
// subset of them.
type Policy struct {
	// RequiredHours is the weekly attendance requirement.
	RequiredHours float64 `yaml:"required_hours"`
	// OvertimeMultiplier applies to the hourly rate beyond RequiredHours.
	OvertimeMultiplier float64 `yaml:"overtime_multiplier"`
	// SIORate is the statutory deduction withheld from gross pay.
	SIORate float64 `yaml:"sio_rate"`

	MinNameLength int     `yaml:"min_name_length"`
	MinAge        int     `yaml:"min_age"`
	MaxAge        int     `yaml:"max_age"`
	MinBaseSalary float64 `yaml:"min_base_salary"`
	MaxBaseSalary float64 `yaml:"max_base_salary"`
}

// DefaultPolicy returns the standard payroll rules.
func DefaultPolicy() Policy {
	return Policy{
		RequiredHours:      40,
		OvertimeMultiplier: 1.5,
		SIORate:            0.08,
		MinNameLength:      3,
		MinAge:             22,
		MaxAge:             60,
		MinBaseSalary:      300,
		MaxBaseSalary:      1000,
	}
}

// Check rejects policies the pipeline cannot run with.
func (p Policy) Check() error {
	switch {
	case p.RequiredHours <= 0:
		return fmt.Errorf("payroll: required_hours must be > 0, got %v", p.RequiredHours)
	case p.OvertimeMultiplier < 0:
		return fmt.Errorf("payroll: overtime_multiplier must be >= 0, got %v", p.OvertimeMultiplier)
	case p.SIORate < 0 || p.SIORate >= 1:
		return fmt.Errorf("payroll: sio_rate must be in [0, 1), got %v", p.SIORate)
	case p.MinNameLength < 1:
		return fmt.Errorf("payroll: min_name_length must be >= 1, got %d", p.MinNameLength)
	case p.MinAge > p.MaxAge:
		return fmt.Errorf("payroll: min_age %d exceeds max_age %d", p.MinAge, p.MaxAge)
	case p.MinBaseSalary > p.MaxBaseSalary:
		return fmt.Errorf("payroll: min_base_salary %v exceeds max_base_salary %v", p.MinBaseSalary, p.MaxBaseSalary)
	}
	return nil
}

// ParsePolicy overlays YAML on top of DefaultPolicy. Unknown keys are an
// error so a typo cannot silently fall back to a default.
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return Policy{}, fmt.Errorf("payroll: parse policy: %w", err)
	}
	if err := p.Check(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicy reads a YAML policy file. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("payroll: read policy: %w", err)
	}
	return ParsePolicy(data)
}
