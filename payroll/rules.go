package payroll

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z ]+$`)

// Input is what the employee rules look at.
type Input struct {
	Name       string
	Age        int
	BaseSalary float64
}

// Rule is one named predicate. Check returns nil on pass and a *RuleError
// on failure.
type Rule struct {
	Field string
	Check func(Input) error
}

// Rules lists the employee checks in evaluation order: name, age, salary.
// Worked hours are checked by the pipeline and email by the service.
func (p Policy) Rules() []Rule {
	return []Rule{
		{Field: "name", Check: func(in Input) error { return p.ValidateName(in.Name) }},
		{Field: "age", Check: func(in Input) error { return p.ValidateAge(in.Age) }},
		{Field: "salary", Check: func(in Input) error { return p.ValidateSalary(in.BaseSalary) }},
	}
}

// ValidateEmployee runs Rules in order and returns the first failure.
func (p Policy) ValidateEmployee(in Input) error {
	for _, r := range p.Rules() {
		if err := r.Check(in); err != nil {
			return err
		}
	}
	return nil
}

func (p Policy) ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail(ErrInvalidName, "name is required")
	}
	if utf8.RuneCountInString(trimmed) < p.MinNameLength {
		return fail(ErrInvalidName, "name must be at least %d characters", p.MinNameLength)
	}
	if !namePattern.MatchString(trimmed) {
		return fail(ErrInvalidName, "name may contain only letters and spaces")
	}
	return nil
}

func (p Policy) ValidateAge(age int) error {
	if age < p.MinAge || age > p.MaxAge {
		return fail(ErrInvalidAge, "age must be between %d and %d, got %d", p.MinAge, p.MaxAge, age)
	}
	return nil
}

// ValidateSalary bounds the declared base salary, not the computed net.
func (p Policy) ValidateSalary(base float64) error {
	if math.IsNaN(base) || base < p.MinBaseSalary || base > p.MaxBaseSalary {
		return fail(ErrInvalidSalary, "base salary must be between %.2f and %.2f, got %.2f",
			p.MinBaseSalary, p.MaxBaseSalary, base)
	}
	return nil
}

var defaultPolicy = DefaultPolicy()

// ValidateEmployee checks in against DefaultPolicy.
func ValidateEmployee(in Input) error { return defaultPolicy.ValidateEmployee(in) }

func ValidateName(name string) error    { return defaultPolicy.ValidateName(name) }
func ValidateAge(age int) error         { return defaultPolicy.ValidateAge(age) }
func ValidateSalary(base float64) error { return defaultPolicy.ValidateSalary(base) }
