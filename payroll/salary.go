package payroll

import "math"

// Breakdown records every stage of one salary computation.
type Breakdown struct {
	BaseSalary      float64
	WorkedHours     float64
	AfterAttendance float64
	Overtime        float64
	Gross           float64
	SIODeduction    float64
	Net             float64
}

// AttendanceAdjusted pro-rates base when hours fall short of
// RequiredHours. Meeting or exceeding the requirement keeps base intact.
func (p Policy) AttendanceAdjusted(base, hours float64) (float64, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, fail(ErrInvalidWorkedHours, "worked hours must be a finite number")
	}
	if hours < 0 {
		return 0, fail(ErrInvalidWorkedHours, "worked hours must be >= 0, got %.2f", hours)
	}
	if hours < p.RequiredHours {
		return (hours / p.RequiredHours) * base, nil
	}
	return base, nil
}

// OvertimePay is computed from base and hours only, never from the
// attendance-adjusted amount.
func (p Policy) OvertimePay(base, hours float64) float64 {
	if hours <= p.RequiredHours {
		return 0
	}
	hourlyRate := base / p.RequiredHours
	return (hours - p.RequiredHours) * hourlyRate * p.OvertimeMultiplier
}

// Gross adds the overtime to the attendance-adjusted salary.
func Gross(afterAttendance, overtime float64) float64 {
	return afterAttendance + overtime
}

// ApplySIO withholds the statutory deduction from gross.
func (p Policy) ApplySIO(gross float64) float64 {
	return gross * (1 - p.SIORate)
}

// Compute runs the four stages in order and keeps the intermediate values.
func (p Policy) Compute(base, hours float64) (Breakdown, error) {
	after, err := p.AttendanceAdjusted(base, hours)
	if err != nil {
		return Breakdown{}, err
	}
	overtime := p.OvertimePay(base, hours)
	gross := Gross(after, overtime)
	net := p.ApplySIO(gross)
	return Breakdown{
		BaseSalary:      base,
		WorkedHours:     hours,
		AfterAttendance: after,
		Overtime:        overtime,
		Gross:           gross,
		SIODeduction:    gross - net,
		Net:             net,
	}, nil
}

// NetSalary is Compute reduced to the persisted figure.
func (p Policy) NetSalary(base, hours float64) (float64, error) {
	b, err := p.Compute(base, hours)
	if err != nil {
		return 0, err
	}
	return b.Net, nil
}

// NetSalary computes net pay under DefaultPolicy.
func NetSalary(base, hours float64) (float64, error) { return defaultPolicy.NetSalary(base, hours) }

func AttendanceAdjusted(base, hours float64) (float64, error) {
	return defaultPolicy.AttendanceAdjusted(base, hours)
}

func OvertimePay(base, hours float64) float64 { return defaultPolicy.OvertimePay(base, hours) }
func ApplySIO(gross float64) float64          { return defaultPolicy.ApplySIO(gross) }

// Compute runs the pipeline under DefaultPolicy.
func Compute(base, hours float64) (Breakdown, error) { return defaultPolicy.Compute(base, hours) }
