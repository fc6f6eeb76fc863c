package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/service"
	"github.com/Skryldev/employee-payroll/spreadsheet"
)

// describeError prefixes err with the console category: [Validation] for
// anything the caller can fix, [SQL] for storage failures.
func describeError(err error) string {
	var rowErr *spreadsheet.RowError
	switch {
	case payroll.IsRuleError(err),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrNotFound),
		errors.As(err, &rowErr):
		return "[Validation] " + err.Error()
	case errors.Is(err, service.ErrStorage):
		return "[SQL] " + err.Error()
	default:
		return "[Error] " + err.Error()
	}
}

func printBreakdown(w io.Writer, b payroll.Breakdown) {
	fmt.Fprintf(w, "Base salary:       %10.2f\n", b.BaseSalary)
	fmt.Fprintf(w, "Worked hours:      %10.2f\n", b.WorkedHours)
	fmt.Fprintf(w, "After attendance:  %10.2f\n", b.AfterAttendance)
	fmt.Fprintf(w, "Overtime:          %10.2f\n", b.Overtime)
	fmt.Fprintf(w, "Gross:             %10.2f\n", b.Gross)
	fmt.Fprintf(w, "SIO deduction:     %10.2f\n", b.SIODeduction)
	fmt.Fprintf(w, "Net salary:        %10.2f\n", b.Net)
}
