package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skryldev/employee-payroll/api"
	"github.com/Skryldev/employee-payroll/models"
)

const menuText = `---------------------------
1) Add Employee
2) View All
3) Update Employee
4) Delete Employee
5) Exit
`

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive console menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := &menu{
				svc: a.svc,
				in:  bufio.NewScanner(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			return m.run(cmd.Context())
		},
	}
}

type menu struct {
	svc api.EmployeeService
	in  *bufio.Scanner
	out io.Writer
}

// run loops until the user exits or input ends. Operation failures are
// printed and the loop continues.
func (m *menu) run(ctx context.Context) error {
	fmt.Fprintln(m.out, "=== Employee Management ===")
	for {
		fmt.Fprintln(m.out, menuText)
		choice, err := m.readInt("Choose: ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case 1:
			err = m.add(ctx)
		case 2:
			err = m.list(ctx)
		case 3:
			err = m.update(ctx)
		case 4:
			err = m.delete(ctx)
		case 5:
			fmt.Fprintln(m.out, "Bye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(m.out, describeError(err))
		}
	}
}

func (m *menu) add(ctx context.Context) error {
	p, err := m.readParams("")
	if err != nil {
		return err
	}
	e, err := m.svc.Create(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Created:", e)
	return nil
}

func (m *menu) list(ctx context.Context) error {
	all, err := m.svc.List(ctx)
	if err != nil {
		return err
	}
	printEmployees(m.out, all)
	return nil
}

func (m *menu) update(ctx context.Context) error {
	id, err := m.readInt("ID to update: ")
	if err != nil {
		return err
	}
	p, err := m.readParams("New ")
	if err != nil {
		return err
	}
	e, err := m.svc.Update(ctx, models.UpdateEmployeeParams{
		ID: int64(id), Name: p.Name, Email: p.Email, BaseSalary: p.BaseSalary, Age: p.Age, WorkedHours: p.WorkedHours,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Updated:", e)
	return nil
}

func (m *menu) delete(ctx context.Context) error {
	id, err := m.readInt("ID to delete: ")
	if err != nil {
		return err
	}
	ok, err := m.svc.Delete(ctx, int64(id))
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, deletedMessage(ok))
	return nil
}

// readParams prompts for every employee field. prefix is "" or "New ".
func (m *menu) readParams(prefix string) (models.CreateEmployeeParams, error) {
	var p models.CreateEmployeeParams
	var err error
	if p.Name, err = m.readLine(prefix + "name: "); err != nil {
		return p, err
	}
	if p.Email, err = m.readLine(prefix + "email: "); err != nil {
		return p, err
	}
	if p.BaseSalary, err = m.readFloat(prefix + "base salary: "); err != nil {
		return p, err
	}
	if p.Age, err = m.readInt(prefix + "age: "); err != nil {
		return p, err
	}
	if p.WorkedHours, err = m.readFloat(prefix + "worked hours: "); err != nil {
		return p, err
	}
	return p, nil
}

func (m *menu) readLine(label string) (string, error) {
	fmt.Fprint(m.out, capitalize(label))
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *menu) readInt(label string) (int, error) {
	for {
		s, err := m.readLine(label)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		fmt.Fprintln(m.out, "Enter an integer.")
	}
}

func (m *menu) readFloat(label string) (float64, error) {
	for {
		s, err := m.readLine(label)
		if err != nil {
			return 0, err
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		fmt.Fprintln(m.out, "Enter a number.")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func printEmployees(w io.Writer, all []*models.Employee) {
	if len(all) == 0 {
		fmt.Fprintln(w, "No employees.")
		return
	}
	for _, e := range all {
		fmt.Fprintln(w, e)
	}
}

func deletedMessage(ok bool) string {
	if ok {
		return "Deleted."
	}
	return "Not found."
}
