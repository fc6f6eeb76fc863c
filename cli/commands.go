package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skryldev/employee-payroll/api"
	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/spreadsheet"
)

type employeeFlags struct {
	name   string
	email  string
	salary float64
	age    int
	hours  float64
}

func (f *employeeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name, letters and spaces only")
	cmd.Flags().StringVar(&f.email, "email", "", "unique email address")
	cmd.Flags().Float64Var(&f.salary, "salary", 0, "base salary before attendance, overtime and SIO")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&f.hours, "hours", 40, "hours worked this week")
	for _, name := range []string{"name", "email", "salary", "age"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *employeeFlags) create() models.CreateEmployeeParams {
	return models.CreateEmployeeParams{
		Name: f.name, Email: f.email, BaseSalary: f.salary, Age: f.age, WorkedHours: f.hours,
	}
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer, got %q", s)
	}
	return id, nil
}

func (a *app) addCmd() *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.svc.Create(cmd.Context(), f.create())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created:", e)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all employees by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := a.svc.List(cmd.Context())
			if err != nil {
				return err
			}
			printEmployees(cmd.OutOrStdout(), all)
			return nil
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			e, err := a.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace every field of an employee and recompute the salary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			c := f.create()
			e, err := a.svc.Update(cmd.Context(), models.UpdateEmployeeParams{
				ID: id, Name: c.Name, Email: c.Email, BaseSalary: c.BaseSalary, Age: c.Age, WorkedHours: c.WorkedHours,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated:", e)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ok, err := a.svc.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deletedMessage(ok))
			return nil
		},
	}
}

func (a *app) payslipCmd() *cobra.Command {
	var salary, hours float64
	cmd := &cobra.Command{
		Use:   "payslip",
		Short: "Show the salary computation without storing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.svc.Preview(salary, hours)
			if err != nil {
				return err
			}
			printBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().Float64Var(&salary, "salary", 0, "base salary")
	cmd.Flags().Float64Var(&hours, "hours", 40, "hours worked this week")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	var template bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all employees to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if template {
				err = spreadsheet.WriteImportTemplate(f)
			} else {
				all, lerr := a.svc.List(cmd.Context())
				if lerr != nil {
					return lerr
				}
				err = spreadsheet.WriteEmployees(f, all)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Written:", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "employees.xlsx", "output file")
	cmd.Flags().BoolVar(&template, "template", false, "write an empty import sheet instead")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create employees from an xlsx workbook, all or nothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := spreadsheet.ReadEmployees(f)
			if err != nil {
				return err
			}
			created, err := a.svc.Import(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d employees.\n", len(created))
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pinger api.Pinger
			l := zerolog.Nop()
			if a.rt != nil {
				pinger, l = a.rt.db, a.rt.log
				if addr == "" {
					addr = a.rt.cfg.HTTPAddr
				}
			}
			if addr == "" {
				addr = ":8080"
			}
			return api.NewServer(a.svc, pinger, l).Start(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}
