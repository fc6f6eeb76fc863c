// Package cli is the ems command line: one-shot commands, the interactive
// menu and the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skryldev/employee-payroll/api"
)

type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Service, when set, is used as is and no configuration, database or
	// logging is initialised.
	Service api.EmployeeService
}

type app struct {
	opts     Options
	envFile  string
	logLevel string

	rt  *runtime
	svc api.EmployeeService
}

// NewRootCmd builds the ems command tree.
func NewRootCmd(opts Options) *cobra.Command {
	return (&app{opts: opts}).command()
}

// Execute runs ems with the process arguments and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := a.command().ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		return 1
	}
	return 0
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:               "ems",
		Short:             "Employee records and payroll",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	if a.opts.In != nil {
		root.SetIn(a.opts.In)
	}
	if a.opts.Out != nil {
		root.SetOut(a.opts.Out)
	}
	if a.opts.Err != nil {
		root.SetErr(a.opts.Err)
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.getCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.payslipCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.menuCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.opts.Service != nil {
		a.svc = a.opts.Service
		return nil
	}
	rt, err := bootstrap(cmd.Context(), bootstrapOptions{envFile: a.envFile, logLevel: a.logLevel})
	if err != nil {
		return err
	}
	a.rt, a.svc = rt, rt.svc
	return nil
}

func (a *app) close() error {
	if a.rt == nil {
		return nil
	}
	return a.rt.Close()
}
