package repo

import (
	"context"

	"github.com/Skryldev/employee-payroll/db"
)

// TxRunner runs fn against a repository whose writes commit or roll back
// together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(EmployeeRepository) error) error
}

type sqlTxRunner struct {
	d *db.DB
}

// NewTxRunner binds a fresh employee repository to each db.ExecTx call.
func NewTxRunner(d *db.DB) TxRunner {
	return &sqlTxRunner{d: d}
}

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(EmployeeRepository) error) error {
	return r.d.ExecTx(ctx, func(tx *db.Tx) error {
		return fn(NewEmployeeRepo(tx))
	})
}
