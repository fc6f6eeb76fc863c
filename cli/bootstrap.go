package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skryldev/employee-payroll/config"
	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/logger"
	"github.com/Skryldev/employee-payroll/migrations"
	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/repo"
	"github.com/Skryldev/employee-payroll/service"
)

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg *config.Config
	db  *db.DB
	svc *service.EmployeeService
	log zerolog.Logger
}

func (r *runtime) Close() error {
	var err error
	if r.db != nil {
		err = r.db.Close()
	}
	if cerr := logger.Close(); err == nil {
		err = cerr
	}
	return err
}

type bootstrapOptions struct {
	envFile  string
	logLevel string
}

// bootstrap loads config, sets up logging, connects with retries, applies
// migrations and builds the employee service.
func bootstrap(ctx context.Context, opts bootstrapOptions) (*runtime, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	if err := logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFilePath,
		Console:  true,
		Out:      os.Stderr,
	}); err != nil {
		return nil, err
	}
	l := logger.Global()

	policy, err := payroll.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	dbCfg := cfg.DB.PoolConfig()
	dbCfg.Hooks = []db.Hook{db.NewLogHook(db.LogHookConfig{
		Logger:             l,
		SlowQueryThreshold: cfg.DB.SlowQuery,
		LogArgs:            cfg.DB.LogArgs,
	})}

	var d *db.DB
	retry := db.RetryConfig{MaxAttempts: cfg.DB.ConnectRetries, Delay: time.Second}
	err = db.WithRetry(ctx, retry, func() error {
		var openErr error
		d, openErr = db.OpenWithDriver(cfg.DB.Driver, cfg.DB.DriverOptions(), dbCfg)
		if openErr != nil {
			l.Warn().Err(openErr).Str("driver", cfg.DB.Driver).Msg("database connect failed")
		}
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DB.Driver, err)
	}

	if err := migrations.Up(d, l); err != nil {
		_ = d.Close()
		return nil, err
	}

	stats := d.Stats()
	l.Debug().
		Str("driver", d.DriverName()).
		Int("max_open", stats.MaxOpenConnections).
		Int("open", stats.OpenConnections).
		Msg("database ready")

	svc := service.NewEmployeeService(
		repo.NewEmployeeRepo(d),
		service.WithPolicy(policy),
		service.WithTxRunner(repo.NewTxRunner(d)),
	)
	return &runtime{cfg: cfg, db: d, svc: svc, log: l}, nil
}
