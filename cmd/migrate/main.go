package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/Skryldev/employee-payroll/config"
	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/logger"
	"github.com/Skryldev/employee-payroll/migrations"
)

func main() {
	envFile := flag.String("env-file", "", "dotenv file to load (default .env)")
	verbose := flag.Bool("v", false, "verbose migrate output")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.LoadFiles(files...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Console: true, Out: os.Stderr}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Close()
	l := logger.Global()

	d, err := db.OpenWithDriver(cfg.DB.Driver, cfg.DB.DriverOptions(), db.Config{MaxOpenConns: 1})
	if err != nil {
		fatalf(l, "open %s: %v", cfg.DB.Driver, err)
	}

	// MIGRATIONS_PATH switches from the embedded files to a directory.
	var m *migrate.Migrate
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		m, err = migrations.NewFromURL(d, "file://"+path)
	} else {
		m, err = migrations.New(d)
	}
	if err != nil {
		fatalf(l, "migration init failed: %v", err)
	}
	defer m.Close()
	m.Log = migrations.NewLogger(l, *verbose)

	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf(l, "up failed: %v", err)
		}
		l.Info().Msg("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf(l, "down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf(l, "down failed: %v", err)
		}
		l.Info().Int("steps", steps).Msg("migrations: down completed")

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatalf(l, "version failed: %v", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fatalf(l, "force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf(l, "force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			fatalf(l, "force failed: %v", err)
		}
		l.Info().Int("version", v).Msg("migrations: forced")

	case "drop":
		fmt.Fprintln(os.Stderr, "WARNING: drop removes the employees table and all data. Type 'yes' to confirm:")
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			fmt.Println("aborted")
			return
		}
		if err := m.Drop(); err != nil {
			fatalf(l, "drop failed: %v", err)
		}
		l.Info().Msg("migrations: all tables dropped")

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-env-file FILE] [-v] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)
  drop         Drop all tables (dev only)

Environment:
  DB_DRIVER, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE
                    Connection settings, as for ems.
  MIGRATIONS_PATH   Read migrations from this directory instead of the
                    embedded ones.`)
}

func fatalf(l zerolog.Logger, format string, args ...any) {
	l.Error().Msgf(format, args...)
	os.Exit(1)
}
