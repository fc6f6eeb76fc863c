// Package migrations embeds the schema of every supported dialect and runs
// it through golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mmysql "github.com/golang-migrate/migrate/v4/database/mysql"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/Skryldev/employee-payroll/db"
)

//go:embed sqlite3/*.sql postgres/*.sql mysql/*.sql
var files embed.FS

// Source returns the embedded migrations for a database/sql driver name.
func Source(driverName string) (source.Driver, error) {
	switch driverName {
	case "sqlite3", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("migrations: no migrations for driver %q", driverName)
	}
	return iofs.New(files, driverName)
}

// New builds a Migrate over the embedded source and the already open
// handle d.
//
// Closing the returned Migrate closes d as well. Callers that keep using d
// afterwards should simply drop the Migrate.
func New(d *db.DB) (*migrate.Migrate, error) {
	src, err := Source(d.DriverName())
	if err != nil {
		return nil, err
	}
	drv, err := databaseDriver(d)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithInstance("iofs", src, d.DriverName(), drv)
	if err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	return m, nil
}

// NewFromURL is New with migrations read from sourceURL, e.g.
// "file://./migrations/postgres". The source driver must be registered by
// the caller's imports.
func NewFromURL(d *db.DB, sourceURL string) (*migrate.Migrate, error) {
	drv, err := databaseDriver(d)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, d.DriverName(), drv)
	if err != nil {
		return nil, fmt.Errorf("migrations: init %s: %w", sourceURL, err)
	}
	return m, nil
}

func databaseDriver(d *db.DB) (database.Driver, error) {
	var (
		drv database.Driver
		err error
	)
	switch d.DriverName() {
	case "sqlite3":
		drv, err = msqlite.WithInstance(d.Raw(), &msqlite.Config{})
	case "postgres":
		drv, err = mpostgres.WithInstance(d.Raw(), &mpostgres.Config{})
	case "mysql":
		drv, err = mmysql.WithInstance(d.Raw(), &mmysql.Config{})
	default:
		return nil, fmt.Errorf("migrations: unsupported driver %q", d.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: %s driver: %w", d.DriverName(), err)
	}
	return drv, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(d *db.DB, l zerolog.Logger) error {
	m, err := New(d)
	if err != nil {
		return err
	}
	m.Log = NewLogger(l, false)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Logger adapts zerolog to migrate.Logger.
type Logger struct {
	l       zerolog.Logger
	verbose bool
}

func NewLogger(l zerolog.Logger, verbose bool) *Logger {
	return &Logger{l: l.With().Str("component", "migrate").Logger(), verbose: verbose}
}

func (g *Logger) Printf(format string, v ...any) {
	g.l.Info().Msgf(format, v...)
}

func (g *Logger) Verbose() bool { return g.verbose }

var _ migrate.Logger = (*Logger)(nil)
