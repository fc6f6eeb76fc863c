package db

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
)

// Driver captures what differs between databases when opening them:
// the database/sql name, how to build a DSN and which error codes mean what.
type Driver interface {
	// Name is the name the driver registered with database/sql.
	Name() string

	// DSN converts structured options into the driver's native DSN.
	DSN(opts DriverOptions) (string, error)

	// ErrorMapper returns a mapper tuned to the driver's error types.
	ErrorMapper() ErrorMapper
}

// DriverOptions carries connection parameters in a driver-agnostic form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	// Database is the database name, or the file path for sqlite3.
	Database string
	SSLMode  string
	// Extra holds driver-specific parameters.
	Extra map[string]string
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

// RegisterDriver adds or replaces a Driver in the registry.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("payroll/db: driver %q not registered", name)
	}
	return d, nil
}

// OpenWithDriver builds the DSN through a registered Driver, opens the
// database and installs the driver's error mapper.
func OpenWithDriver(driverName string, opts DriverOptions, cfg Config) (*DB, error) {
	drv, err := LookupDriver(driverName)
	if err != nil {
		return nil, err
	}

	dsn, err := drv.DSN(opts)
	if err != nil {
		return nil, fmt.Errorf("payroll/db: build DSN: %w", err)
	}
	cfg.DriverName = drv.Name()
	cfg.DSN = dsn

	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	d.SetErrorMapper(ChainMapper(drv.ErrorMapper(), DefaultErrorMapper()))
	return d, nil
}

// sortedExtra keeps DSN output stable regardless of map order.
func sortedExtra(extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver builds key/value DSNs for lib/pq.
type PostgresDriver struct{}

func (PostgresDriver) Name() string { return "postgres" }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + quotePQ(o.Host),
		"port=" + strconv.Itoa(port),
		"dbname=" + quotePQ(o.Database),
		"sslmode=" + quotePQ(sslMode),
	}
	if o.User != "" {
		parts = append(parts, "user="+quotePQ(o.User))
	}
	if o.Password != "" {
		parts = append(parts, "password="+quotePQ(o.Password))
	}
	for _, k := range sortedExtra(o.Extra) {
		parts = append(parts, k+"="+quotePQ(o.Extra[k]))
	}
	return strings.Join(parts, " "), nil
}

func (PostgresDriver) ErrorMapper() ErrorMapper { return driverMapper(mapPQError) }

// quotePQ quotes a value for a lib/pq key/value DSN when needed.
func quotePQ(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL (go-sql-driver/mysql)
// ─────────────────────────────────────────────────────────────────────────────

// MySQLDriver builds DSNs through mysql.Config so escaping is handled by
// the driver itself.
type MySQLDriver struct{}

func (MySQLDriver) Name() string { return "mysql" }

func (MySQLDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("mysql driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 3306
	}
	c := mysql.NewConfig()
	c.User = o.User
	c.Passwd = o.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(o.Host, strconv.Itoa(port))
	c.DBName = o.Database
	c.ParseTime = true
	if len(o.Extra) > 0 {
		c.Params = make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			c.Params[k] = v
		}
	}
	return c.FormatDSN(), nil
}

func (MySQLDriver) ErrorMapper() ErrorMapper { return driverMapper(mapMySQLError) }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver uses Database as the file path (":memory:" works too).
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	q := url.Values{}
	for _, k := range sortedExtra(o.Extra) {
		q.Set(k, o.Extra[k])
	}
	return o.Database + "?" + q.Encode(), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return driverMapper(mapSQLiteError) }

func init() {
	RegisterDriver(PostgresDriver{})
	RegisterDriver(MySQLDriver{})
	RegisterDriver(SQLiteDriver{})
}
