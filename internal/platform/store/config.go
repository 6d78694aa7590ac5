package store

import (
	"time"

	"rowkeeper/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	Driver  string

	PG     PGConfig
	SQLite SQLiteConfig
	CH     CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// SQLiteConfig configures the embedded backend
type SQLiteConfig struct {
	// Path is a file path or ":memory:"
	Path        string
	BusyTimeout time.Duration
	LogSQL      bool
	SlowQueryMs int
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	DSN     string
	Role    string
}

// ConfigFromEnv reads SERVICE_STORE_, SERVICE_PGSQL_, SERVICE_SQLITE_ and SERVICE_CH_ keys
func ConfigFromEnv(appName string) Config {
	svc := config.New().Prefix("SERVICE_")
	pg := svc.Prefix("PGSQL_")
	lite := svc.Prefix("SQLITE_")
	ch := svc.Prefix("CH_")

	cfg := Config{
		AppName: appName,
		Driver:  svc.Prefix("STORE_").MayEnum("DRIVER", DriverSQLite, DriverPostgres, DriverSQLite),
		SQLite: SQLiteConfig{
			Path:        lite.MayString("PATH", "rowkeeper.db"),
			BusyTimeout: lite.MayDuration("BUSY_TIMEOUT", 5*time.Second),
			LogSQL:      lite.MayBool("LOG_SQL", false),
			SlowQueryMs: lite.MayInt("SLOW_MS", 200),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			DSN:     ch.MayString("DSN", "clickhouse://localhost:9000/default"),
			Role:    appName,
		},
	}
	if cfg.Driver == DriverPostgres {
		cfg.PG = PGConfig{
			URL:            pg.MustString("DBURL"),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 10)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 200),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		}
	}
	return cfg
}
