package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"time"

	"stayvista/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName  = "postgres"
	pingTimeout = 5 * time.Second
)

// Connection holds the read replica and the primary. Reads may lag writes.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	retries     int
	wait        time.Duration
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres
	opts := pool{
		maxOpen:     pg.MaxOpenConns,
		maxIdle:     pg.MaxIdleConns,
		maxLifetime: time.Duration(pg.ConnMaxLifeMin) * time.Minute,
		retries:     max(1, pg.MaxRetry),
		wait:        time.Duration(pg.RetryWaitTime) * time.Second,
	}

	write := mustConnect("write", pg.Write, pg.Prefix, opts)

	// a replica configured identically to the primary shares its pool
	if pg.Read == pg.Write {
		return &Connection{Read: write, Write: write}
	}

	return &Connection{
		Read:  mustConnect("read", pg.Read, pg.Prefix, opts),
		Write: write,
	}
}

func mustConnect(role string, node config.PostgresNode, prefix string, opts pool) *sqlx.DB {
	logger := log.With().Str("role", role).Str("host", node.Host).Str("port", node.Port).Str("db", prefix+node.Name).Logger()

	for attempt := 1; attempt <= opts.retries; attempt++ {
		db, err := connect(node.URL(prefix, nil), opts)
		if err == nil {
			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Int("max_attempts", opts.retries).Msg("Failed connecting to database")

		if attempt < opts.retries {
			time.Sleep(opts.wait)
		}
	}

	logger.Fatal().Msg("Giving up connecting to database")

	return nil
}

func connect(dsn string, opts pool) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(opts.maxOpen)
	db.SetMaxIdleConns(opts.maxIdle)
	db.SetConnMaxLifetime(opts.maxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}
