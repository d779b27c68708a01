package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// PostgresService owns the connection pool for the locally synced account
// index. The bot only reads from it; the CRM sync job is the sole writer.
type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func NewPostgresService(cfg PostgresConfig, logger *zap.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", dsn(cfg))
	if err != nil {
		return nil, errors.NewServiceError("failed to open account index database", "postgres", "open", err)
	}

	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseConfig.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewServiceError("account index database unreachable", "postgres", "ping", err)
	}

	logger.Info("Account index database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &PostgresService{
		db:     db,
		logger: logger,
	}, nil
}

// dsn builds a keyword/value connection string for lib/pq. Values are quoted
// so passwords with spaces or quotes survive.
func dsn(cfg PostgresConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	pairs := []string{
		"host=" + quoteDSNValue(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quoteDSNValue(cfg.User),
		"dbname=" + quoteDSNValue(cfg.Database),
		"sslmode=" + quoteDSNValue(sslMode),
	}
	if cfg.Password != "" {
		pairs = append(pairs, "password="+quoteDSNValue(cfg.Password))
	}
	return strings.Join(pairs, " ")
}

func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// DB exposes the pool to repositories in this package.
func (ps *PostgresService) DB() *sql.DB {
	return ps.db
}

func (ps *PostgresService) Close() error {
	if ps.db == nil {
		return nil
	}
	if err := ps.db.Close(); err != nil {
		ps.logger.Error("Failed to close account index database", zap.Error(err))
		return err
	}
	ps.logger.Info("Account index database disconnected")
	return nil
}
