package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"go.uber.org/zap"
)

// AccountRepository reads the locally synced mirror of the CRM account index.
// The sync job that populates the table lives outside this service.
type AccountRepository struct {
	pg     *PostgresService
	logger *zap.Logger
}

func NewAccountRepository(pg *PostgresService, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{pg: pg, logger: logger}
}

func (r *AccountRepository) LoadAll(ctx context.Context) ([]*domain.AccountRecord, error) {
	rows, err := r.pg.DB().QueryContext(ctx, `
		SELECT sf_id, name, COALESCE(owner, ''), COALESCE(stage, ''), COALESCE(aliases, '')
		FROM accounts
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.AccountRecord
	for rows.Next() {
		var record domain.AccountRecord
		var aliases string
		if err := rows.Scan(&record.ID, &record.Name, &record.Owner, &record.Stage, &aliases); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		record.Aliases = splitAliases(aliases)
		accounts = append(accounts, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account row iteration failed: %w", err)
	}

	r.logger.Info("Accounts loaded from PostgreSQL", zap.Int("count", len(accounts)))
	return accounts, nil
}

func splitAliases(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	aliases := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}
	return aliases
}
