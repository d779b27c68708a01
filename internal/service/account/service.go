package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/cache"
	"github.com/atlasops/salesops-bot-go/internal/util"
	"go.uber.org/zap"
)

// IndexSource loads the full account index. Production wires the Postgres
// repository; tests substitute a fake.
type IndexSource interface {
	LoadAll(ctx context.Context) ([]*domain.AccountRecord, error)
}

// AccountService serves the CRM account index from memory and mirrors it into
// Redis for sibling instances. It implements domain.AccountProvider for the
// fuzzy matcher.
type AccountService struct {
	source IndexSource
	cache  *cache.CacheService
	logger *zap.Logger

	mu       sync.RWMutex
	accounts []*domain.AccountRecord
	byName   map[string]*domain.AccountRecord
}

func NewAccountService(ctx context.Context, source IndexSource, cacheSvc *cache.CacheService, logger *zap.Logger) (*AccountService, error) {
	svc := &AccountService{
		source: source,
		cache:  cacheSvc,
		logger: logger,
	}

	if err := svc.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load account index: %w", err)
	}

	return svc, nil
}

// Refresh reloads the snapshot from the index source and rewrites the Redis
// mirror. When the source is down the mirror a sibling instance wrote becomes
// the fallback: names and ids survive, owner and stage do not.
func (s *AccountService) Refresh(ctx context.Context) error {
	accounts, err := s.source.LoadAll(ctx)
	if err != nil {
		restored, restoreErr := s.restoreFromMirror(ctx)
		if restoreErr != nil || len(restored) == 0 {
			return err
		}
		s.logger.Warn("Account index source unavailable, serving the Redis mirror",
			zap.Int("accounts", len(restored)),
			zap.Error(err),
		)
		s.install(restored)
		return nil
	}

	s.install(accounts)

	if s.cache != nil {
		mirror := make(map[string]string, len(accounts))
		for _, record := range accounts {
			mirror[record.Name] = record.ID
		}
		if err := s.cache.InitializeAccountIndex(ctx, mirror); err != nil {
			// The in-memory snapshot is authoritative; a stale mirror only
			// degrades sibling instances.
			s.logger.Warn("Failed to refresh account index mirror", zap.Error(err))
		}
	}

	return nil
}

func (s *AccountService) install(accounts []*domain.AccountRecord) {
	byName := make(map[string]*domain.AccountRecord, len(accounts))
	for _, record := range accounts {
		byName[util.Normalize(record.Name)] = record
		for _, alias := range record.Aliases {
			byName[util.Normalize(alias)] = record
		}
	}

	s.mu.Lock()
	s.accounts = accounts
	s.byName = byName
	s.mu.Unlock()
}

func (s *AccountService) restoreFromMirror(ctx context.Context) ([]*domain.AccountRecord, error) {
	if s.cache == nil {
		return nil, nil
	}
	index, err := s.cache.GetAccountIndex(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]*domain.AccountRecord, 0, len(index))
	for name, id := range index {
		accounts = append(accounts, &domain.AccountRecord{ID: id, Name: name})
	}
	return accounts, nil
}

func (s *AccountService) GetAllAccounts(_ context.Context) []*domain.AccountRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts
}

// FindAccountByName checks the local snapshot first and falls back to the
// shared mirror for accounts a sibling instance indexed after our last
// refresh.
func (s *AccountService) FindAccountByName(ctx context.Context, name string) *domain.AccountRecord {
	s.mu.RLock()
	record := s.byName[util.Normalize(name)]
	s.mu.RUnlock()
	if record != nil {
		return record
	}

	if s.cache == nil {
		return nil
	}
	id, err := s.cache.GetAccountID(ctx, name)
	if err != nil || id == "" {
		return nil
	}
	return &domain.AccountRecord{ID: id, Name: name}
}

// Count returns the number of accounts in the snapshot.
func (s *AccountService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
