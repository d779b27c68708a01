package matcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"go.uber.org/zap"
)

// MinAcceptScore is the fuzzy-ranking floor below which a candidate is not
// considered a match at all.
const MinAcceptScore = 0.62

type MatchCacheEntry struct {
	Account   *domain.AccountRecord
	Timestamp time.Time
}

// AccountMatcher resolves user-typed company names against the CRM account
// index. It performs no I/O itself; the provider supplies the candidate list.
type AccountMatcher struct {
	provider domain.AccountProvider
	logger   *zap.Logger

	cacheMu       sync.Mutex
	cache         map[string]*MatchCacheEntry
	cacheOrder    []string
	cacheCapacity int
	cacheTTL      time.Duration
}

func NewAccountMatcher(provider domain.AccountProvider, logger *zap.Logger) *AccountMatcher {
	return &AccountMatcher{
		provider:      provider,
		logger:        logger,
		cache:         make(map[string]*MatchCacheEntry),
		cacheOrder:    make([]string, 0, constants.MatchCacheConfig.Capacity),
		cacheCapacity: constants.MatchCacheConfig.Capacity,
		cacheTTL:      constants.CacheTTL.AccountMatch,
	}
}

// FindBestMatch resolves a raw company name to an account record, or nil when
// nothing clears the acceptance floor. Misses are cached too, so repeated
// lookups for the same bad name stay cheap.
func (m *AccountMatcher) FindBestMatch(ctx context.Context, query string) *domain.AccountRecord {
	queryNorm := NormalizeName(ExpandAlias(query))
	if queryNorm == "" {
		return nil
	}

	cacheKey := fmt.Sprintf("match:%s", queryNorm)
	if account, found := m.cacheLookup(cacheKey); found {
		return account
	}

	account := m.findBestMatchImpl(ctx, query, queryNorm)
	m.cacheResult(cacheKey, account)

	return account
}

func (m *AccountMatcher) findBestMatchImpl(ctx context.Context, query, queryNorm string) *domain.AccountRecord {
	// Strategy 1: exact name via the provider's own index
	if account := m.provider.FindAccountByName(ctx, query); account != nil {
		return account
	}
	if expanded := ExpandAlias(query); expanded != query {
		if account := m.provider.FindAccountByName(ctx, expanded); account != nil {
			return account
		}
	}

	accounts := m.provider.GetAllAccounts(ctx)

	// Strategy 2: exact normalized name or alias
	for _, account := range accounts {
		if NormalizeName(account.Name) == queryNorm {
			return account
		}
		for _, alias := range account.Aliases {
			if NormalizeName(alias) == queryNorm {
				return account
			}
		}
	}

	// Strategy 3: containment partial match
	for _, account := range accounts {
		nameNorm := NormalizeName(account.Name)
		if nameNorm == "" {
			continue
		}
		if strings.Contains(nameNorm, queryNorm) || strings.Contains(queryNorm, nameNorm) {
			return account
		}
	}

	// Strategy 4: fuzzy ranking over the full index
	var best *domain.AccountRecord
	bestScore := 0.0
	for _, account := range accounts {
		score := SimilarityScore(query, account.Name)
		for _, alias := range account.Aliases {
			if aliasScore := SimilarityScore(query, alias); aliasScore > score {
				score = aliasScore
			}
		}
		if score > bestScore {
			bestScore = score
			best = account
		}
	}

	if best == nil || bestScore < MinAcceptScore {
		m.logger.Debug("No account match",
			zap.String("query", query),
			zap.Float64("best_score", bestScore),
		)
		return nil
	}

	m.logger.Debug("Fuzzy account match",
		zap.String("query", query),
		zap.String("account", best.Name),
		zap.Float64("score", bestScore),
	)
	return best
}

func (m *AccountMatcher) cacheLookup(key string) (*domain.AccountRecord, bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	entry, found := m.cache[key]
	if !found {
		return nil, false
	}

	// Entries past the TTL are treated as absent even while still present.
	if time.Since(entry.Timestamp) >= m.cacheTTL {
		m.removeLocked(key)
		return nil, false
	}

	return entry.Account, true
}

// cacheResult inserts an entry, evicting the oldest-inserted one when the
// cache is full. Insertion order, not recency of use.
func (m *AccountMatcher) cacheResult(key string, account *domain.AccountRecord) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	if _, exists := m.cache[key]; exists {
		m.cache[key] = &MatchCacheEntry{Account: account, Timestamp: time.Now()}
		return
	}

	if len(m.cache) >= m.cacheCapacity && len(m.cacheOrder) > 0 {
		m.removeLocked(m.cacheOrder[0])
	}

	m.cache[key] = &MatchCacheEntry{Account: account, Timestamp: time.Now()}
	m.cacheOrder = append(m.cacheOrder, key)
}

func (m *AccountMatcher) removeLocked(key string) {
	delete(m.cache, key)
	for i, k := range m.cacheOrder {
		if k == key {
			m.cacheOrder = append(m.cacheOrder[:i], m.cacheOrder[i+1:]...)
			break
		}
	}
}

// CacheLen reports the current number of cached match results.
func (m *AccountMatcher) CacheLen() int {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	return len(m.cache)
}
