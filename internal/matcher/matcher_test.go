package matcher

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"go.uber.org/zap"
)

type fakeProvider struct {
	accounts    []*domain.AccountRecord
	byName      map[string]*domain.AccountRecord
	listCalls   int
	lookupCalls int
}

func newFakeProvider(accounts ...*domain.AccountRecord) *fakeProvider {
	byName := make(map[string]*domain.AccountRecord, len(accounts))
	for _, account := range accounts {
		byName[account.Name] = account
	}
	return &fakeProvider{accounts: accounts, byName: byName}
}

func (f *fakeProvider) GetAllAccounts(_ context.Context) []*domain.AccountRecord {
	f.listCalls++
	return f.accounts
}

func (f *fakeProvider) FindAccountByName(_ context.Context, name string) *domain.AccountRecord {
	f.lookupCalls++
	return f.byName[name]
}

func testAccounts() []*domain.AccountRecord {
	return []*domain.AccountRecord{
		{ID: "001", Name: "Boeing", Owner: "Sarah Chen"},
		{ID: "002", Name: "Toshiba Corporation", Owner: "Himanshu Patel"},
		{ID: "003", Name: "General Electric", Owner: "Marcus Webb"},
		{ID: "004", Name: "Eudia Testing Account", Owner: "Priya Nair"},
		{ID: "005", Name: "Ford Motor Company", Owner: "Tom Oduya", Aliases: []string{"Ford"}},
	}
}

func newTestMatcher(provider domain.AccountProvider) *AccountMatcher {
	return NewAccountMatcher(provider, zap.NewNop())
}

func TestFindBestMatchExact(t *testing.T) {
	m := newTestMatcher(newFakeProvider(testAccounts()...))

	account := m.FindBestMatch(context.Background(), "Boeing")
	if account == nil || account.ID != "001" {
		t.Fatalf("got %+v, want Boeing", account)
	}
}

func TestFindBestMatchNormalized(t *testing.T) {
	m := newTestMatcher(newFakeProvider(testAccounts()...))

	// Suffix and article variations resolve to the same record.
	for _, query := range []string{"toshiba", "Toshiba Corp", "the toshiba corporation"} {
		account := m.FindBestMatch(context.Background(), query)
		if account == nil || account.ID != "002" {
			t.Errorf("FindBestMatch(%q) = %+v, want Toshiba", query, account)
		}
	}
}

func TestFindBestMatchAlias(t *testing.T) {
	m := newTestMatcher(newFakeProvider(testAccounts()...))

	account := m.FindBestMatch(context.Background(), "GE")
	if account == nil || account.ID != "003" {
		t.Fatalf("FindBestMatch(GE) = %+v, want General Electric", account)
	}

	account = m.FindBestMatch(context.Background(), "Ford")
	if account == nil || account.ID != "005" {
		t.Fatalf("FindBestMatch(Ford) = %+v, want Ford Motor Company", account)
	}
}

func TestFindBestMatchFuzzy(t *testing.T) {
	m := newTestMatcher(newFakeProvider(testAccounts()...))

	account := m.FindBestMatch(context.Background(), "Boieng")
	if account == nil || account.ID != "001" {
		t.Fatalf("FindBestMatch(Boieng) = %+v, want Boeing", account)
	}
}

func TestFindBestMatchRejectsBelowFloor(t *testing.T) {
	m := newTestMatcher(newFakeProvider(testAccounts()...))

	if account := m.FindBestMatch(context.Background(), "Zyxwvut Industries"); account != nil {
		t.Errorf("nonsense query matched %+v", account)
	}
}

func TestFindBestMatchCachesMisses(t *testing.T) {
	provider := newFakeProvider(testAccounts()...)
	m := newTestMatcher(provider)

	m.FindBestMatch(context.Background(), "Zyxwvut Industries")
	listCalls := provider.listCalls

	m.FindBestMatch(context.Background(), "Zyxwvut Industries")
	if provider.listCalls != listCalls {
		t.Error("repeated miss hit the provider again instead of the cache")
	}
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	provider := newFakeProvider(testAccounts()...)
	m := newTestMatcher(provider)
	m.cacheCapacity = 3

	queries := []string{"query one", "query two", "query three", "query four"}
	for _, q := range queries {
		m.FindBestMatch(context.Background(), q)
	}

	if got := m.CacheLen(); got != 3 {
		t.Fatalf("cache holds %d entries, want 3", got)
	}

	// The first-inserted key is the one that went away.
	if _, found := m.cacheLookup("match:" + NormalizeName("query one")); found {
		t.Error("oldest entry survived eviction")
	}
	if _, found := m.cacheLookup("match:" + NormalizeName("query four")); !found {
		t.Error("newest entry was evicted")
	}
}

func TestCacheExpiryTreatedAsAbsent(t *testing.T) {
	provider := newFakeProvider(testAccounts()...)
	m := newTestMatcher(provider)
	m.cacheTTL = time.Millisecond

	m.FindBestMatch(context.Background(), "Boeing")
	time.Sleep(5 * time.Millisecond)

	if _, found := m.cacheLookup("match:boeing"); found {
		t.Error("expired entry still served")
	}
	if got := m.CacheLen(); got != 0 {
		t.Errorf("expired entry still counted, CacheLen = %d", got)
	}
}

func TestCacheCapacityBound(t *testing.T) {
	provider := newFakeProvider()
	m := newTestMatcher(provider)
	m.cacheCapacity = 10

	for i := 0; i < 50; i++ {
		m.FindBestMatch(context.Background(), fmt.Sprintf("company number %d", i))
	}

	if got := m.CacheLen(); got > 10 {
		t.Errorf("cache grew to %d entries, capacity is 10", got)
	}
}
