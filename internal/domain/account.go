package domain

import "context"

// AccountRecord is one entry from the CRM account index. The index itself is
// owned by the CRM; this core only ranks against it.
type AccountRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner,omitempty"`
	Stage   string   `json:"stage,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// AccountProvider supplies the candidate account list the fuzzy matcher ranks
// against. Implementations are expected to serve from memory or a warm cache;
// the matcher calls this on every unresolved lookup.
type AccountProvider interface {
	GetAllAccounts(ctx context.Context) []*AccountRecord
	FindAccountByName(ctx context.Context, name string) *AccountRecord
}
