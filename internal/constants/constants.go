package constants

import "time"

var CacheTTL = struct {
	AccountMatch        time.Duration
	AccountIndex        time.Duration
	ConversationContext time.Duration
}{
	AccountMatch:        5 * time.Minute,  // fuzzy match results
	AccountIndex:        30 * time.Minute, // CRM account index mirror
	ConversationContext: 15 * time.Minute, // per user/channel follow-up window
}

var MatchCacheConfig = struct {
	Capacity int
}{
	Capacity: 100,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
	ConnectTimeout:  5 * time.Second,
}

var InputLimits = struct {
	MaxQueryLength int
}{
	MaxQueryLength: 500,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
}

var PaginationConfig = struct {
	ItemsPerPage int
	MaxShowAll   int
}{
	ItemsPerPage: 10,
	MaxShowAll:   200,
}

var BatchConfig = struct {
	Concurrency int
}{
	Concurrency: 8, // parallel CRM updates per batch command
}

var CRMConfig = struct {
	APIVersion     string
	RequestTimeout time.Duration
	// SessionLifetime bounds token reuse when the token endpoint omits
	// expires_in, as Salesforce does for password-grant sessions.
	SessionLifetime time.Duration
}{
	APIVersion:      "v59.0",
	RequestTimeout:  10 * time.Second,
	SessionLifetime: 50 * time.Minute,
}
