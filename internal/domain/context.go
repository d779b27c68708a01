package domain

import (
	"fmt"
	"time"
)

// ChatContext describes the inbound message being handled: who sent it, where,
// and the raw text.
type ChatContext struct {
	UserID    string
	ChannelID string
	ThreadTS  string
	Message   string
	Timestamp time.Time
}

func NewChatContext(userID, channelID, threadTS, message string) *ChatContext {
	return &ChatContext{
		UserID:    userID,
		ChannelID: channelID,
		ThreadTS:  threadTS,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ConversationContext is the short-lived memory of the last resolved query for
// a (user, channel) pair. It is consulted only when the current message is too
// deictic to stand alone ("next", "show all", "their pipeline").
type ConversationContext struct {
	LastIntent  IntentType     `json:"lastIntent"`
	LastFilters map[string]any `json:"lastFilters"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ContextKey builds the store key for a user/channel pair.
func ContextKey(userID, channelID string) string {
	return fmt.Sprintf("%s:%s", userID, channelID)
}

// Validate reports whether the context is structurally sound. A nil context is
// always valid input to the resolver; a non-nil one must carry a real
// timestamp and a non-empty last intent.
func (c *ConversationContext) Validate() error {
	if c == nil {
		return nil
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("conversation context has zero timestamp")
	}
	if c.LastIntent == "" {
		return fmt.Errorf("conversation context has empty last intent")
	}
	return nil
}

// Age returns how long ago the context was recorded.
func (c *ConversationContext) Age() time.Duration {
	if c == nil {
		return 0
	}
	return time.Since(c.Timestamp)
}
