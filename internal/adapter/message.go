package adapter

import (
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/slack"
)

// MessageAdapter converts Slack message events into chat contexts for the
// resolution engine. It drops everything the bot should never react to: its
// own messages, other bots, edits and joins, and channels outside the
// allow-list.
type MessageAdapter struct {
	botUserID string
	channels  map[string]bool
}

// NewMessageAdapter creates a MessageAdapter. An empty channels list means
// every channel is accepted.
func NewMessageAdapter(botUserID string, channels []string) *MessageAdapter {
	allowed := make(map[string]bool, len(channels))
	for _, channel := range channels {
		channel = strings.TrimSpace(channel)
		if channel != "" {
			allowed[channel] = true
		}
	}
	return &MessageAdapter{botUserID: botUserID, channels: allowed}
}

// ToChatContext converts a message event, returning nil when the event should
// be ignored.
func (ma *MessageAdapter) ToChatContext(event *slack.MessageEvent) *domain.ChatContext {
	if event == nil {
		return nil
	}
	if event.BotID != "" || event.Subtype != "" {
		return nil
	}
	if event.User == "" || event.User == ma.botUserID {
		return nil
	}
	if len(ma.channels) > 0 && !ma.channels[event.Channel] {
		return nil
	}

	text := stripMention(event.Text, ma.botUserID)
	if text == "" {
		return nil
	}

	return domain.NewChatContext(event.User, event.Channel, threadTimestamp(event), text)
}

// threadTimestamp picks the thread to reply in: the existing thread when the
// message is already threaded, otherwise the message itself starts one.
func threadTimestamp(event *slack.MessageEvent) string {
	if event.ThreadTS != "" {
		return event.ThreadTS
	}
	return event.TS
}

// stripMention removes a leading <@BOTID> mention so "@bot show pipeline"
// resolves the same as "show pipeline".
func stripMention(text, botUserID string) string {
	text = strings.TrimSpace(text)
	if botUserID == "" {
		return text
	}

	mention := "<@" + botUserID + ">"
	if strings.HasPrefix(text, mention) {
		text = strings.TrimSpace(strings.TrimPrefix(text, mention))
	}
	return text
}
