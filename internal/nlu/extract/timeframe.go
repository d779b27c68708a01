package extract

import (
	"strings"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

// Timeframe resolves a relative date phrase to a half-open [start, end) range
// anchored on now in the operational timezone. Weeks start on Monday.
func Timeframe(message string, captures map[string]string, now time.Time) *domain.Timeframe {
	now = now.In(util.OpsLocation())

	if capture, ok := captures[catalog.SlotTimeframe]; ok {
		if tf := resolvePhrase(util.Normalize(capture), now); tf != nil {
			return tf
		}
	}

	norm := util.Normalize(message)
	for _, label := range knownTimeframes {
		if strings.Contains(norm, label) {
			return resolvePhrase(label, now)
		}
	}

	return nil
}

// Ordered so longer phrases are found before their substrings.
var knownTimeframes = []string{
	"this week",
	"last week",
	"this month",
	"last month",
	"this quarter",
	"last quarter",
	"this year",
	"yesterday",
	"today",
}

func resolvePhrase(phrase string, now time.Time) *domain.Timeframe {
	loc := now.Location()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch phrase {
	case "today":
		return frame(phrase, day, day.AddDate(0, 0, 1))
	case "yesterday":
		return frame(phrase, day.AddDate(0, 0, -1), day)
	case "this week":
		start := startOfWeek(day)
		return frame(phrase, start, start.AddDate(0, 0, 7))
	case "last week":
		start := startOfWeek(day).AddDate(0, 0, -7)
		return frame(phrase, start, start.AddDate(0, 0, 7))
	case "this month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return frame(phrase, start, start.AddDate(0, 1, 0))
	case "last month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return frame(phrase, start, start.AddDate(0, 1, 0))
	case "this quarter":
		start := startOfQuarter(now)
		return frame(phrase, start, start.AddDate(0, 3, 0))
	case "last quarter":
		start := startOfQuarter(now).AddDate(0, -3, 0)
		return frame(phrase, start, start.AddDate(0, 3, 0))
	case "this year":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return frame(phrase, start, start.AddDate(1, 0, 0))
	}

	return nil
}

func frame(label string, start, end time.Time) *domain.Timeframe {
	return &domain.Timeframe{Label: label, Start: start, End: end}
}

func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func startOfQuarter(now time.Time) time.Time {
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
}
