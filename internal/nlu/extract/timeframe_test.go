package extract

import (
	"testing"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

// Wednesday 2026-03-11, mid-quarter, mid-month.
func fixedNow() time.Time {
	return time.Date(2026, time.March, 11, 14, 30, 0, 0, util.OpsLocation())
}

func TestTimeframeRanges(t *testing.T) {
	now := fixedNow()
	loc := util.OpsLocation()

	tests := []struct {
		phrase    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"today",
			time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 12, 0, 0, 0, 0, loc)},
		{"yesterday",
			time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 11, 0, 0, 0, 0, loc)},
		{"this week",
			time.Date(2026, 3, 9, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 16, 0, 0, 0, 0, loc)},
		{"last week",
			time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 9, 0, 0, 0, 0, loc)},
		{"this month",
			time.Date(2026, 3, 1, 0, 0, 0, 0, loc),
			time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"last month",
			time.Date(2026, 2, 1, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 1, 0, 0, 0, 0, loc)},
		{"this quarter",
			time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
			time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"last quarter",
			time.Date(2025, 10, 1, 0, 0, 0, 0, loc),
			time.Date(2026, 1, 1, 0, 0, 0, 0, loc)},
		{"this year",
			time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
			time.Date(2027, 1, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		tf := Timeframe("deals closing "+tt.phrase, nil, now)
		if tf == nil {
			t.Errorf("Timeframe(%q) = nil", tt.phrase)
			continue
		}
		if tf.Label != tt.phrase {
			t.Errorf("label = %q, want %q", tf.Label, tt.phrase)
		}
		if !tf.Start.Equal(tt.wantStart) {
			t.Errorf("%q start = %v, want %v", tt.phrase, tf.Start, tt.wantStart)
		}
		if !tf.End.Equal(tt.wantEnd) {
			t.Errorf("%q end = %v, want %v", tt.phrase, tf.End, tt.wantEnd)
		}
	}
}

func TestTimeframeHalfOpen(t *testing.T) {
	tf := Timeframe("deals closing today", nil, fixedNow())
	if tf == nil {
		t.Fatal("Timeframe returned nil")
	}

	if !tf.Start.Before(tf.End) {
		t.Error("start must precede end")
	}
	// End is exclusive: midnight of the next day belongs to tomorrow.
	if tf.End.Sub(tf.Start) != 24*time.Hour {
		t.Errorf("today spans %v, want 24h", tf.End.Sub(tf.Start))
	}
}

func TestTimeframeSundayBelongsToCurrentWeek(t *testing.T) {
	// Sunday 2026-03-15; "this week" must still start Monday 2026-03-09.
	sunday := time.Date(2026, time.March, 15, 9, 0, 0, 0, util.OpsLocation())

	tf := Timeframe("deals closing this week", nil, sunday)
	if tf == nil {
		t.Fatal("Timeframe returned nil")
	}

	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, util.OpsLocation())
	if !tf.Start.Equal(wantStart) {
		t.Errorf("week start = %v, want %v", tf.Start, wantStart)
	}
}

func TestTimeframeCapturePreferred(t *testing.T) {
	captures := map[string]string{catalog.SlotTimeframe: "Last Month"}

	tf := Timeframe("deals closing this week", captures, fixedNow())
	if tf == nil {
		t.Fatal("Timeframe returned nil")
	}
	if tf.Label != "last month" {
		t.Errorf("label = %q, want %q", tf.Label, "last month")
	}
}

func TestTimeframeLongestPhraseWins(t *testing.T) {
	// "this week" must not short-circuit on a shorter substring.
	tf := Timeframe("what closed this week", nil, fixedNow())
	if tf == nil || tf.Label != "this week" {
		t.Fatalf("got %+v, want this week", tf)
	}
}

func TestTimeframeUnknownPhrase(t *testing.T) {
	if tf := Timeframe("deals closing someday", nil, fixedNow()); tf != nil {
		t.Errorf("unknown phrase resolved to %+v", tf)
	}
}
