package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Slot names usable in trigger templates.
const (
	SlotAccount     = "account"
	SlotAccountList = "accountList"
	SlotOwner       = "owner"
	SlotStage       = "stage"
	SlotNumber      = "number"
	SlotTimeframe   = "timeframe"
	SlotAmount      = "amount"
)

var slotTokenPattern = regexp.MustCompile(`^\{(account|accountList|owner|stage|number|timeframe|amount)\}('s)?$`)

// Separator between trigger tokens: whitespace, commas, colons.
const tokenSeparator = `[\s,:]+`

// Known misspellings corrected on the matching copy of the message only; the
// original text is left untouched for extraction.
var misspellings = map[string]string{
	"histroy":      "history",
	"custome":      "customer",
	"pipline":      "pipeline",
	"oppurtunity":  "opportunity",
	"opportunties": "opportunities",
	"nuture":       "nurture",
	"reasign":      "reassign",
}

// Anchoring keywords raise a trigger's specificity beyond plain token count.
var anchorKeywords = map[string]bool{
	"nurture":       true,
	"pipeline":      true,
	"reassign":      true,
	"opportunity":   true,
	"opportunities": true,
	"owns":          true,
	"owner":         true,
	"deals":         true,
	"history":       true,
	"stage":         true,
}

// Trigger is a compiled phrase template: literal tokens and typed capture
// slots, compiled once at catalog load.
type Trigger struct {
	Source      string
	Slots       []string
	Literals    int
	Specificity int

	re *regexp.Regexp
	// capture group index per slot, 1-based
	groupIndex map[string]int
}

// Match is one successful trigger binding.
type Match struct {
	Captures    map[string]string
	Specificity int
}

func slotPattern(kind string, trailing bool) (string, error) {
	switch kind {
	case SlotAccount:
		if trailing {
			return `(.+)`, nil
		}
		return `(.+?)`, nil
	case SlotAccountList:
		if trailing {
			return `(.+)`, nil
		}
		return `(.+?)`, nil
	case SlotOwner:
		return `([a-z][a-z.'-]*(?:\s+[a-z][a-z.'-]*)?)`, nil
	case SlotStage:
		if trailing {
			return `([a-z0-9][a-z0-9 ]*)`, nil
		}
		return `([a-z0-9][a-z0-9 ]*?)`, nil
	case SlotNumber:
		return `(\d+)`, nil
	case SlotTimeframe:
		if trailing {
			return `([a-z0-9 ]+)`, nil
		}
		return `([a-z0-9 ]+?)`, nil
	case SlotAmount:
		return `(\$?\d[\d,.]*\s*[kmb]?)`, nil
	default:
		return "", fmt.Errorf("unknown slot kind %q", kind)
	}
}

func compileTrigger(raw string) (*Trigger, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty trigger")
	}

	var (
		parts        []string
		slots        []string
		groupIndex   = map[string]int{}
		literalCount int
		anchorBonus  int
		group        int
	)

	for i, token := range tokens {
		if m := slotTokenPattern.FindStringSubmatch(token); m != nil {
			kind := m[1]
			if _, dup := groupIndex[kind]; dup {
				return nil, fmt.Errorf("slot {%s} appears twice", kind)
			}

			pattern, err := slotPattern(kind, i == len(tokens)-1)
			if err != nil {
				return nil, err
			}
			if m[2] != "" {
				pattern += `'s`
			}

			group++
			groupIndex[kind] = group
			slots = append(slots, kind)
			parts = append(parts, pattern)
			continue
		}

		literalCount++
		if anchorKeywords[strings.Trim(token, ",:")] {
			anchorBonus += 2
		}
		parts = append(parts, regexp.QuoteMeta(strings.Trim(token, ",:")))
	}

	if literalCount == 0 && len(slots) == 0 {
		return nil, fmt.Errorf("trigger has no tokens")
	}

	pattern := `(?i)(?:^|\b)` + strings.Join(parts, tokenSeparator)
	if endsWithOpenSlot(tokens) {
		pattern += `\s*$`
	} else {
		pattern += `\b`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("trigger did not compile: %w", err)
	}

	return &Trigger{
		Source:      raw,
		Slots:       slots,
		Literals:    literalCount,
		Specificity: literalCount*2 + anchorBonus + len(slots),
		re:          re,
		groupIndex:  groupIndex,
	}, nil
}

// endsWithOpenSlot reports whether the final token is an open-ended capture
// (account, accountList, stage, timeframe), which must bind to end of message.
func endsWithOpenSlot(tokens []string) bool {
	m := slotTokenPattern.FindStringSubmatch(tokens[len(tokens)-1])
	if m == nil || m[2] != "" {
		return false
	}
	switch m[1] {
	case SlotAccount, SlotAccountList, SlotStage, SlotTimeframe:
		return true
	}
	return false
}

// MatchMessage tests the trigger against a message. Matching is performed on a
// typo-corrected, case-folded copy; captures are trimmed but otherwise raw.
func (t *Trigger) MatchMessage(message string) (*Match, bool) {
	corrected := CorrectKnownMisspellings(message)

	m := t.re.FindStringSubmatch(corrected)
	if m == nil {
		return nil, false
	}

	captures := make(map[string]string, len(t.groupIndex))
	for kind, idx := range t.groupIndex {
		value := strings.Trim(strings.TrimSpace(m[idx]), ",:")
		if value == "" {
			return nil, false
		}
		captures[kind] = value
	}

	// {accountList} only binds to an actual list; a single name falls through
	// to the single-account intent instead.
	if span, ok := captures[SlotAccountList]; ok {
		if countListItems(span) < 2 {
			return nil, false
		}
	}

	return &Match{
		Captures:    captures,
		Specificity: t.Specificity,
	}, true
}

var listSeparatorPattern = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&)\s*`)

func countListItems(span string) int {
	parts := listSeparatorPattern.Split(span, -1)
	count := 0
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// CorrectKnownMisspellings replaces allow-listed typos token-wise. Used only
// for matching; never for extraction output.
func CorrectKnownMisspellings(message string) string {
	fields := strings.Fields(message)
	changed := false
	for i, field := range fields {
		lower := strings.ToLower(field)
		if fixed, ok := misspellings[strings.Trim(lower, ",:.!?")]; ok {
			fields[i] = fixed
			changed = true
		}
	}
	if !changed {
		return message
	}
	return strings.Join(fields, " ")
}

// Exclusion is a compiled veto phrase. Exclusions match the raw message with
// word boundaries, so "create account" never fires on a company whose name
// merely contains the word "account".
type Exclusion struct {
	Source string
	re     *regexp.Regexp
}

func compileExclusion(raw string) (*Exclusion, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty exclusion")
	}

	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(token)
	}

	re, err := regexp.Compile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("exclusion did not compile: %w", err)
	}

	return &Exclusion{Source: raw, re: re}, nil
}

// Vetoes tests the exclusion against the raw, unstripped message.
func (e *Exclusion) Vetoes(rawMessage string) bool {
	return e.re.MatchString(rawMessage)
}
