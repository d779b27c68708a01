package extract

import (
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

// StageLookup maps a numeric or nickname stage reference to canonical labels.
// Backed by the catalog's stage_mapping table.
type StageLookup func(ref string) []string

// Stages resolves stage references from the trigger captures first, then from
// the message itself. Multi-word references ("closed lost", "early stage") are
// checked before single words so "closed lost" never degrades to "lost".
func Stages(message string, captures map[string]string, lookup StageLookup) *domain.StageSet {
	if lookup == nil {
		return nil
	}

	var labels []string
	add := func(found []string) {
		for _, label := range found {
			if !util.Contains(labels, label) {
				labels = append(labels, label)
			}
		}
	}

	if capture, ok := captures[catalog.SlotNumber]; ok {
		add(lookup(capture))
	}
	if capture, ok := captures[catalog.SlotStage]; ok {
		capture = util.Normalize(capture)
		if found := lookup(capture); found != nil {
			add(found)
		} else if found := lookup(capture + " stage"); found != nil {
			// "{stage} stage deals" captures only the qualifier word
			add(found)
		}
	}

	if labels == nil {
		add(scanMessage(message, lookup))
	}

	if labels == nil {
		return nil
	}
	return &domain.StageSet{Stages: labels}
}

func scanMessage(message string, lookup StageLookup) []string {
	norm := util.Normalize(message)
	fields := strings.Fields(strings.Map(dropPunct, norm))

	var labels []string
	add := func(found []string) {
		for _, label := range found {
			if !util.Contains(labels, label) {
				labels = append(labels, label)
			}
		}
	}

	// bigrams first, then single tokens
	for i := 0; i+1 < len(fields); i++ {
		add(lookup(fields[i] + " " + fields[i+1]))
	}
	for i, field := range fields {
		// bare numbers only count as stages right after the word "stage"
		if isDigits(field) {
			if i == 0 || fields[i-1] != "stage" {
				continue
			}
		}
		add(lookup(field))
	}

	return labels
}

func dropPunct(r rune) rune {
	switch r {
	case ',', '.', ':', ';', '!', '?':
		return ' '
	}
	return r
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
