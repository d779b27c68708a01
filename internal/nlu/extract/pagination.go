package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atlasops/salesops-bot-go/internal/catalog"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/util"
)

var nextCountPattern = regexp.MustCompile(`(?i)\bnext\s+(\d+)\b`)

// Pagination maps paging directives to an action. "show all" wins over "next"
// when both somehow appear.
func Pagination(message string, captures map[string]string) *domain.PaginationAction {
	norm := util.Normalize(message)

	if strings.Contains(norm, "show all") || strings.Contains(norm, "all of them") {
		return &domain.PaginationAction{Action: domain.PaginationShowAll}
	}

	if capture, ok := captures[catalog.SlotNumber]; ok {
		if count, err := strconv.Atoi(capture); err == nil && count > 0 {
			return &domain.PaginationAction{Action: domain.PaginationNextPage, Count: count}
		}
	}

	if m := nextCountPattern.FindStringSubmatch(norm); m != nil {
		if count, err := strconv.Atoi(m[1]); err == nil && count > 0 {
			return &domain.PaginationAction{Action: domain.PaginationNextPage, Count: count}
		}
	}

	if strings.Contains(norm, "next") || strings.Contains(norm, "more") {
		return &domain.PaginationAction{Action: domain.PaginationNextPage}
	}

	return nil
}
