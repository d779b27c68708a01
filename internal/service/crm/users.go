package crm

import (
	"context"
	"fmt"

	"github.com/atlasops/salesops-bot-go/pkg/errors"
)

// FindUserIDByName resolves a CRM user id from a display name. Exact match
// first, then a prefix match so "Sarah" still finds "Sarah Chen" when the
// vocabulary is out of date.
func (c *Client) FindUserIDByName(ctx context.Context, name string) (string, error) {
	records, err := c.Query(ctx, fmt.Sprintf(
		"SELECT Id FROM User WHERE Name = '%s' AND IsActive = true LIMIT 1",
		escapeSOQL(name)))
	if err != nil {
		return "", err
	}

	if len(records) == 0 {
		records, err = c.Query(ctx, fmt.Sprintf(
			"SELECT Id FROM User WHERE Name LIKE '%s%%' AND IsActive = true LIMIT 1",
			escapeSOQL(name)))
		if err != nil {
			return "", err
		}
	}

	if len(records) == 0 {
		return "", errors.NewCRMError(
			fmt.Sprintf("no active user named %q", name), "query", "User", 0, nil)
	}

	return stringField(records[0], "Id"), nil
}
