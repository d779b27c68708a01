package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/atlasops/salesops-bot-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Fields the CRM computes itself. Sending them back on an update is rejected
// with a 400, so the client strips them from every mutation payload.
var readOnlyFields = []string{"Id", "IsClosed", "IsWon", "CreatedDate", "LastModifiedDate"}

type Config struct {
	InstanceURL  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Client is the Salesforce REST boundary. It carries no business logic: the
// command layer decides what to read and write.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	tokens     oauth2.TokenSource
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := &http.Client{
		Timeout: constants.CRMConfig.RequestTimeout,
	}

	grant := &passwordGrant{
		// oauth2 reads its transport from the context.
		ctx: context.WithValue(context.Background(), oauth2.HTTPClient, httpClient),
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.InstanceURL + "/services/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username: cfg.Username,
		password: cfg.Password,
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		tokens:     oauth2.ReuseTokenSource(nil, grant),
	}
}

// passwordGrant fetches tokens with the resource-owner password grant.
// Salesforce omits expires_in on these tokens, so a missing expiry gets the
// configured session lifetime; ReuseTokenSource then renews on schedule.
type passwordGrant struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (g *passwordGrant) Token() (*oauth2.Token, error) {
	tok, err := g.conf.PasswordCredentialsToken(g.ctx, g.username, g.password)
	if err != nil {
		return nil, errors.NewCRMError("token request rejected", "token", "", 0, err)
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = time.Now().Add(constants.CRMConfig.SessionLifetime)
	}
	return tok, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, dest any) error {
	tok, err := c.tokens.Token()
	if err != nil {
		return err
	}
	token := tok.AccessToken

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewCRMError("failed to marshal request body", method, path, 0, err)
		}
		payload = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 1; attempt <= constants.RetryConfig.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.InstanceURL+path, payload)
		if err != nil {
			return errors.NewCRMError("failed to build request", method, path, 0, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return errors.NewCRMError("failed to read response", method, path, resp.StatusCode, readErr)
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if dest != nil && len(data) > 0 {
					if err := json.Unmarshal(data, dest); err != nil {
						return errors.NewCRMError("failed to decode response", method, path, resp.StatusCode, err)
					}
				}
				return nil
			}

			// Only server-side failures are retried
			if resp.StatusCode < 500 {
				return errors.NewCRMError(
					fmt.Sprintf("request rejected: %s", strings.TrimSpace(string(data))),
					method, path, resp.StatusCode, nil)
			}
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}

		if attempt < constants.RetryConfig.MaxAttempts {
			select {
			case <-ctx.Done():
				return errors.NewCRMError("request cancelled", method, path, 0, ctx.Err())
			case <-time.After(constants.RetryConfig.BaseDelay * time.Duration(attempt)):
			}
		}

		// rebuild the payload reader for the retry
		if body != nil {
			data, _ := json.Marshal(body)
			payload = bytes.NewReader(data)
		}
	}

	return errors.NewCRMError("request failed after retries", method, path, 0, lastErr)
}

type queryResponse struct {
	TotalSize int              `json:"totalSize"`
	Done      bool             `json:"done"`
	Records   []map[string]any `json:"records"`
}

// Query runs a SOQL query and returns raw records.
func (c *Client) Query(ctx context.Context, soql string) ([]map[string]any, error) {
	path := fmt.Sprintf("/services/data/%s/query?q=%s",
		constants.CRMConfig.APIVersion, url.QueryEscape(soql))

	var result queryResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		c.logger.Error("SOQL query failed", zap.Error(err))
		return nil, err
	}

	return result.Records, nil
}

// UpdateObject patches a single record. Read-only fields are stripped from the
// payload before it leaves the process.
func (c *Client) UpdateObject(ctx context.Context, object, id string, fields map[string]any) error {
	sanitized := SanitizeUpdateFields(fields)
	if len(sanitized) == 0 {
		return errors.NewCRMError("update has no writable fields", "update", object, 0, nil)
	}

	path := fmt.Sprintf("/services/data/%s/sobjects/%s/%s",
		constants.CRMConfig.APIVersion, object, url.PathEscape(id))

	if err := c.doRequest(ctx, http.MethodPatch, path, sanitized, nil); err != nil {
		return err
	}

	c.logger.Info("CRM record updated",
		zap.String("object", object),
		zap.String("id", id),
	)
	return nil
}

type createResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// CreateObject inserts a new record and returns its id.
func (c *Client) CreateObject(ctx context.Context, object string, fields map[string]any) (string, error) {
	sanitized := SanitizeUpdateFields(fields)

	path := fmt.Sprintf("/services/data/%s/sobjects/%s",
		constants.CRMConfig.APIVersion, object)

	var result createResponse
	if err := c.doRequest(ctx, http.MethodPost, path, sanitized, &result); err != nil {
		return "", err
	}

	c.logger.Info("CRM record created",
		zap.String("object", object),
		zap.String("id", result.ID),
	)
	return result.ID, nil
}

// SanitizeUpdateFields returns a copy of fields with CRM-computed read-only
// fields removed.
func SanitizeUpdateFields(fields map[string]any) map[string]any {
	sanitized := make(map[string]any, len(fields))
	for key, value := range fields {
		readOnly := false
		for _, field := range readOnlyFields {
			if strings.EqualFold(key, field) {
				readOnly = true
				break
			}
		}
		if !readOnly {
			sanitized[key] = value
		}
	}
	return sanitized
}
