package airtable

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

	"dot-triage/internal/ledger"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Config carries the connection settings for New.
type Config struct {
	APIKey  string
	BaseID  string
	Table   string
	Timeout time.Duration
	// BaseURL overrides the Airtable endpoint, used by tests.
	BaseURL string
}

// Client implements ledger.ClientStore against the Airtable REST API.
type Client struct {
	apiKey     string
	baseID     string
	table      string
	baseURL    string
	httpClient *http.Client
}

// New constructs an Airtable client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("AIRTABLE_API_KEY is required")
	}
	if strings.TrimSpace(cfg.BaseID) == "" {
		return nil, fmt.Errorf("AIRTABLE_BASE_ID is required")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("AIRTABLE_CLIENTS_TABLE is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		table:   cfg.Table,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type recordFields struct {
	Client       string `json:"Client"`
	TeamsID      string `json:"Teams ID"`
	SharepointID string `json:"Sharepoint ID"`
	NextNumber   int    `json:"Next #"`
}

type listResponse struct {
	Records []struct {
		ID     string       `json:"id"`
		Fields recordFields `json:"fields"`
	} `json:"records"`
}

// FindByCode queries the clients table filtering on exact equality of the
// client-code field and returns the first match. The table is assumed to keep
// codes unique; this client does not enforce it.
func (c *Client) FindByCode(ctx context.Context, code string) (*ledger.ClientRecord, error) {
	query := url.Values{}
	query.Set("filterByFormula", fmt.Sprintf("{Client code}='%s'", escapeFormulaString(code)))
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, url.PathEscape(c.table), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup client %q: %w", code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read lookup response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("airtable lookup status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse lookup response: %w", err)
	}
	if len(parsed.Records) == 0 {
		return nil, ledger.ErrNotFound
	}

	record := parsed.Records[0]
	nextNumber := record.Fields.NextNumber
	if nextNumber < 1 {
		nextNumber = 1
	}
	return &ledger.ClientRecord{
		RecordID:      record.ID,
		ClientCode:    code,
		ClientName:    record.Fields.Client,
		TeamsID:       record.Fields.TeamsID,
		SharepointURL: record.Fields.SharepointID,
		NextNumber:    nextNumber,
	}, nil
}

// UpdateNextNumber patches a record's counter field to next.
func (c *Client) UpdateNextNumber(ctx context.Context, recordID string, next int) error {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table), url.PathEscape(recordID))

	payload, err := json.Marshal(map[string]any{
		"fields": map[string]any{"Next #": next},
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update record %s: %w", recordID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("airtable update status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// escapeFormulaString keeps a client code from breaking out of the
// single-quoted filterByFormula literal.
func escapeFormulaString(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}
