// Package sheets reads and writes the journal in a remote spreadsheet.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Sheets v4 REST root.
	DefaultBaseURL = "https://sheets.googleapis.com/v4"

	requestTimeout = 15 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
)

var (
	// ErrUnauthorized indicates the access token is missing, expired or lacks access.
	ErrUnauthorized = errors.New("sheets: unauthorized (token expired or spreadsheet not shared)")
	// ErrSheetNotFound indicates the spreadsheet or the named tab does not exist.
	ErrSheetNotFound = errors.New("sheets: spreadsheet or sheet not found")
	// ErrRateLimited indicates the API quota was hit.
	ErrRateLimited = errors.New("sheets: rate limited")
)

// Client talks to the values endpoints of one spreadsheet.
type Client struct {
	baseURL       string
	spreadsheetID string
	token         string
	http          *http.Client
}

// NewClient creates a client for the given spreadsheet.
// Returns nil if the spreadsheet ID is empty.
func NewClient(baseURL, spreadsheetID, token string) *Client {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		token:         strings.TrimSpace(token),
		http:          &http.Client{},
	}
}

// ReadAll returns every row in rng as strings. Numbers and booleans are
// rendered with their JSON text.
func (c *Client) ReadAll(ctx context.Context, rng string) ([][]string, error) {
	body, err := c.do(ctx, http.MethodGet, c.valuesURL(rng, "", nil), nil)
	if err != nil {
		return nil, err
	}

	var vr valueRange
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("sheets: parsing values: %w", err)
	}

	rows := make([][]string, len(vr.Values))
	for i, raw := range vr.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = cellString(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

// Append adds rows after the last non-empty row of rng.
func (c *Client) Append(ctx context.Context, rng string, rows [][]string) error {
	q := url.Values{
		"valueInputOption": {"USER_ENTERED"},
		"insertDataOption": {"INSERT_ROWS"},
	}
	_, err := c.do(ctx, http.MethodPost, c.valuesURL(rng, ":append", q), writeRange{
		MajorDimension: "ROWS",
		Values:         rows,
	})
	return err
}

// Update overwrites the cells of rng.
func (c *Client) Update(ctx context.Context, rng string, rows [][]string) error {
	q := url.Values{"valueInputOption": {"USER_ENTERED"}}
	_, err := c.do(ctx, http.MethodPut, c.valuesURL(rng, "", q), writeRange{
		Range:          rng,
		MajorDimension: "ROWS",
		Values:         rows,
	})
	return err
}

// Clear blanks the cells of rng.
func (c *Client) Clear(ctx context.Context, rng string) error {
	_, err := c.do(ctx, http.MethodPost, c.valuesURL(rng, ":clear", nil), struct{}{})
	return err
}

func (c *Client) valuesURL(rng, verb string, q url.Values) string {
	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(rng), verb)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sheets: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("sheets: creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "github.com/theirongolddev/scalelog/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("sheets: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrSheetNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := apiMessage(body)
		// An unknown tab name comes back as a 400 on the range.
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(msg, "Unable to parse range") {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, msg)
		}
		if msg != "" {
			return nil, fmt.Errorf("sheets: unexpected status %d: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("sheets: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func apiMessage(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err != nil {
		return ""
	}
	return ae.Error.Message
}

// cellString flattens a JSON cell value to text.
func cellString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(string(raw))
}
