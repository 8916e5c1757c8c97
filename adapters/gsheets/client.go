package gsheets

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public Sheets v4 endpoint
const DefaultBaseURL = "https://sheets.googleapis.com/v4"

// Config holds the Sheets API connection settings. Either an API key (for
// link-shared spreadsheets) or an OAuth access token must be obtained
// beforehand.
type Config struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
}

// Client reads every worksheet of a spreadsheet through the Sheets REST API
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ ports.SheetSource = (*Client)(nil)

// NewClient creates a Sheets client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Worksheets lists the worksheet titles, then fetches all their values in a
// single batch request. Cells come back as displayed text.
func (c *Client) Worksheets(ctx context.Context, spreadsheetID string) ([]sheet.Worksheet, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.InvalidInput("empty spreadsheet id")
	}
	startTime := time.Now()

	titles, err := c.titles(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}

	params := url.Values{}
	for _, title := range titles {
		params.Add("ranges", quoteTitle(title))
	}
	params.Set("majorDimension", "ROWS")

	body, err := c.get(ctx, c.spreadsheetURL(spreadsheetID)+"/values:batchGet", params)
	if err != nil {
		return nil, err
	}

	ranges := gjson.GetBytes(body, "valueRanges").Array()
	worksheets := make([]sheet.Worksheet, len(titles))
	for i, title := range titles {
		worksheets[i] = sheet.Worksheet{Title: title}
		if i < len(ranges) {
			worksheets[i].Grid = parseGrid(ranges[i].Get("values"))
		}
	}

	log.Printf("[SheetsClient] fetched %d worksheet(s) of %s in %v", len(worksheets), spreadsheetID, time.Since(startTime))
	return worksheets, nil
}

func (c *Client) titles(ctx context.Context, spreadsheetID string) ([]string, error) {
	params := url.Values{}
	params.Set("fields", "sheets.properties.title")

	body, err := c.get(ctx, c.spreadsheetURL(spreadsheetID), params)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, t := range gjson.GetBytes(body, "sheets.#.properties.title").Array() {
		titles = append(titles, t.String())
	}
	return titles, nil
}

func (c *Client) spreadsheetURL(spreadsheetID string) string {
	return c.config.BaseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		cause := errors.ExternalServiceError("google sheets", apiError(resp.StatusCode, body))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, errors.Unauthorized("google sheets", apiError(resp.StatusCode, body))
		case http.StatusNotFound:
			return nil, errors.WithCode(errors.CodeNotFound, cause)
		default:
			return nil, cause
		}
	}
	return body, nil
}

// parseGrid turns a values array into rows of text. Trailing empty cells
// are absent from the API response, so rows are ragged.
func parseGrid(values gjson.Result) sheet.Grid {
	rows := values.Array()
	grid := make(sheet.Grid, len(rows))
	for i, row := range rows {
		cells := row.Array()
		grid[i] = make([]string, len(cells))
		for j, cell := range cells {
			grid[i][j] = cell.String()
		}
	}
	return grid
}

// quoteTitle wraps a worksheet title in A1 notation quotes
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func apiError(status int, body []byte) error {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return fmt.Errorf("http %d: %s", status, msg.String())
	}
	return fmt.Errorf("http %d", status)
}
