package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the spreadsheet service endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com"

// GridClient is the transport contract against the remote 2-D grid
// resource. Ranges use A1 notation.
type GridClient interface {
	// Title returns the resource's display name.
	Title(ctx context.Context, resourceID string) (string, error)
	// Values reads a bounded cell range as rows of strings.
	Values(ctx context.Context, resourceID, rng string) ([][]string, error)
	// Update writes rows starting at the origin cell.
	Update(ctx context.Context, resourceID, origin string, values [][]string) error
	// Clear empties a cell range.
	Clear(ctx context.Context, resourceID, rng string) error
}

// HTTPGridClient speaks the spreadsheet REST API with an API key plus a
// bearer token drawn from the session's token source.
type HTTPGridClient struct {
	baseURL string
	apiKey  string
	source  oauth2.TokenSource
	http    *http.Client
}

func NewHTTPGridClient(baseURL, apiKey string, source oauth2.TokenSource) *HTTPGridClient {
	return &HTTPGridClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		source:  source,
		http:    http.DefaultClient,
	}
}

func (c *HTTPGridClient) Title(ctx context.Context, resourceID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=properties.title", c.baseURL, url.PathEscape(resourceID))

	var out struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return "", errors.Errorf("fetching resource metadata: %w", err)
	}
	return out.Properties.Title, nil
}

func (c *HTTPGridClient) Values(ctx context.Context, resourceID, rng string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.baseURL, url.PathEscape(resourceID), url.PathEscape(rng))

	var out struct {
		Values [][]any `json:"values"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, errors.Errorf("fetching range %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(out.Values))
	for _, raw := range out.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, stringifyCell(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *HTTPGridClient) Update(ctx context.Context, resourceID, origin string, values [][]string) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(resourceID), url.PathEscape(origin))

	body := map[string]any{"values": values}
	if err := c.do(ctx, http.MethodPut, endpoint, body, nil); err != nil {
		return errors.Errorf("writing grid at %s: %w", origin, err)
	}
	return nil
}

func (c *HTTPGridClient) Clear(ctx context.Context, resourceID, rng string) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:clear",
		c.baseURL, url.PathEscape(resourceID), url.PathEscape(rng))

	if err := c.do(ctx, http.MethodPost, endpoint, map[string]any{}, nil); err != nil {
		return errors.Errorf("clearing range %s: %w", rng, err)
	}
	return nil
}

func (c *HTTPGridClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return errors.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, err := c.source.Token()
	if err != nil {
		return err
	}
	tok.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("calling remote service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Errorf("%w: remote returned status %d", ErrNotAuthenticated, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Errorf("decoding response: %w", err)
	}
	return nil
}

// stringifyCell maps the service's loosely typed cells onto the string
// grid: booleans use the TRUE/FALSE literals the grid layout expects.
func stringifyCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
