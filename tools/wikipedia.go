package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWikipediaEndpoint = "https://en.wikipedia.org/api/rest_v1"

// WikipediaTool fetches article summaries from the Wikipedia REST API.
// Disambiguation pages, missing pages, and transport failures all come back
// as descriptive text, never as an error: the loop needs an observation it
// can reason about, not a fault.
type WikipediaTool struct {
	Endpoint string
	Client   *http.Client
}

type wikipediaSummary struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Extract string `json:"extract"`
}

// NewWikipediaTool targets the public English Wikipedia.
func NewWikipediaTool() *WikipediaTool {
	return &WikipediaTool{
		Endpoint: defaultWikipediaEndpoint,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name implements framework.Tool.
func (t *WikipediaTool) Name() string { return "wikipedia" }

// Description implements framework.Tool.
func (t *WikipediaTool) Description() string {
	return "Useful for getting Wikipedia summaries. Input is the topic to look up."
}

// Invoke looks up the summary for the query.
func (t *WikipediaTool) Invoke(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "Error: no topic provided.", nil
	}
	title := url.PathEscape(strings.ReplaceAll(query, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint()+"/page/summary/"+title, nil)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	req.Header.Set("Accept", "application/json")
	resp, err := t.httpClient().Do(req)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Sprintf("Error: page not found for %q.", query), nil
	case resp.StatusCode >= 300:
		return fmt.Sprintf("Error: wikipedia returned %s.", resp.Status), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	var summary wikipediaSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if summary.Type == "disambiguation" {
		return fmt.Sprintf("Disambiguation error: %q may refer to multiple pages. Try a more specific topic.", query), nil
	}
	if strings.TrimSpace(summary.Extract) == "" {
		return fmt.Sprintf("Error: no summary available for %q.", query), nil
	}
	return summary.Extract, nil
}

func (t *WikipediaTool) endpoint() string {
	if t.Endpoint != "" {
		return t.Endpoint
	}
	return defaultWikipediaEndpoint
}

func (t *WikipediaTool) httpClient() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
