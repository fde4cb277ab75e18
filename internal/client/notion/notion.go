package notion

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/paynotehq/paynote-api/internal/client/httpclient"
)

const (
	baseURL    = "https://api.notion.com/v1"
	apiVersion = "2022-06-28"
)

// Client is a thin client for the Notion pages and databases APIs.
// The service treats Notion as its system of record; this client only
// moves typed property bags over the wire and leaves every field-name
// decision to the adapter layer above it.
type Client struct {
	http   *httpclient.Client
	logger *zap.Logger
}

// NewClient creates a Notion client authenticated with an integration
// secret. No retries: the pipeline either succeeds or reports the
// failure upstream.
func NewClient(secret string, logger *zap.Logger) *Client {
	return &Client{
		http: httpclient.New(
			httpclient.WithBaseURL(baseURL),
			httpclient.WithDefaultHeader("Authorization", "Bearer "+secret),
			httpclient.WithDefaultHeader("Notion-Version", apiVersion),
		),
		logger: logger,
	}
}

// QueryDatabase runs a filtered query against a database and returns
// the matching pages.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter *Filter) (*QueryResponse, error) {
	body := map[string]interface{}{}
	if filter != nil {
		body["filter"] = filter
	}

	resp, err := c.http.Post(ctx, fmt.Sprintf("/databases/%s/query", databaseID), body)
	if err != nil {
		return nil, errors.Wrapf(err, "notion.QueryDatabase: query against database %s failed", databaseID)
	}

	var result QueryResponse
	if err := c.http.ProcessJSONResponse(resp, &result); err != nil {
		return nil, errors.Wrap(err, "notion.QueryDatabase: decoding response")
	}

	return &result, nil
}

// CreatePage creates a page inside a database with the given
// properties.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]Property) (*Page, error) {
	body := createPageRequest{
		Parent:     pageParent{DatabaseID: databaseID},
		Properties: properties,
	}

	resp, err := c.http.Post(ctx, "/pages", body)
	if err != nil {
		return nil, errors.Wrapf(err, "notion.CreatePage: create in database %s failed", databaseID)
	}

	var page Page
	if err := c.http.ProcessJSONResponse(resp, &page); err != nil {
		return nil, errors.Wrap(err, "notion.CreatePage: decoding response")
	}

	c.logger.Debug("Created Notion page",
		zap.String("page_id", page.ID),
		zap.String("database_id", databaseID))

	return &page, nil
}

// UpdatePage overwrites the given properties on an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) (*Page, error) {
	body := updatePageRequest{Properties: properties}

	resp, err := c.http.Patch(ctx, fmt.Sprintf("/pages/%s", pageID), body)
	if err != nil {
		return nil, errors.Wrapf(err, "notion.UpdatePage: update of page %s failed", pageID)
	}

	var page Page
	if err := c.http.ProcessJSONResponse(resp, &page); err != nil {
		return nil, errors.Wrap(err, "notion.UpdatePage: decoding response")
	}

	return &page, nil
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}

// Page is a Notion page as returned by the pages and query APIs.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// QueryResponse is the result page of a database query.
type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}
