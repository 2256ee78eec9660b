package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	apperrors "github.com/lepinkainen/literalura/internal/errors"
)

const (
	authorsTable = "authors"
	booksTable   = "books"
)

// DatasetteClient pushes rows to a remote Datasette insert API.
type DatasetteClient struct {
	baseURL  string
	apiToken string
	database string
	client   *http.Client
}

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, apiToken, database string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		database: database,
		client:   &http.Client{},
	}
}

// Insert sends rows to <base>/-/insert/<database>/<table>.
func (c *DatasetteClient) Insert(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "-/insert", c.database, table)
	endpoint := u.String()

	jsonData, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewTransportError(endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return apperrors.NewStatusError(endpoint, resp.StatusCode, "")
		}
		return apperrors.NewStatusError(endpoint, resp.StatusCode, fmt.Sprintf("%v", errResp))
	}

	return nil
}

// Inserter receives exported rows for one table at a time.
type Inserter interface {
	Insert(ctx context.Context, table string, rows []map[string]any) error
}

// Publish inserts the snapshot's authors and then its books into dst.
func Publish(ctx context.Context, dst Inserter, s *Snapshot) error {
	if err := dst.Insert(ctx, authorsTable, authorRows(s.Authors)); err != nil {
		return fmt.Errorf("failed to publish authors: %w", err)
	}
	if err := dst.Insert(ctx, booksTable, bookRows(s.Books)); err != nil {
		return fmt.Errorf("failed to publish books: %w", err)
	}
	return nil
}
