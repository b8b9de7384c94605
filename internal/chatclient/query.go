package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"legalchat-backend/internal/models"

	"go.uber.org/zap"
)

// DefaultTopK is the number of documents requested from the answer service.
const DefaultTopK = 30

// Answerer produces an answer for a query and its conversational memory.
type Answerer interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

var _ Answerer = (*QueryClient)(nil)

// QueryClient calls the answer service's POST /query endpoint.
// It sets no timeout of its own; the caller's context bounds the call.
type QueryClient struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

func NewQueryClient(url string, logger *zap.Logger) *QueryClient {
	return &QueryClient{
		url:    url,
		http:   &http.Client{},
		logger: logger.Named("query_client"),
	}
}

func (c *QueryClient) Query(ctx context.Context, q models.QueryRequest) (*models.QueryResponse, error) {
	if q.Memory == nil {
		q.Memory = []models.MemoryMessage{}
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("answer service returned an error",
			zap.Int("status", resp.StatusCode),
			zap.Int("memory_len", len(q.Memory)))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "Network response was not ok"}
	}

	var out models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	if out.RetrievedDocuments == nil {
		out.RetrievedDocuments = []models.RetrievedDocument{}
	}
	return &out, nil
}
