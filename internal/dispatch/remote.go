package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/penplan/pension-planner/internal/domain"
)

// RemoteClient is the remote compute capability consumed by the dispatcher.
// It either returns a projection result or fails; retry policy lives in the
// dispatcher, not here.
type RemoteClient interface {
	Project(ctx context.Context, input *domain.PlanInput) (*domain.ProjectionResult, error)
}

// HTTPComputeClient calls the compute server's projection endpoint.
type HTTPComputeClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPComputeClient creates a client against the given base URL. Request
// deadlines come from the caller's context, not from the HTTP client.
func NewHTTPComputeClient(baseURL string) *HTTPComputeClient {
	return &HTTPComputeClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Project posts the serialized plan and decodes the projection result.
func (c *HTTPComputeClient) Project(ctx context.Context, input *domain.PlanInput) (*domain.ProjectionResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%w: encode plan: %v", ErrTransportFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/project", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Wrap both ways so errors.Is still sees a context deadline.
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransportFailure, resp.StatusCode)
	}

	var result domain.ProjectionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}
