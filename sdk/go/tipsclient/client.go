// Package tipsclient is a Go client for the travel insurance propensity scoring API.
package tipsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Employment sectors accepted by the API.
const (
	GovernmentSector      = "GOVERNMENT"
	PrivateOrSelfEmployed = "PRIVATE_OR_SELF_EMPLOYED"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultMaxElapsedRetry = 5 * time.Second
)

// Profile is a customer profile to score.
type Profile struct {
	Age               int    `json:"age"`
	AnnualIncome      int    `json:"annualIncome"`
	FamilyMembers     int    `json:"familyMembers"`
	EmploymentSector  string `json:"employmentSector"`
	HigherEducation   bool   `json:"higherEducation"`
	ChronicConditions bool   `json:"chronicConditions"`
	FrequentFlyer     bool   `json:"frequentFlyer"`
	TravelledAbroad   bool   `json:"travelledAbroad"`
}

// ScoreResult is the outcome of scoring one profile.
type ScoreResult struct {
	Probability      float64 `json:"probability"`
	Percentage       float64 `json:"percentage"`
	Tier             string  `json:"tier"`
	Label            string  `json:"label"`
	ModelVersion     string  `json:"model_version"`
	TransformVersion string  `json:"transform_version"`
	Cached           bool    `json:"cached,omitempty"`
}

// Methodology describes how the model was built.
type Methodology struct {
	Algorithm string  `json:"algorithm,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	TrainedAt string  `json:"trained_at,omitempty"`
}

// ArtifactInfo describes the artifacts the server is scoring with.
type ArtifactInfo struct {
	TransformVersion string      `json:"transform_version"`
	ModelVersion     string      `json:"model_version"`
	ModelKind        string      `json:"model_kind"`
	TransformSHA256  string      `json:"transform_sha256"`
	ModelSHA256      string      `json:"model_sha256"`
	Source           string      `json:"source"`
	FeatureNames     []string    `json:"feature_names"`
	Methodology      Methodology `json:"methodology"`
	LoadedAt         time.Time   `json:"loaded_at"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode  int                    `json:"-"`
	Code        string                 `json:"error"`
	Description string                 `json:"error_description"`
	Message     string                 `json:"message,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Description
	}
	return fmt.Sprintf("tips: %d %s: %s", e.StatusCode, e.Code, msg)
}

// Field returns the offending profile field of a validation error, or "".
func (e *APIError) Field() string {
	field, _ := e.Metadata["field"].(string)
	return field
}

// IsValidation reports whether err is a rejected profile.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == "validation_error" || apiErr.Code == "unknown_category")
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how long transient failures (network errors and 503) are retried.
// Zero disables retries.
func WithRetry(maxElapsed time.Duration) Option {
	return func(c *Client) { c.maxElapsedRetry = maxElapsed }
}

// Client is a thread-safe client for the scoring API. Artifact descriptions
// are cached and revalidated with their ETag.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxElapsedRetry time.Duration

	cacheMutex sync.RWMutex
	lastETag   string
	artifacts  *ArtifactInfo
}

// New creates a Client for the API at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{Timeout: defaultTimeout},
		maxElapsedRetry: defaultMaxElapsedRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score scores one profile. Scoring is deterministic, so transient failures are retried.
func (c *Client) Score(ctx context.Context, p Profile) (*ScoreResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	var result ScoreResult
	err = c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/score", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return classify(decodeError(resp))
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("tips: malformed score response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Artifacts returns the server's artifact description, revalidating the cached copy.
func (c *Client) Artifacts(ctx context.Context) (*ArtifactInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/artifacts", nil)
	if err != nil {
		return nil, err
	}

	c.cacheMutex.RLock()
	if c.lastETag != "" {
		req.Header.Set("If-None-Match", c.lastETag)
	}
	c.cacheMutex.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.cacheMutex.RLock()
		defer c.cacheMutex.RUnlock()
		if c.artifacts != nil {
			return c.artifacts, nil
		}
		return nil, errors.New("tips: 304 without a cached artifact description")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var info ArtifactInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("tips: malformed artifact response: %w", err)
	}

	c.cacheMutex.Lock()
	c.artifacts = &info
	c.lastETag = resp.Header.Get("ETag")
	c.cacheMutex.Unlock()
	return &info, nil
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	if c.maxElapsedRetry <= 0 {
		err := op()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = c.maxElapsedRetry
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

// classify marks everything but 503 as not worth retrying.
func classify(err *APIError) error {
	if err.StatusCode == http.StatusServiceUnavailable {
		return err
	}
	return backoff.Permanent(err)
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}
