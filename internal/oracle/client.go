// Package oracle wraps the external AI scoring service. The core never
// grades free-text answers itself; judgment is delegated to this service.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnavailable indicates the oracle could not be reached or timed out.
	ErrUnavailable = errors.New("evaluation service unavailable")

	// ErrRejected indicates the oracle was reached but returned a failure
	// status.
	ErrRejected = errors.New("evaluation service rejected the request")
)

// RejectedError carries the oracle's error payload alongside ErrRejected.
type RejectedError struct {
	StatusCode int
	Payload    []byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("evaluation service returned status %d: %s", e.StatusCode, string(e.Payload))
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// EvaluationItem is one question/expected-answer/actual-answer triple sent
// for judgment.
type EvaluationItem struct {
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	ActualAnswer   string `json:"actual_answer"`
	ExpectedAnswer string `json:"expected_answer"`
}

// Verdict is the oracle's judgment for one question.
type Verdict struct {
	QuestionID string  `json:"question_id"`
	Score      float64 `json:"score"`
	Correct    bool    `json:"correct"`
	Feedback   string  `json:"feedback"`
}

// SwotReport is the narrative strengths/weaknesses/opportunities/threats
// feedback produced as a best-effort companion to evaluation.
type SwotReport struct {
	Strengths     string `json:"strengths"`
	Weaknesses    string `json:"weaknesses"`
	Opportunities string `json:"opportunities"`
	Threats       string `json:"threats"`
	Analysis      string `json:"analysis,omitempty"`
}

// Client is the contract the engine uses to talk to the oracle.
type Client interface {
	// Evaluate performs a single batched scoring call.
	Evaluate(ctx context.Context, items []EvaluationItem) ([]Verdict, error)

	// GenerateSWOT produces the SWOT companion report for the same items.
	GenerateSWOT(ctx context.Context, items []EvaluationItem) (*SwotReport, error)

	// Forward relays a raw payload to one of the oracle endpoints and
	// returns the response status and body verbatim.
	Forward(ctx context.Context, endpoint string, body []byte) (int, []byte, error)
}

// Endpoints exposed by the oracle, all sub-paths of one configured origin.
const (
	EndpointEvaluate = "evaluate"
	EndpointSWOT     = "swot"
	EndpointGenerate = "generate"
	EndpointReview   = "review"
)

var forwardable = map[string]bool{
	EndpointEvaluate: true,
	EndpointSWOT:     true,
	EndpointGenerate: true,
	EndpointReview:   true,
}

type httpClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient builds an oracle client against the configured base URL with
// a bounded per-call timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (Client, error) {
	if baseURL == "" {
		return nil, errors.New("missing oracle API configuration")
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

type evaluateRequest struct {
	Items []EvaluationItem `json:"items"`
}

type evaluateResponse struct {
	Results []Verdict `json:"results"`
}

func (c *httpClient) Evaluate(ctx context.Context, items []EvaluationItem) ([]Verdict, error) {
	var resp evaluateResponse
	if err := c.post(ctx, EndpointEvaluate, evaluateRequest{Items: items}, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("Oracle evaluation completed", "items", len(items), "results", len(resp.Results))
	return resp.Results, nil
}

func (c *httpClient) GenerateSWOT(ctx context.Context, items []EvaluationItem) (*SwotReport, error) {
	var report SwotReport
	if err := c.post(ctx, EndpointSWOT, evaluateRequest{Items: items}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *httpClient) Forward(ctx context.Context, endpoint string, body []byte) (int, []byte, error) {
	if !forwardable[endpoint] {
		return 0, nil, fmt.Errorf("unknown oracle endpoint %q", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res.StatusCode, payload, nil
}

func (c *httpClient) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode oracle request: %w", err)
	}

	status, payload, err := c.Forward(ctx, endpoint, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		c.logger.Warn("Oracle rejected request", "endpoint", endpoint, "status", status)
		return &RejectedError{StatusCode: status, Payload: payload}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode oracle response from %s: %w", endpoint, err)
	}
	return nil
}

// IsUnavailable reports whether err represents an unreachable oracle.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRejected reports whether err represents an oracle failure status.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
