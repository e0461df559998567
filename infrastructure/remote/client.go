// Package remote implements the bank store protocol over HTTP for clients
// that do not own the storage, such as the CLI.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// Config holds the client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
	// BreakerFailures is the number of consecutive server failures that opens the breaker
	BreakerFailures uint32
	// BreakerOpenDelay is how long the breaker stays open before probing again
	BreakerOpenDelay time.Duration
}

// Client is a ports.BankStore backed by the REST API. Every failure comes
// back as a RemoteFailure whose cause carries the server's error type.
// Nothing is retried here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	metrics    *observability.Metrics
}

var _ ports.BankStore = (*Client)(nil)

// NewClient creates a new client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bank-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// client errors say nothing about the server's health
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			appErr := pkgerrors.GetAppError(err)
			return appErr != nil && appErr.HTTPStatus > 0 && appErr.HTTPStatus < http.StatusInternalServerError
		},
	})
	return c
}

// Forest implements ports.BankReader
func (c *Client) Forest(ctx context.Context, scope ports.ForestScope) ([]hierarchy.RawBank, error) {
	query := url.Values{}
	if scope.OwnerID != "" {
		query.Set("owner", scope.OwnerID)
	}
	if scope.ExamID != "" {
		query.Set("exam", scope.ExamID)
	}

	var forest []hierarchy.RawBank
	err := c.do(ctx, "forest", http.MethodGet, "/banks", query, nil, &forest)
	return forest, err
}

// Hierarchy implements ports.BankReader
func (c *Client) Hierarchy(ctx context.Context, id valueobjects.BankID) (hierarchy.RawBank, error) {
	var bank hierarchy.RawBank
	err := c.do(ctx, "hierarchy", http.MethodGet, segments("banks", id), nil, nil, &bank)
	return bank, err
}

type createBody struct {
	Path  []string `json:"path,omitempty"`
	Name  string   `json:"name"`
	Exams []string `json:"exams,omitempty"`
	Owner string   `json:"owner,omitempty"`
}

type renameBody struct {
	Path []string `json:"path,omitempty"`
	Name string   `json:"name"`
}

// CreateTopLevel implements ports.BankWriter
func (c *Client) CreateTopLevel(ctx context.Context, ownerID string, bank ports.NewBank) (hierarchy.RawBank, error) {
	var created hierarchy.RawBank
	body := createBody{Name: bank.Name, Exams: bank.ExamIDs, Owner: ownerID}
	err := c.do(ctx, "create_top_level", http.MethodPost, "/banks", nil, body, &created)
	return created, err
}

// CreateChild implements ports.BankWriter
func (c *Client) CreateChild(ctx context.Context, parentID valueobjects.BankID, bank ports.NewBank) (hierarchy.RawBank, error) {
	var created hierarchy.RawBank
	body := createBody{Name: bank.Name, Exams: bank.ExamIDs}
	err := c.do(ctx, "create_child", http.MethodPost, segments("banks", parentID, "children"), nil, body, &created)
	return created, err
}

// CreateNested implements ports.BankWriter
func (c *Client) CreateNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, bank ports.NewBank) (hierarchy.RawBank, error) {
	var created hierarchy.RawBank
	body := createBody{Path: pathStrings(path), Name: bank.Name, Exams: bank.ExamIDs}
	err := c.do(ctx, "create_nested", http.MethodPost, segments("banks", rootID, "nested"), nil, body, &created)
	return created, err
}

// RenameTopLevel implements ports.BankWriter
func (c *Client) RenameTopLevel(ctx context.Context, id valueobjects.BankID, name string) error {
	return c.do(ctx, "rename_top_level", http.MethodPut, segments("banks", id), nil, renameBody{Name: name}, nil)
}

// RenameChild implements ports.BankWriter
func (c *Client) RenameChild(ctx context.Context, parentID, id valueobjects.BankID, name string) error {
	return c.do(ctx, "rename_child", http.MethodPut, segments("banks", parentID, "children", id), nil, renameBody{Name: name}, nil)
}

// RenameNested implements ports.BankWriter
func (c *Client) RenameNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID, name string) error {
	body := renameBody{Path: pathStrings(path), Name: name}
	return c.do(ctx, "rename_nested", http.MethodPut, segments("banks", rootID, "nested", id), nil, body, nil)
}

// DeleteTopLevel implements ports.BankWriter
func (c *Client) DeleteTopLevel(ctx context.Context, id valueobjects.BankID) error {
	return c.do(ctx, "delete_top_level", http.MethodDelete, segments("banks", id), nil, nil, nil)
}

// DeleteChild implements ports.BankWriter
func (c *Client) DeleteChild(ctx context.Context, parentID, id valueobjects.BankID) error {
	return c.do(ctx, "delete_child", http.MethodDelete, segments("banks", parentID, "children", id), nil, nil, nil)
}

// DeleteNested implements ports.BankWriter
func (c *Client) DeleteNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID) error {
	query := url.Values{"path": {path.String()}}
	return c.do(ctx, "delete_nested", http.MethodDelete, segments("banks", rootID, "nested", id), query, nil, nil)
}

// do sends one request through the breaker and decodes the reply into out
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, query, body, out)
	})
	c.metrics.ObserveRemoteCall(operation, start, err)

	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = pkgerrors.NewUnavailableError("bank store").WithCause(err)
	}

	c.logger.Warn("Bank store call failed",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return pkgerrors.NewRemoteFailureError(operation, err)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.NewInternalError("encode request body").WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.NewInternalError("build request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.NewInternalError("decode response body").WithCause(err)
	}
	return nil
}

// decodeError turns an error reply into an AppError carrying the server's type
func decodeError(resp *http.Response) error {
	var body pkgerrors.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return pkgerrors.FromStatus(resp.StatusCode, "", message)
	}
	appErr := pkgerrors.FromStatus(resp.StatusCode, body.Type, body.Message)
	if len(body.Details) > 0 {
		appErr.WithDetails(body.Details)
	}
	return appErr
}

func segments(parts ...interface{}) string {
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(fmt.Sprint(part)))
	}
	return sb.String()
}

func pathStrings(path valueobjects.BankPath) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = id.String()
	}
	return out
}
