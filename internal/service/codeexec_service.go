package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

// ExecuteRequest is the payload forwarded to the sandbox service.
type ExecuteRequest struct {
	Language string `json:"language" validate:"required"`
	Source   string `json:"source" validate:"required"`
	Stdin    string `json:"stdin"`
}

// ExecuteResult is the sandbox verdict returned to the client.
type ExecuteResult struct {
	Stdout   string  `json:"stdout"`
	Stderr   string  `json:"stderr"`
	ExitCode int     `json:"exit_code"`
	TimeMs   float64 `json:"time_ms"`
}

// CodeExecService proxies code execution requests to the external sandbox.
// The sandbox owns all isolation; this service only forwards and maps errors.
type CodeExecService struct {
	baseURL   string
	client    *http.Client
	enabled   bool
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCodeExecService constructs the proxy.
func NewCodeExecService(baseURL string, timeout time.Duration, enabled bool, validate *validator.Validate, logger *zap.Logger) *CodeExecService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeExecService{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
		enabled:   enabled,
		validator: validate,
		logger:    logger,
	}
}

// Execute forwards the submission and returns the sandbox verdict.
func (s *CodeExecService) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "code execution is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid execution payload")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode execution payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Warn("code execution upstream unreachable", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "execution service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("code execution upstream rejected request", zap.Int("status", resp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("execution service returned status %d", resp.StatusCode))
	}

	var result ExecuteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from execution service")
	}
	return &result, nil
}
