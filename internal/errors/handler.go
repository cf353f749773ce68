package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/exporter"
	"leadscout/internal/infrastructure"
	"leadscout/internal/leads"
	"leadscout/internal/sentiment"
	"leadscout/internal/services"
	"leadscout/internal/synthetic"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypeConflict         = "/errors/conflict"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
)

// Domain-specific error types
const (
	TypeInvalidCategory = "/errors/leads/invalid-category"
	TypeNoDataset       = "/errors/leads/no-dataset"
	TypeCompanyNotFound = "/errors/leads/company-not-found"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. A nil logger uses slog.Default.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := requestTraceID(r)
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", traceID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		infrastructure.RecordError(r.Context(), err)
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	if problem := recordProblem(err, path); problem != nil {
		return problem
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrNoDataset):
		return NewProblemDetails(http.StatusConflict, TypeNoDataset, "No Dataset",
			"No news dataset is loaded. Generate or upload one first.", path)

	case errors.Is(err, services.ErrCompanyNotFound):
		return NewProblemDetails(http.StatusNotFound, TypeCompanyNotFound, "Company Not Found", err.Error(), path)

	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return NewProblemDetails(http.StatusUnsupportedMediaType, TypeUnsupportedMedia, "Unsupported Media Type",
			err.Error(), path).WithExtension("supported", []string{".csv", ".xlsx"})

	case errors.As(err, &maxBytes):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large",
			"The request body exceeds the maximum allowed size", path).WithExtension("max_size", maxBytes.Limit)

	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, exporter.ErrUnknownColumn),
		errors.Is(err, synthetic.ErrInvalidCount),
		errors.Is(err, dataprocessing.ErrNoHeader):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", err.Error(), path)

	case errors.Is(err, sentiment.ErrUnavailable):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeServiceDown, "Service Unavailable",
			"The sentiment provider is unavailable. Try again later.", path)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, path)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", path)
}

// recordProblem maps scoring errors and carries the failing record location
func recordProblem(err error, path string) *ProblemDetails {
	var problem *ProblemDetails
	switch {
	case errors.Is(err, leads.ErrInvalidCategory):
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeInvalidCategory, "Invalid News Category", err.Error(), path)
	case errors.Is(err, leads.ErrMalformedRecord):
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation, "Malformed Record", err.Error(), path)
	default:
		return nil
	}

	var recErr *leads.RecordError
	if errors.As(err, &recErr) {
		problem.WithExtension("index", recErr.Index)
		if recErr.Row > 0 {
			problem.WithExtension("row", recErr.Row)
		}
		if recErr.Field != "" {
			problem.WithExtension("field", recErr.Field)
		}
		if recErr.Value != "" {
			problem.WithExtension("value", recErr.Value)
		}
	}
	return problem
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeNoDataset:
		problemType = TypeNoDataset
	case CodeUnsupportedFormat:
		problemType = TypeUnsupportedMedia
	case CodePayloadTooLarge:
		problemType = TypePayloadTooLarge
	case CodeRateLimitExceeded:
		problemType = TypeRateLimit
	case CodeServiceUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func appErrorToProblem(appErr *AppError, path string) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeValidation, ErrTypeParsing:
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", appErr.Message, path)
	case ErrTypeNotFound:
		problem = NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", appErr.Message, path)
	case ErrTypeUpstream:
		problem = NewProblemDetails(http.StatusServiceUnavailable, TypeServiceDown, "Service Unavailable", appErr.Message, path)
	default:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", path)
	}
	return problem.WithExtension("error_type", string(appErr.Type))
}

// HandlePanic answers a recovered panic with a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	traceID := requestTraceID(r)

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", requestTraceID(r))

	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", requestTraceID(r))

	_ = render.Render(w, r, problem)
}

// JSON helper for consistent JSON responses
func (h *ErrorHandler) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func requestTraceID(r *http.Request) string {
	if id := infrastructure.GetTraceID(r.Context()); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

// getStackTrace returns the current goroutine stack
func getStackTrace() string {
	buf := make([]byte, 8*1024)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
