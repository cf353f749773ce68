package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "leadscout/internal/errors"
)

// DefaultMaxBodySize bounds JSON request bodies
const DefaultMaxBodySize = 10 << 20

// Validator validates request DTOs using struct tags
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a validator reporting JSON field names
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("dataset_file", isDatasetFile)
	_ = v.RegisterValidation("date", isDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "validation")),
	}
}

// Struct validates v and returns an APIError listing every rejected field
func (m *Validator) Struct(v any) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// DecodeJSON decodes the request body into v and validates it. An empty body
// leaves v untouched.
func (m *Validator) DecodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return apierrors.PayloadTooLarge(maxBytes.Limit)
		}
		m.logger.DebugContext(r.Context(), "rejected request body", slog.String("error", err.Error()))
		return apierrors.InvalidRequestWithError(err)
	}
	return m.Struct(v)
}

// fieldPath drops the top level struct name from the namespace,
// keeping slice indexes: records[3].company
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "dataset_file":
		return fmt.Sprintf("%s must be a .csv or .xlsx file name", field)
	case "date":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// isDatasetFile accepts plain .csv and .xlsx file names
func isDatasetFile(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 255 || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// isDate accepts YYYY-MM-DD
func isDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, ch := range s {
		if i == 4 || i == 7 {
			continue
		}
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// ValidateJSONBody caps request bodies at maxBodySize and rejects malformed
// JSON before it reaches a handler. Other content types only get the cap.
func ValidateJSONBody(maxBodySize int64, errs *apierrors.ErrorHandler) func(next http.Handler) http.Handler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxBodySize {
				errs.HandleError(w, r, apierrors.PayloadTooLarge(maxBodySize))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if mediaType != "application/json" || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errs.HandleError(w, r, err)
				return
			}
			if len(body) > 0 && !json.Valid(body) {
				errs.HandleError(w, r, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest,
					"Request body contains invalid JSON"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeValidator ensures request bodies use one of contentTypes
func ContentTypeValidator(errs *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			// bodiless posts such as a default generate carry no content type
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errs.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				apierrors.CodeUnsupportedFormat,
				"Unsupported content type",
				map[string]any{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	errs *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(errs *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{errs: errs}
}

// ValidateInt parses an integer query parameter within [min, max]. On failure
// it writes the problem response and returns false.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		v.errs.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}
	if n < min || n > max {
		v.errs.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}
	return n, true
}

// ValidateEnum checks a query parameter against allowed values
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}

	v.errs.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}
