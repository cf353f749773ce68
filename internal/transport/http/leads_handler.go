package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"leadscout/internal/dataprocessing"
	apierrors "leadscout/internal/errors"
	"leadscout/internal/exporter"
	"leadscout/internal/middleware"
	"leadscout/internal/services"
)

// DefaultUploadLimit caps multipart dataset uploads when no limit is configured
const DefaultUploadLimit = 32 << 20

// LeadsHandler handles dataset and scoring requests
type LeadsHandler struct {
	service      LeadService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	uploadLimit  int64
	logger       *slog.Logger
}

// NewLeadsHandler creates a new leads handler. A non-positive uploadLimit
// means DefaultUploadLimit.
func NewLeadsHandler(service LeadService, uploadLimit int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LeadsHandler {
	if uploadLimit <= 0 {
		uploadLimit = DefaultUploadLimit
	}
	return &LeadsHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		uploadLimit:  uploadLimit,
		logger:       logger.With(slog.String("handler", "leads")),
	}
}

// Routes returns the leads routes
func (h *LeadsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/dataset/generate", h.Generate)
		r.Post("/dataset/upload", h.Upload)
		r.Get("/dataset", h.Dataset)
		r.Get("/records", h.Records)
		r.Get("/companies", h.Companies)
		r.Get("/companies/{company}/news", h.CompanyNews)
		r.Get("/top", h.Top)
		r.Get("/summary", h.Summary)
		r.Post("/score", h.Score)
	})

	r.Get("/export", h.Export)

	return r
}

// Generate handles POST /api/leads/dataset/generate
func (h *LeadsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.Generate(r.Context(), req.Count, req.Seed)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"status":  "success",
		"dataset": info,
	})
}

// Upload handles POST /api/leads/dataset/upload with a multipart "file" part
func (h *LeadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "Dataset upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	info, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"status":  "success",
		"dataset": info,
	})
}

func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return apierrors.PayloadTooLarge(maxBytes.Limit)
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.ErrValidation("file", "file is required")
	}
	return apierrors.InvalidRequestWithError(err)
}

// Dataset handles GET /api/leads/dataset
func (h *LeadsHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Records handles GET /api/leads/records
func (h *LeadsHandler) Records(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// Companies handles GET /api/leads/companies
func (h *LeadsHandler) Companies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.Companies(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   companies,
		"count":  len(companies),
	})
}

// CompanyNews handles GET /api/leads/companies/{company}/news
func (h *LeadsHandler) CompanyNews(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	if company == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("company", "company is required"))
		return
	}

	news, err := h.service.CompanyNews(r.Context(), company)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":  "success",
		"company": company,
		"data":    news,
		"count":   len(news),
	})
}

// Top handles GET /api/leads/top?n=5
func (h *LeadsHandler) Top(w http.ResponseWriter, r *http.Request) {
	n, ok := h.query.ValidateInt(w, r, "n", 0, MaxTopN, services.DefaultTopN)
	if !ok {
		return
	}

	top, err := h.service.Top(r.Context(), n)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   top,
		"count":  len(top),
	})
}

// Summary handles GET /api/leads/summary
func (h *LeadsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Score handles POST /api/leads/score. The served dataset is not touched.
func (h *LeadsHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Score(r.Context(), req.Records, req.Config.Policy(), req.TopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, ScoreResponse{
		Records:   analysis.Records,
		Companies: analysis.Companies,
		Top:       analysis.TopHeadlines,
		Summary:   analysis.Summary,
		Config:    analysis.Config,
	})
}

// Export handles GET /api/leads/export?view=records|companies&format=csv|xlsx&columns=a,b
func (h *LeadsHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, ok := h.query.ValidateEnum(w, r, "view", []string{services.ViewRecords, services.ViewCompanies}, services.ViewRecords)
	if !ok {
		return
	}
	format, ok := exportFormat(h.query, w, r)
	if !ok {
		return
	}
	columns := exporter.ParseColumns(r.URL.Query().Get("columns"))

	// buffer so a failed export still gets a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, view, format, columns); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, format, fmt.Sprintf("leads_%s", view), buf.Bytes())
}

func exportFormat(q *middleware.QueryParamValidator, w http.ResponseWriter, r *http.Request) (dataprocessing.Format, bool) {
	value, ok := q.ValidateEnum(w, r, "format",
		[]string{string(dataprocessing.FormatCSV), string(dataprocessing.FormatXLSX)},
		string(dataprocessing.FormatCSV))
	return dataprocessing.Format(value), ok
}

func writeAttachment(w http.ResponseWriter, format dataprocessing.Format, base string, body []byte) {
	name := fmt.Sprintf("%s_%s.%s", base, time.Now().UTC().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
