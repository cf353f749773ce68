package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"leadscout/internal/dataprocessing"
	"leadscout/internal/directory"
	"leadscout/internal/services"
	"leadscout/pkg/contracts/domain"
)

var testProfiles = []domain.CompanyProfile{
	{Name: "TechNova", CountryCode: "US", Sphere: "Software", CompanySize: "51-200", Employees: 120, Followers: 5000},
	{Name: "GreenGrid", CountryCode: "US", Sphere: "Energy", CompanySize: "201-500", Employees: 300, Followers: 150},
}

func TestDirectoryHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setupMock  func(*MockDirectoryService)
		wantStatus int
		check      func(*testing.T, map[string]any)
	}{
		{
			name: "dashboard",
			path: "/dashboard",
			setupMock: func(m *MockDirectoryService) {
				m.On("Dashboard", mock.Anything).Return(directory.Dashboard{TotalCompanies: 2, MostCommonSize: "51-200"})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(2), body["total_companies"])
			},
		},
		{
			name: "search by sphere",
			path: "/search?by=sphere&q=energy",
			setupMock: func(m *MockDirectoryService) {
				m.On("Search", mock.Anything, "sphere", "energy").Return(testProfiles[1:], nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "energy", body["query"])
				assert.Equal(t, float64(1), body["count"])
			},
		},
		{
			name: "search by unknown field",
			path: "/search?by=ceo&q=x",
			setupMock: func(m *MockDirectoryService) {
				m.On("Search", mock.Anything, "ceo", "x").Return(nil, fmt.Errorf("%w: unknown search field", services.ErrInvalidInput))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "leads with repeated and comma separated values",
			path: "/leads?size=51-200,201-500&country=us&country=de&min_employees=100",
			setupMock: func(m *MockDirectoryService) {
				m.On("Leads", mock.Anything, directory.LeadFilter{
					Sizes:        []string{"51-200", "201-500"},
					Countries:    []string{"us", "de"},
					MinEmployees: 100,
				}).Return(testProfiles)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(2), body["count"])
				assert.Equal(t, float64(100), body["filter"].(map[string]any)["min_employees"])
			},
		},
		{
			name:       "negative minimum",
			path:       "/leads?min_followers=-1",
			setupMock:  func(*MockDirectoryService) {},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, fmt.Sprint(body["details"]), "min_followers")
			},
		},
		{
			name:       "minimum not a number",
			path:       "/leads?min_employees=many",
			setupMock:  func(*MockDirectoryService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "company",
			path: "/TechNova",
			setupMock: func(m *MockDirectoryService) {
				m.On("Company", mock.Anything, "TechNova").Return(testProfiles[0], nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "US", body["country_code"])
			},
		},
		{
			name: "company not found",
			path: "/Nobody",
			setupMock: func(m *MockDirectoryService) {
				m.On("Company", mock.Anything, "Nobody").Return(domain.CompanyProfile{}, fmt.Errorf("%w: %q", services.ErrCompanyNotFound, "Nobody"))
			},
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "/errors/leads/company-not-found", body["type"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDirectoryService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			NewDirectoryHandler(svc, testLogger(), testErrorHandler()).Routes().
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decodeBody(t, rec))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDirectoryHandler_Export(t *testing.T) {
	svc := new(MockDirectoryService)
	svc.On("Export", mock.Anything, directory.LeadFilter{Countries: []string{"US"}}, dataprocessing.FormatCSV, []string{"name", "employees"}).
		Return(nil, "\ufeffname,employees\nTechNova,120\n")

	rec := httptest.NewRecorder()
	NewDirectoryHandler(svc, testLogger(), testErrorHandler()).Routes().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?country=US&columns=name,employees", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "company_leads_")
	assert.Equal(t, "\ufeffname,employees\nTechNova,120\n", rec.Body.String())
	svc.AssertExpectations(t)
}
