package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, profile string) ([]store.DashboardListItem, error) {
	args := m.Called(ctx, profile)
	items, _ := args.Get(0).([]store.DashboardListItem)
	return items, args.Error(1)
}

func (m *mockService) Bundle(ctx context.Context, profile, id string) (*domain.DashboardBundle, error) {
	args := m.Called(ctx, profile, id)
	b, _ := args.Get(0).(*domain.DashboardBundle)
	return b, args.Error(1)
}

func (m *mockService) PNG(ctx context.Context, profile, id string) (*store.File, error) {
	args := m.Called(ctx, profile, id)
	f, _ := args.Get(0).(*store.File)
	return f, args.Error(1)
}

func setupRouter(svc *mockService) *chi.Mux {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/profiles/{profile}/dashboards", h.ListDashboards)
	r.Get("/profiles/{profile}/dashboards/{id}", h.GetDashboard)
	r.Get("/profiles/{profile}/dashboards/{id}/png", h.GetDashboardPNG)
	return r
}

func TestListDashboards(t *testing.T) {
	svc := new(mockService)
	svc.On("List", mock.Anything, "prod").Return([]store.DashboardListItem{{ID: "01Z1", Name: "Sales"}}, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/prod/dashboards", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []api.DashboardListItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []api.DashboardListItem{{ID: "01Z1", Name: "Sales"}}, body)
}

func TestGetDashboard(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*mockService)
		expectedStatus int
	}{
		{
			name: "bundle",
			setupMock: func(m *mockService) {
				m.On("Bundle", mock.Anything, "prod", "01Z1").Return(&domain.DashboardBundle{
					ID: "01Z1", Results: json.RawMessage(`{"componentData":[]}`), Metadata: json.RawMessage(`{}`),
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized",
			setupMock: func(m *mockService) {
				m.On("Bundle", mock.Anything, "prod", "01Z1").Return(nil, &client.APIError{StatusCode: 401})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "upstream error",
			setupMock: func(m *mockService) {
				m.On("Bundle", mock.Anything, "prod", "01Z1").Return(nil, &client.APIError{StatusCode: 500})
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/prod/dashboards/01Z1", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestGetDashboardPNG(t *testing.T) {
	svc := new(mockService)
	svc.On("PNG", mock.Anything, "prod", "01Z1").Return(&store.File{
		Name: "dashboard_01Z1.png", ContentType: "image/png", Content: []byte("\x89PNG"),
	}, nil)

	rec := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/prod/dashboards/01Z1/png", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dashboard_01Z1.png")
	assert.Equal(t, "\x89PNG", rec.Body.String())
}
