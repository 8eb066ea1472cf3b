package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{InstanceURL: srv.URL + "/", AccessToken: "token", APIVersion: "59.0"}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing instance", cfg: Config{AccessToken: "t"}},
		{name: "missing token", cfg: Config{InstanceURL: "https://example.my.salesforce.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			assert.Error(t, err)
		})
	}

	c, err := New(Config{InstanceURL: "https://example.my.salesforce.com", AccessToken: "t"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.my.salesforce.com/services/data/v60.0/analytics/reports", c.analyticsURL("reports"))
}

func TestClient_RunReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/data/v59.0/analytics/reports/00O1", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeDetails"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"factMap": {}}`))
	})

	raw, err := c.RunReport(context.Background(), "00O1")

	require.NoError(t, err)
	assert.JSONEq(t, `{"factMap": {}}`, string(raw))
}

func TestClient_ListReports(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/data/v59.0/analytics/reports", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": "00O1", "name": "Pipeline", "url": "/x"}, {"id": "00O2", "name": "Leads"}]`))
	})

	reports, err := c.ListReports(context.Background())

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Pipeline", reports[0].Name)
	assert.Equal(t, "00O2", reports[1].ID)
}

func TestClient_DashboardEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/services/data/v59.0/analytics/dashboards" {
			_, _ = w.Write([]byte(`[{"id": "01Z1", "name": "Sales"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	})
	ctx := context.Background()

	dashboards, err := c.ListDashboards(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sales", dashboards[0].Name)

	_, err = c.GetDashboardResults(ctx, "01Z1")
	require.NoError(t, err)
	_, err = c.DescribeDashboard(ctx, "01Z1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/services/data/v59.0/analytics/dashboards",
		"/services/data/v59.0/analytics/dashboards/01Z1",
		"/services/data/v59.0/analytics/dashboards/01Z1/describe",
	}, paths)
}

func TestClient_DownloadReportExcel(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		expected    string
	}{
		{name: "quoted filename", disposition: `attachment; filename="Pipeline.xlsx"`, expected: "Pipeline.xlsx"},
		{name: "bare filename", disposition: `attachment; filename=Leads.xlsx`, expected: "Leads.xlsx"},
		{name: "no header", disposition: "", expected: "Salesforce_Report.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, xlsxContentType, r.Header.Get("Accept"))
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				_, _ = w.Write([]byte("PK\x03\x04"))
			})

			file, err := c.DownloadReportExcel(context.Background(), "00O1")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, file.Name)
			assert.Equal(t, []byte("PK\x03\x04"), file.Content)
		})
	}
}

func TestClient_DownloadDashboardPNG(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/download/lightning-dashboard/01Z1.png", r.URL.Path)
		_, _ = w.Write([]byte("\x89PNG"))
	})

	file, err := c.DownloadDashboardPNG(context.Background(), "01Z1")

	require.NoError(t, err)
	assert.Equal(t, "dashboard_01Z1.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, target: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, target: ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `[{"errorCode": "X"}]`, tt.status)
			})

			_, err := c.DescribeReport(context.Background(), "00O1")

			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.Body, "errorCode")
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			} else {
				assert.False(t, errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized))
			}
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	})

	_, err := c.ListReportTypes(context.Background())

	assert.Error(t, err)
}
