package mocks

import (
	"context"
	"encoding/json"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/stretchr/testify/mock"
)

var _ client.AnalyticsClient = (*AnalyticsClient)(nil)

type AnalyticsClient struct {
	mock.Mock
}

func (m *AnalyticsClient) raw(args mock.Arguments) (json.RawMessage, error) {
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *AnalyticsClient) file(args mock.Arguments) (*store.File, error) {
	f, _ := args.Get(0).(*store.File)
	return f, args.Error(1)
}

func (m *AnalyticsClient) ListReports(ctx context.Context) ([]store.ReportListItem, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]store.ReportListItem)
	return reports, args.Error(1)
}

func (m *AnalyticsClient) ListReportTypes(ctx context.Context) (json.RawMessage, error) {
	return m.raw(m.Called(ctx))
}

func (m *AnalyticsClient) DescribeReport(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *AnalyticsClient) RunReport(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *AnalyticsClient) DownloadReportExcel(ctx context.Context, id string) (*store.File, error) {
	return m.file(m.Called(ctx, id))
}

func (m *AnalyticsClient) ListDashboards(ctx context.Context) ([]store.DashboardListItem, error) {
	args := m.Called(ctx)
	dashboards, _ := args.Get(0).([]store.DashboardListItem)
	return dashboards, args.Error(1)
}

func (m *AnalyticsClient) GetDashboardResults(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *AnalyticsClient) DescribeDashboard(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *AnalyticsClient) DownloadDashboardPNG(ctx context.Context, id string) (*store.File, error) {
	return m.file(m.Called(ctx, id))
}

// Provider hands out the same client for every profile it was told about.
type Provider struct {
	mock.Mock
}

func (p *Provider) GetClient(ctx context.Context, profile string) (client.AnalyticsClient, error) {
	args := p.Called(ctx, profile)
	c, _ := args.Get(0).(client.AnalyticsClient)
	return c, args.Error(1)
}
