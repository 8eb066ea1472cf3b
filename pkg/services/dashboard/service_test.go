package dashboard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/de-tools/report-atlas/pkg/store/client/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setup() (*Service, *mocks.AnalyticsClient) {
	provider := new(mocks.Provider)
	ac := new(mocks.AnalyticsClient)
	provider.On("GetClient", mock.Anything, "prod").Return(ac, nil)
	return NewService(provider), ac
}

func TestService_Bundle(t *testing.T) {
	svc, ac := setup()
	ac.On("GetDashboardResults", mock.Anything, "01Z1").Return(json.RawMessage(`{"componentData": []}`), nil)
	ac.On("DescribeDashboard", mock.Anything, "01Z1").Return(json.RawMessage(`{"components": []}`), nil)

	bundle, err := svc.Bundle(context.Background(), "prod", "01Z1")

	require.NoError(t, err)
	assert.Equal(t, "01Z1", bundle.ID)
	assert.JSONEq(t, `{"componentData": []}`, string(bundle.Results))
	assert.JSONEq(t, `{"components": []}`, string(bundle.Metadata))
	ac.AssertExpectations(t)
}

func TestService_BundleError(t *testing.T) {
	svc, ac := setup()
	ac.On("GetDashboardResults", mock.Anything, "01Z9").Return(nil, &client.APIError{StatusCode: 404})
	ac.On("DescribeDashboard", mock.Anything, "01Z9").Return(json.RawMessage(`{}`), nil).Maybe()

	_, err := svc.Bundle(context.Background(), "prod", "01Z9")

	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestService_PassThroughs(t *testing.T) {
	svc, ac := setup()
	ctx := context.Background()
	ac.On("ListDashboards", mock.Anything).Return([]store.DashboardListItem{{ID: "01Z1", Name: "Sales"}}, nil)
	ac.On("GetDashboardResults", mock.Anything, "01Z1").Return(json.RawMessage(`{"a": 1}`), nil)
	ac.On("DescribeDashboard", mock.Anything, "01Z1").Return(json.RawMessage(`{"b": 2}`), nil)
	ac.On("DownloadDashboardPNG", mock.Anything, "01Z1").Return(&store.File{Name: "dashboard_01Z1.png"}, nil)

	dashboards, err := svc.List(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, "Sales", dashboards[0].Name)

	results, err := svc.Results(ctx, "prod", "01Z1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(results))

	meta, err := svc.Describe(ctx, "prod", "01Z1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"b": 2}`, string(meta))

	png, err := svc.PNG(ctx, "prod", "01Z1")
	require.NoError(t, err)
	assert.Equal(t, "dashboard_01Z1.png", png.Name)
}
