package account

import (
	"context"
	"net/http"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/store/client"
)

// Explorer resolves configured Salesforce orgs into API clients.
type Explorer interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	GetClient(ctx context.Context, profile string) (client.AnalyticsClient, error)
}

type accountExplorer struct {
	registry   config.Registry
	httpClient *http.Client
}

func NewExplorer(registry config.Registry, httpClient *http.Client) Explorer {
	return &accountExplorer{registry: registry, httpClient: httpClient}
}

func (a *accountExplorer) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	names, err := a.registry.GetProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var profiles []domain.Profile
	for _, name := range names {
		p, err := a.registry.GetProfile(ctx, name)
		if err != nil {
			return nil, err
		}
		p.AccessToken = ""
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (a *accountExplorer) GetClient(ctx context.Context, profile string) (client.AnalyticsClient, error) {
	p, err := a.registry.GetProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	return client.New(client.ConfigFromProfile(p), a.httpClient)
}
