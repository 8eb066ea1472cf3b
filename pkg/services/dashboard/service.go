package dashboard

import (
	"context"
	"encoding/json"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"golang.org/x/sync/errgroup"
)

type ClientProvider interface {
	GetClient(ctx context.Context, profile string) (client.AnalyticsClient, error)
}

type Service struct {
	clients ClientProvider
}

func NewService(clients ClientProvider) *Service {
	return &Service{clients: clients}
}

func (s *Service) List(ctx context.Context, profile string) ([]store.DashboardListItem, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.ListDashboards(ctx)
}

func (s *Service) Results(ctx context.Context, profile, id string) (json.RawMessage, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.GetDashboardResults(ctx, id)
}

func (s *Service) Describe(ctx context.Context, profile, id string) (json.RawMessage, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.DescribeDashboard(ctx, id)
}

func (s *Service) PNG(ctx context.Context, profile, id string) (*store.File, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.DownloadDashboardPNG(ctx, id)
}

// Bundle fetches results and metadata of one dashboard side by side.
func (s *Service) Bundle(ctx context.Context, profile, id string) (*domain.DashboardBundle, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	bundle := &domain.DashboardBundle{ID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := c.GetDashboardResults(gctx, id)
		bundle.Results = raw
		return err
	})
	g.Go(func() error {
		raw, err := c.DescribeDashboard(gctx, id)
		bundle.Metadata = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}
