package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/services/factmap"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/snapshot"
	"github.com/rs/zerolog"
)

const UnknownReportName = "Unknown Report"

// ErrInvalidDocument is returned when a report document is not valid JSON
// or not shaped like a report.
var ErrInvalidDocument = errors.New("invalid report document")

type ClientProvider interface {
	GetClient(ctx context.Context, profile string) (client.AnalyticsClient, error)
}

type Options struct {
	CellField domain.CellField
	// NamedAggregates labels aggregates with reportMetadata.aggregates.
	NamedAggregates bool
	// Cached serves the last stored snapshot when there is one.
	Cached bool
}

type Service struct {
	clients   ClientProvider
	snapshots snapshot.Store
}

// NewService wires the report operations. snapshots may be nil, which turns
// caching off.
func NewService(clients ClientProvider, snapshots snapshot.Store) *Service {
	return &Service{clients: clients, snapshots: snapshots}
}

func (s *Service) Run(ctx context.Context, profile, id string, opts Options) (*domain.ParsedReport, error) {
	raw, err := s.Raw(ctx, profile, id, opts.Cached)
	if err != nil {
		return nil, err
	}
	return parseLogged(ctx, raw, opts)
}

// Raw returns the run result document, from the snapshot cache when cached is
// set and a snapshot exists. Live results are written back to the cache.
func (s *Service) Raw(ctx context.Context, profile, id string, cached bool) (json.RawMessage, error) {
	logger := zerolog.Ctx(ctx)

	if cached && s.snapshots != nil {
		snap, err := s.snapshots.Get(ctx, profile, id)
		switch {
		case err == nil:
			logger.Debug().Str("report", id).Time("fetched_at", snap.FetchedAt).Msg("serving cached report")
			return snap.Payload, nil
		case !errors.Is(err, snapshot.ErrNotFound):
			logger.Warn().Err(err).Str("report", id).Msg("failed to read report snapshot")
		}
	}

	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	raw, err := c.RunReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		snap := store.ReportSnapshot{Profile: profile, ReportID: id, ReportName: reportName(raw), Payload: raw}
		if err := s.snapshots.Save(ctx, snap); err != nil {
			logger.Warn().Err(err).Str("report", id).Msg("failed to store report snapshot")
		}
	}
	return raw, nil
}

func (s *Service) ParseFile(ctx context.Context, r io.Reader, opts Options) (*domain.ParsedReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report document: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("bytes", len(raw)).Msg("parsing report document")
	return parseLogged(ctx, raw, opts)
}

func parseLogged(ctx context.Context, raw []byte, opts Options) (*domain.ParsedReport, error) {
	parsed, err := Parse(raw, opts)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)
	for _, issue := range parsed.Skipped {
		logger.Warn().Str("report", parsed.ID).Msg(issue)
	}
	return parsed, nil
}

func (s *Service) Describe(ctx context.Context, profile, id string) (json.RawMessage, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.DescribeReport(ctx, id)
}

func (s *Service) List(ctx context.Context, profile string) ([]store.ReportListItem, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.ListReports(ctx)
}

func (s *Service) Types(ctx context.Context, profile string) (json.RawMessage, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.ListReportTypes(ctx)
}

func (s *Service) Excel(ctx context.Context, profile, id string) (*store.File, error) {
	c, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, err
	}
	return c.DownloadReportExcel(ctx, id)
}

func (s *Service) Snapshots(ctx context.Context, profile string) ([]store.ReportSnapshot, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.List(ctx, profile)
}

// Parse decodes a report document and runs it through the fact map parser.
// Shape problems inside the fact map are not errors; only undecodable input is.
// Whatever was skipped along the way is listed in ParsedReport.Skipped.
func Parse(raw []byte, opts Options) (*domain.ParsedReport, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidDocument)
	}

	var doc store.ReportResponse
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return Build(&doc, opts), nil
}

func Build(doc *store.ReportResponse, opts Options) *domain.ParsedReport {
	meta := doc.ReportMetadata
	parseOpts := factmap.Options{CellField: opts.CellField}
	if opts.NamedAggregates {
		parseOpts.AggregateNames = meta.Aggregates
	}

	parsed := &domain.ParsedReport{
		ID:           firstNonEmpty(doc.Attributes.ReportID, meta.ID),
		Name:         firstNonEmpty(doc.Attributes.ReportName, meta.Name, UnknownReportName),
		ReportFormat: meta.ReportFormat,
		Result:       factmap.ParseReport(doc, parseOpts),
		Skipped:      doc.Issues,
	}
	if parsed.Result.Supported {
		parsed.Groups = factmap.Groups(doc.FactMap, meta.DetailColumns, parseOpts)
		parsed.Sections = factmap.SectionAggregates(doc.FactMap, parseOpts)
	}
	return parsed
}

func reportName(raw []byte) string {
	var doc struct {
		Attributes store.ReportAttributes `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return doc.Attributes.ReportName
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
