package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

const (
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultExcelFilename = "Salesforce_Report.xlsx"
	maxErrorBody         = 4 << 10
)

var (
	ErrUnauthorized = errors.New("salesforce: unauthorized")
	ErrNotFound     = errors.New("salesforce: not found")
)

// APIError is any non-2xx answer from the instance.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("salesforce: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

type AnalyticsClient interface {
	ListReports(ctx context.Context) ([]store.ReportListItem, error)
	ListReportTypes(ctx context.Context) (json.RawMessage, error)
	DescribeReport(ctx context.Context, id string) (json.RawMessage, error)
	RunReport(ctx context.Context, id string) (json.RawMessage, error)
	DownloadReportExcel(ctx context.Context, id string) (*store.File, error)

	ListDashboards(ctx context.Context) ([]store.DashboardListItem, error)
	GetDashboardResults(ctx context.Context, id string) (json.RawMessage, error)
	DescribeDashboard(ctx context.Context, id string) (json.RawMessage, error)
	DownloadDashboardPNG(ctx context.Context, id string) (*store.File, error)
}

type Config struct {
	InstanceURL string
	AccessToken string
	APIVersion  string
}

func ConfigFromProfile(p domain.Profile) Config {
	return Config{InstanceURL: p.InstanceURL, AccessToken: p.AccessToken, APIVersion: p.APIVersion}
}

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	version string
}

func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.InstanceURL == "" {
		return nil, fmt.Errorf("instance url is empty")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is empty")
	}
	if _, err := url.Parse(cfg.InstanceURL); err != nil {
		return nil, fmt.Errorf("invalid instance url: %w", err)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = domain.DefaultAPIVersion
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.InstanceURL, "/"),
		token:   cfg.AccessToken,
		version: cfg.APIVersion,
	}, nil
}

func (c *Client) analyticsURL(path string) string {
	return fmt.Sprintf("%s/services/data/v%s/analytics/%s", c.baseURL, c.version, path)
}

func (c *Client) ListReports(ctx context.Context) ([]store.ReportListItem, error) {
	var reports []store.ReportListItem
	if err := c.getJSON(ctx, c.analyticsURL("reports"), &reports); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (c *Client) ListReportTypes(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, c.analyticsURL("reportTypes"))
	if err != nil {
		return nil, fmt.Errorf("failed to list report types: %w", err)
	}
	return raw, nil
}

func (c *Client) DescribeReport(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, c.analyticsURL("reports/"+url.PathEscape(id)+"/describe"))
	if err != nil {
		return nil, fmt.Errorf("failed to describe report %s: %w", id, err)
	}
	return raw, nil
}

// RunReport runs the report synchronously with detail rows included.
func (c *Client) RunReport(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, c.analyticsURL("reports/"+url.PathEscape(id)+"?includeDetails=true"))
	if err != nil {
		return nil, fmt.Errorf("failed to run report %s: %w", id, err)
	}
	return raw, nil
}

func (c *Client) DownloadReportExcel(ctx context.Context, id string) (*store.File, error) {
	resp, err := c.do(ctx, c.analyticsURL("reports/"+url.PathEscape(id)), xlsxContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to download report %s: %w", id, err)
	}

	return &store.File{
		Name:        filenameFrom(resp.header, defaultExcelFilename),
		ContentType: xlsxContentType,
		Content:     resp.body,
	}, nil
}

func (c *Client) ListDashboards(ctx context.Context) ([]store.DashboardListItem, error) {
	var dashboards []store.DashboardListItem
	if err := c.getJSON(ctx, c.analyticsURL("dashboards"), &dashboards); err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	return dashboards, nil
}

func (c *Client) GetDashboardResults(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, c.analyticsURL("dashboards/"+url.PathEscape(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard %s results: %w", id, err)
	}
	return raw, nil
}

func (c *Client) DescribeDashboard(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, c.analyticsURL("dashboards/"+url.PathEscape(id)+"/describe"))
	if err != nil {
		return nil, fmt.Errorf("failed to describe dashboard %s: %w", id, err)
	}
	return raw, nil
}

// DownloadDashboardPNG uses the Lightning download endpoint, which lives
// outside the versioned REST root.
func (c *Client) DownloadDashboardPNG(ctx context.Context, id string) (*store.File, error) {
	target := fmt.Sprintf("%s/analytics/download/lightning-dashboard/%s.png", c.baseURL, url.PathEscape(id))
	resp, err := c.do(ctx, target, "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to download dashboard %s: %w", id, err)
	}

	return &store.File{
		Name:        fmt.Sprintf("dashboard_%s.png", id),
		ContentType: "image/png",
		Content:     resp.body,
	}, nil
}

type response struct {
	header http.Header
	body   []byte
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	raw, err := c.getRaw(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, target string) (json.RawMessage, error) {
	resp, err := c.do(ctx, target, "application/json")
	if err != nil {
		return nil, err
	}
	if !json.Valid(resp.body) {
		return nil, fmt.Errorf("response is not valid json")
	}
	return resp.body, nil
}

func (c *Client) do(ctx context.Context, target, accept string) (*response, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create salesforce http request")
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)

	logger.Debug().Str("url", target).Msg("salesforce request")
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("url", target).Msg("salesforce request failed")
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		logger.Warn().Int("status", resp.StatusCode).Str("url", target).Msg("salesforce returned an error")
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read salesforce response")
		return nil, err
	}

	return &response{header: resp.Header, body: body}, nil
}

// filenameFrom reads the filename parameter of Content-Disposition.
func filenameFrom(h http.Header, fallback string) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return fallback
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if i := strings.LastIndex(cd, "filename="); i >= 0 {
		if name := strings.Trim(cd[i+len("filename="):], `"; `); name != "" {
			return name
		}
	}
	return fallback
}
