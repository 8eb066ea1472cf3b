package adapters

import (
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
)

func MapTableDomainToApi(t *domain.Table) *api.Table {
	if t == nil {
		return nil
	}
	res := &api.Table{
		Columns: t.Columns,
		Rows:    make([]map[string]any, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		res.Rows = append(res.Rows, map[string]any(row))
	}
	return res
}

func MapGroupDomainToApi(g domain.Group) api.Group {
	return api.Group{
		Name:       g.Name,
		Aggregates: g.Aggregates.Display(),
		Rows:       MapTableDomainToApi(g.Rows),
	}
}

func MapParsedReportDomainToApi(r *domain.ParsedReport) api.ParsedReport {
	res := api.ParsedReport{
		ID:        r.ID,
		Name:      r.Name,
		Format:    r.Result.Format.String(),
		Supported: r.Result.Supported,
		Status:    string(r.Result.Status),
		Detail:    MapTableDomainToApi(r.Result.Detail),
		Summary:   MapTableDomainToApi(r.Result.Summary),
		Sections:  MapTableDomainToApi(r.Sections),
		Skipped:   r.Skipped,
	}
	if !r.Result.Supported && r.ReportFormat != "" {
		res.Format = r.ReportFormat
	}
	for _, g := range r.Groups {
		res.Groups = append(res.Groups, MapGroupDomainToApi(g))
	}
	return res
}

func MapProfileDomainToApi(p domain.Profile) api.Profile {
	return api.Profile{
		Name:        p.Name,
		InstanceURL: p.InstanceURL,
		APIVersion:  p.APIVersion,
	}
}

func MapReportListStoreToApi(items []store.ReportListItem) []api.ReportListItem {
	res := make([]api.ReportListItem, 0, len(items))
	for _, item := range items {
		res = append(res, api.ReportListItem{ID: item.ID, Name: item.Name})
	}
	return res
}

func MapDashboardListStoreToApi(items []store.DashboardListItem) []api.DashboardListItem {
	res := make([]api.DashboardListItem, 0, len(items))
	for _, item := range items {
		res = append(res, api.DashboardListItem{ID: item.ID, Name: item.Name})
	}
	return res
}

func MapDashboardBundleDomainToApi(b *domain.DashboardBundle) api.DashboardBundle {
	return api.DashboardBundle{
		ID:       b.ID,
		Results:  b.Results,
		Metadata: b.Metadata,
	}
}
