package store

import "time"

// ReportListItem is one entry of GET /analytics/reports.
type ReportListItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	DescribeURL  string `json:"describeUrl"`
	InstancesURL string `json:"instancesUrl"`
}

// DashboardListItem is one entry of GET /analytics/dashboards.
type DashboardListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StatusURL string `json:"statusUrl"`
	URL       string `json:"url"`
}

// File is a binary download (xlsx export, dashboard png).
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// ReportSnapshot is the raw run result of a report as last fetched for a profile.
type ReportSnapshot struct {
	Profile    string
	ReportID   string
	ReportName string
	Payload    []byte
	FetchedAt  time.Time
}
