package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

const commandTimeout = 2 * time.Minute

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, commandTimeout)
}

func NewReportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run, parse and export Salesforce reports",
	}

	cmd.AddCommand(newReportRunCmd(env))
	cmd.AddCommand(newReportParseCmd(env))
	cmd.AddCommand(newReportDescribeCmd(env))
	cmd.AddCommand(newReportListCmd(env))
	cmd.AddCommand(newReportTypesCmd(env))
	cmd.AddCommand(newReportExcelCmd(env))
	cmd.AddCommand(newReportExportCmd(env))
	cmd.AddCommand(newReportChartCmd(env))
	cmd.AddCommand(newReportSnapshotsCmd(env))

	return cmd
}

// parseFlags are shared by every command that turns a report into tables.
type parseFlags struct {
	field string
	named bool
	file  string
}

func (pf *parseFlags) register(cmd *cobra.Command, withFile bool) {
	cmd.Flags().StringVar(&pf.field, "field", "value", "Data cell field to display (value or label)")
	cmd.Flags().BoolVar(&pf.named, "named", false, "Label aggregates with the report metadata names")
	if withFile {
		cmd.Flags().StringVar(&pf.file, "file", "", "Read a saved report run document instead of calling the API")
	}
}

func (pf *parseFlags) options() (report.Options, error) {
	field, err := domain.ParseCellField(pf.field)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{CellField: field, NamedAggregates: pf.named}, nil
}

// load parses the report named by args[0], or the --file document when set.
func (pf *parseFlags) load(ctx context.Context, env *Env, args []string, cached bool) (*domain.ParsedReport, error) {
	opts, err := pf.options()
	if err != nil {
		return nil, err
	}
	opts.Cached = cached

	if pf.file != "" {
		return parseLocal(ctx, pf.file, opts)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a report id or --file is required")
	}

	svc, err := env.Reports(true)
	if err != nil {
		return nil, err
	}
	parsed, err := svc.Run(ctx, env.Profile(), args[0], opts)
	if err != nil {
		return nil, fmt.Errorf("failed to run report %s: %w", args[0], err)
	}
	return parsed, nil
}

func parseLocal(ctx context.Context, path string, opts report.Options) (*domain.ParsedReport, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report document: %w", err)
		}
		defer f.Close()
		r = f
	}
	return report.NewService(nil, nil).ParseFile(ctx, r, opts)
}

type reportRunCmd struct {
	env    *Env
	parse  parseFlags
	cached bool
	asJSON bool
}

func newReportRunCmd(env *Env) *cobra.Command {
	rc := &reportRunCmd{env: env}
	cmd := &cobra.Command{
		Use:   "run <report-id>",
		Short: "Run a report and print its tables",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}

	rc.parse.register(cmd, false)
	cmd.Flags().BoolVar(&rc.cached, "cached", false, "Use the last stored result when there is one")
	cmd.Flags().BoolVar(&rc.asJSON, "json", false, "Print the parsed report as JSON")

	return cmd
}

func (rc *reportRunCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd)
	defer cancel()

	parsed, err := rc.parse.load(ctx, rc.env, args, rc.cached)
	if err != nil {
		return err
	}
	return printReport(rc.env, parsed, rc.asJSON)
}

type reportParseCmd struct {
	env    *Env
	parse  parseFlags
	asJSON bool
}

func newReportParseCmd(env *Env) *cobra.Command {
	pc := &reportParseCmd{env: env}
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a saved report run document",
		Args:  cobra.ExactArgs(1),
		RunE:  pc.run,
	}

	pc.parse.register(cmd, false)
	cmd.Flags().BoolVar(&pc.asJSON, "json", false, "Print the parsed report as JSON")

	return cmd
}

func (pc *reportParseCmd) run(cmd *cobra.Command, args []string) error {
	opts, err := pc.parse.options()
	if err != nil {
		return err
	}
	parsed, err := parseLocal(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	return printReport(pc.env, parsed, pc.asJSON)
}

func printReport(env *Env, parsed *domain.ParsedReport, asJSON bool) error {
	if asJSON {
		return env.JSON.Value(adapters.MapParsedReportDomainToApi(parsed))
	}
	return env.Tables.Handle(parsed)
}

func newReportDescribeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <report-id>",
		Short: "Print report metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Reports(false)
			if err != nil {
				return err
			}
			raw, err := svc.Describe(ctx, env.Profile(), args[0])
			if err != nil {
				return err
			}
			return env.JSON.Raw(raw)
		},
	}
}

func newReportListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recently viewed reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Reports(false)
			if err != nil {
				return err
			}
			reports, err := svc.List(ctx, env.Profile())
			if err != nil {
				return err
			}
			return env.JSON.Value(adapters.MapReportListStoreToApi(reports))
		},
	}
}

func newReportTypesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List report types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Reports(false)
			if err != nil {
				return err
			}
			raw, err := svc.Types(ctx, env.Profile())
			if err != nil {
				return err
			}
			return env.JSON.Raw(raw)
		},
	}
}

type reportExcelCmd struct {
	env *Env
	out string
}

func newReportExcelCmd(env *Env) *cobra.Command {
	ec := &reportExcelCmd{env: env}
	cmd := &cobra.Command{
		Use:   "excel <report-id>",
		Short: "Download the report as Salesforce renders it to Excel",
		Args:  cobra.ExactArgs(1),
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.out, "out", ".", "Directory to write the workbook to")

	return cmd
}

func (ec *reportExcelCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd)
	defer cancel()

	svc, err := ec.env.Reports(false)
	if err != nil {
		return err
	}
	file, err := svc.Excel(ctx, ec.env.Profile(), args[0])
	if err != nil {
		return err
	}
	return ec.env.saveAndReport(ctx, file, ec.out, map[string]string{"report-id": args[0]})
}

type reportExportCmd struct {
	env   *Env
	parse parseFlags
	out   string
}

func newReportExportCmd(env *Env) *cobra.Command {
	xc := &reportExportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "export [report-id]",
		Short: "Write the parsed report tables to an xlsx workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE:  xc.run,
	}

	xc.parse.register(cmd, true)
	cmd.Flags().StringVar(&xc.out, "out", ".", "Directory to write the workbook to")

	return cmd
}

func (xc *reportExportCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd)
	defer cancel()

	parsed, err := xc.parse.load(ctx, xc.env, args, false)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, parsed); err != nil {
		return err
	}
	file := &store.File{
		Name:        fileName(parsed, ".xlsx"),
		ContentType: export.XLSXContentType,
		Content:     buf.Bytes(),
	}
	return xc.env.saveAndReport(ctx, file, xc.out, map[string]string{"report-name": parsed.Name})
}

type reportChartCmd struct {
	env   *Env
	parse parseFlags
	out   string
}

func newReportChartCmd(env *Env) *cobra.Command {
	cc := &reportChartCmd{env: env}
	cmd := &cobra.Command{
		Use:   "chart [report-id]",
		Short: "Render per-group aggregate totals as an HTML bar chart",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cc.run,
	}

	cc.parse.register(cmd, true)
	cmd.Flags().StringVar(&cc.out, "out", ".", "Directory to write the chart to")

	return cmd
}

func (cc *reportChartCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd)
	defer cancel()

	parsed, err := cc.parse.load(ctx, cc.env, args, false)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.RenderChart(&buf, parsed); err != nil {
		return err
	}
	file := &store.File{
		Name:        fileName(parsed, ".html"),
		ContentType: "text/html",
		Content:     buf.Bytes(),
	}
	return cc.env.saveAndReport(ctx, file, cc.out, map[string]string{"report-name": parsed.Name})
}

func newReportSnapshotsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List stored report results for the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Reports(true)
			if err != nil {
				return err
			}
			snapshots, err := svc.Snapshots(ctx, env.Profile())
			if err != nil {
				return err
			}

			type entry struct {
				ReportID   string    `json:"report_id"`
				ReportName string    `json:"report_name"`
				FetchedAt  time.Time `json:"fetched_at"`
			}
			entries := make([]entry, 0, len(snapshots))
			for _, s := range snapshots {
				entries = append(entries, entry{ReportID: s.ReportID, ReportName: s.ReportName, FetchedAt: s.FetchedAt})
			}
			return env.JSON.Value(entries)
		},
	}
}

func (e *Env) saveAndReport(ctx context.Context, file *store.File, dir string, metadata map[string]string) error {
	locations, err := e.Save(ctx, file, dir, metadata)
	for _, location := range locations {
		fmt.Fprintf(e.Out, "Saved %s\n", location)
	}
	return err
}

// fileName derives a file name from the report name, falling back to its id.
func fileName(parsed *domain.ParsedReport, ext string) string {
	base := parsed.Name
	if base == "" || base == report.UnknownReportName {
		base = parsed.ID
	}
	if base == "" {
		base = "report"
	}
	base = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, base)
	return base + ext
}
