package commands

import (
	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/spf13/cobra"
)

func NewDashboardCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Inspect Salesforce dashboards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recently viewed dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Dashboards()
			if err != nil {
				return err
			}
			dashboards, err := svc.List(ctx, env.Profile())
			if err != nil {
				return err
			}
			return env.JSON.Value(adapters.MapDashboardListStoreToApi(dashboards))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "results <dashboard-id>",
		Short: "Print the component results of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Dashboards()
			if err != nil {
				return err
			}
			raw, err := svc.Results(ctx, env.Profile(), args[0])
			if err != nil {
				return err
			}
			return env.JSON.Raw(raw)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "describe <dashboard-id>",
		Short: "Print dashboard metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			svc, err := env.Dashboards()
			if err != nil {
				return err
			}
			raw, err := svc.Describe(ctx, env.Profile(), args[0])
			if err != nil {
				return err
			}
			return env.JSON.Raw(raw)
		},
	})

	cmd.AddCommand(newDashboardPNGCmd(env))

	return cmd
}

type dashboardPNGCmd struct {
	env *Env
	out string
}

func newDashboardPNGCmd(env *Env) *cobra.Command {
	pc := &dashboardPNGCmd{env: env}
	cmd := &cobra.Command{
		Use:   "png <dashboard-id>",
		Short: "Download a Lightning dashboard snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.out, "out", ".", "Directory to write the image to")

	return cmd
}

func (pc *dashboardPNGCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd)
	defer cancel()

	svc, err := pc.env.Dashboards()
	if err != nil {
		return err
	}
	file, err := svc.PNG(ctx, pc.env.Profile(), args[0])
	if err != nil {
		return err
	}
	return pc.env.saveAndReport(ctx, file, pc.out, map[string]string{"dashboard-id": args[0]})
}
