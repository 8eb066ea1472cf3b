package commands

import (
	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/spf13/cobra"
)

func NewProfilesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured Salesforce profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			explorer, err := env.Profiles()
			if err != nil {
				return err
			}
			profiles, err := explorer.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]api.Profile, 0, len(profiles))
			for _, p := range profiles {
				out = append(out, adapters.MapProfileDomainToApi(p))
			}
			return env.JSON.Value(out)
		},
	}
}
