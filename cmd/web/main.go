package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/server"
	"github.com/de-tools/report-atlas/pkg/services/account"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/dashboard"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/snapshot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath         string
	credentialsPath string
	dbPath          string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Report Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the profile file (default is $HOME/"+config.DefaultRegistryFile+")")
	rootCmd.Flags().StringVar(&credentialsPath, "credentials", config.DefaultCredentialsFile,
		"Path to an access.json credentials file, served as the default profile")
	rootCmd.Flags().StringVar(&dbPath, "db", duckdb.DefaultDbPath, "Path to the report snapshot database")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")
	if host == "" || port == "" {
		return fmt.Errorf("missing SERVER_HOST or SERVER_PORT in the environment or .env file")
	}

	registry, err := config.Discover(cfgPath, credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to create config registry: %w", err)
	}

	accountExplorer := account.NewExplorer(registry, nil)

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	snapshotStore, err := snapshot.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	logProfiles(ctx, accountExplorer)

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Profiles:   accountExplorer,
			Reports:    report.NewService(accountExplorer, snapshotStore),
			Dashboards: dashboard.NewService(accountExplorer),
		},
	})

	return api.Start()
}

func logProfiles(ctx context.Context, lister profileLister) {
	logger := zerolog.Ctx(ctx)

	profiles, err := lister.ListProfiles(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to list configured profiles")
		return
	}
	logger.Info().Msg("Found the following profiles:")
	for _, profile := range profiles {
		logger.Info().Msgf("Name: `%s`, Instance: `%s`", profile.Name, profile.InstanceURL)
	}
}

type profileLister interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
}
