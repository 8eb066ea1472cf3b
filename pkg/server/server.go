package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dashboardhandler "github.com/de-tools/report-atlas/pkg/handlers/dashboard"
	profilehandler "github.com/de-tools/report-atlas/pkg/handlers/profile"
	queryhandler "github.com/de-tools/report-atlas/pkg/handlers/query"
	reporthandler "github.com/de-tools/report-atlas/pkg/handlers/report"
	reportatlasmiddleware "github.com/de-tools/report-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Profiles   profilehandler.Lister
	Reports    reporthandler.Service
	Dashboards dashboardhandler.Service
	Logger     zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	profileHandler := profilehandler.NewHandler(deps.Profiles)
	reportHandler := reporthandler.NewHandler(deps.Reports)
	dashboardHandler := dashboardhandler.NewHandler(deps.Dashboards)
	queryHandler := queryhandler.NewHandler()

	router := chi.NewRouter()

	router.Use(reportatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/profiles", profileHandler.ListProfiles)

		r.Get("/profiles/{profile}/reports", reportHandler.ListReports)
		r.Get("/profiles/{profile}/reports/{id}", reportHandler.GetReport)
		r.Get("/profiles/{profile}/reports/{id}/describe", reportHandler.DescribeReport)
		r.Post("/reports/parse", reportHandler.ParseReport)

		r.Get("/profiles/{profile}/dashboards", dashboardHandler.ListDashboards)
		r.Get("/profiles/{profile}/dashboards/{id}", dashboardHandler.GetDashboard)
		r.Get("/profiles/{profile}/dashboards/{id}/png", dashboardHandler.GetDashboardPNG)

		r.Post("/query", queryHandler.Query)
		r.Get("/query/samples", queryHandler.Samples)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
