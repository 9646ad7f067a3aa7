package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orkendeu/bg-journal/internal/config"
	"github.com/orkendeu/bg-journal/internal/domain/journal"
	"github.com/orkendeu/bg-journal/internal/domain/referral"
	"github.com/orkendeu/bg-journal/internal/platform/bg"
	"github.com/orkendeu/bg-journal/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "bg-journal",
		Short:         "Hospitalization bureau journal service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load additional environment variables from a dotenv file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(envelopeCmd())
	return rootCmd
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newFetcher returns the bureau client, or a fixture source when fixture is
// set.
func newFetcher(cfg *config.Config, fixture string, logger zerolog.Logger) (journal.Fetcher, error) {
	if fixture != "" {
		src, err := referral.LoadFixture(fixture)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("fixture", fixture).Int("items", len(src.Items)).Msg("serving referrals from fixture")
		return src, nil
	}
	return bg.NewClient(cfg.BG(), logger), nil
}

func newService(cfg *config.Config, fetcher journal.Fetcher, logger zerolog.Logger) *journal.Service {
	svc := journal.NewService(fetcher, logger)
	svc.SetHospitalName(cfg.HospitalName)
	return svc
}

func serveCmd() *cobra.Command {
	var fixture string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the journal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(fixture)
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "Serve referral items from a JSON file instead of the bureau")
	return cmd
}

// newServer builds the echo instance with middleware and routes.
func newServer(cfg *config.Config, svc *journal.Service, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	api := e.Group("/api/journal")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}, logger))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	journal.NewHandler(svc).RegisterRoutes(api)

	return e
}

// buildServer loads the configuration and assembles the server. The logger
// follows cfg.Env, so an ENV set in .env switches the console writer.
func buildServer(fixture string, out io.Writer) (*config.Config, *echo.Echo, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, newLogger(os.Getenv("ENV"), out), err
	}
	logger := newLogger(cfg.Env, out)

	fetcher, err := newFetcher(cfg, fixture, logger)
	if err != nil {
		return nil, nil, logger, err
	}
	return cfg, newServer(cfg, newService(cfg, fetcher, logger), logger), logger, nil
}

func runServer(fixture string) error {
	cfg, e, logger, err := buildServer(fixture, os.Stdout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("bg_url", cfg.BGURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func addQueryFlags(cmd *cobra.Command, f *journal.Filter) {
	cmd.Flags().StringVar(&f.PatientIdentifier, "patient", "", "Patient IIN or name fragment")
	cmd.Flags().StringVar(&f.DateFrom, "date-from", "", "Start of the registration window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.DateTo, "date-to", "", "End of the registration window (YYYY-MM-DD)")
}

func journalCmd() *cobra.Command {
	var (
		f       journal.Filter
		sortBy  string
		fixture string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:       "journal <kind>",
		Short:     "Query one journal and print the JSON response",
		Args:      cobra.ExactArgs(1),
		ValidArgs: journalKinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := journal.Lookup(journal.Kind(args[0]))
			if !ok {
				return fmt.Errorf("unknown journal %q, expected one of %v", args[0], journalKinds())
			}
			f.SortBy = journal.SortKey(sortBy)
			f = f.WithDefaults()
			if err := f.Validate(d); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cmd.ErrOrStderr()).Level(zerolog.WarnLevel)
			fetcher, err := newFetcher(cfg, fixture, logger)
			if err != nil {
				return err
			}

			resp := newService(cfg, fetcher, logger).GetData(cmd.Context(), d.Kind, f)
			return writeJSON(cmd.OutOrStdout(), resp, pretty)
		},
	}
	addQueryFlags(cmd, &f)
	cmd.Flags().StringVar(&f.Department, "department", journal.StatusAll, "Bed profile code or \"all\"")
	cmd.Flags().StringVar(&f.Status, "status", journal.StatusAll, "Journal status filter")
	cmd.Flags().StringVar(&sortBy, "sort-by", string(journal.SortDateDesc), "Sort key")
	cmd.Flags().IntVar(&f.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 10, "Page size")
	cmd.Flags().StringVar(&fixture, "fixture", "", "Read referral items from a JSON file instead of the bureau")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	return cmd
}

func envelopeCmd() *cobra.Command {
	var f journal.Filter
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Print the SOAP envelope sent to the bureau",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := bg.NewClient(cfg.BG(), zerolog.Nop())
			body, err := client.Envelope(journal.QueryFor(f))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}
	addQueryFlags(cmd, &f)
	return cmd
}

func journalKinds() []string {
	descs := journal.Descriptors()
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = string(d.Kind)
	}
	return out
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
