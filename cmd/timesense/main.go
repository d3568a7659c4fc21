package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/timesense/internal/profile"
	"github.com/hrygo/timesense/plugin/ai"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/plugin/ai/metrics"
	"github.com/hrygo/timesense/server"
	"github.com/hrygo/timesense/store"
	"github.com/hrygo/timesense/store/db"
)

const (
	greetingBanner = `TimeSense - timezone-aware assistant`
)

var (
	version = "0.1.0"

	rootCmd = &cobra.Command{
		Use:   "timesense",
		Short: "A timezone-aware conversational assistant",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			instanceProfile := &profile.Profile{
				Mode:    viper.GetString("mode"),
				Addr:    viper.GetString("addr"),
				Port:    viper.GetInt("port"),
				Data:    viper.GetString("data"),
				Driver:  viper.GetString("driver"),
				DSN:     viper.GetString("dsn"),
				Version: version,
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				return fmt.Errorf("failed to validate profile: %w", err)
			}

			initLogger(instanceProfile)

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				return fmt.Errorf("failed to create db driver: %w", err)
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate store: %w", err)
			}

			var llmService ai.LLMService
			if instanceProfile.IsAIEnabled() {
				cfg := ai.NewConfigFromProfile(instanceProfile)
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid LLM configuration: %w", err)
				}
				llmService, err = ai.NewLLMService(&cfg.LLM)
				if err != nil {
					return fmt.Errorf("failed to create LLM service: %w", err)
				}
			} else {
				slog.Warn("AI is not enabled, chat requests will be rejected")
			}

			timeService := aitime.NewService(instanceProfile.DefaultTimezone)
			metricsService := metrics.NewService(storeInstance, metrics.DefaultPersisterConfig())
			defer metricsService.Close()

			s, err := server.NewServer(ctx, instanceProfile, storeInstance, llmService, timeService, metricsService)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			fmt.Println(greetingBanner)
			fmt.Printf("version %s, mode %s, listening on %s:%d\n",
				instanceProfile.Version, instanceProfile.Mode, instanceProfile.Addr, instanceProfile.Port)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return s.Start(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				s.Shutdown(context.Background())
				return nil
			})
			return g.Wait()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("timesense")
	viper.AutomaticEnv()
}

func initLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
