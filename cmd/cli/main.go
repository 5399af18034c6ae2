package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/absmach/pkgbench"
	"github.com/absmach/pkgbench/cli"
	"github.com/absmach/pkgbench/pkg/sdk"
	"github.com/absmach/pkgbench/pkg/sdk/middleware"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	svcName         = "pkgbench"
	pathEnv         = ".env"
	shutdownTimeout = 5 * time.Second
)

type envConfig struct {
	APIURL          string        `env:"PKGBENCH_API_URL"          envDefault:"http://localhost:8000/api/v1"`
	LogLevel        string        `env:"PKGBENCH_LOG_LEVEL"        envDefault:"info"`
	Timeout         time.Duration `env:"PKGBENCH_TIMEOUT"          envDefault:"30s"`
	DownloadTimeout time.Duration `env:"PKGBENCH_DOWNLOAD_TIMEOUT" envDefault:"60s"`
	PollInterval    time.Duration `env:"PKGBENCH_POLL_INTERVAL"    envDefault:"3s"`
	TLSVerification bool          `env:"PKGBENCH_TLS_VERIFICATION" envDefault:"true"`
	ConfigFile      string        `env:"PKGBENCH_CONFIG"`
	MetricsFile     string        `env:"PKGBENCH_METRICS_FILE"`
	OTELURL         url.URL       `env:"PKGBENCH_OTEL_URL"`
	TraceRatio      float64       `env:"PKGBENCH_TRACE_RATIO"      envDefault:"1"`
}

func main() {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	settings := pkgbench.Settings{
		APIURL:          cfg.APIURL,
		LogLevel:        cfg.LogLevel,
		Timeout:         cfg.Timeout,
		DownloadTimeout: cfg.DownloadTimeout,
		PollInterval:    cfg.PollInterval,
		TLSVerification: cfg.TLSVerification,
	}

	var shutdown func(context.Context)

	rootCmd := &cobra.Command{
		Use:          "pkgbench",
		Short:        "Package analysis benchmark CLI",
		Long:         `pkgbench runs static analyzers against GitHub repositories through the analysis service and summarizes their resource usage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.ConfigFile != "" {
				file, err := pkgbench.LoadConfig(cfg.ConfigFile)
				if err != nil {
					return err
				}
				if err := file.Apply(&settings); err != nil {
					return err
				}
			}
			applyFlags(cmd, &settings)

			logger, err := newLogger(settings.LogLevel)
			if err != nil {
				return err
			}

			tp, stop, err := newTracerProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			shutdown = stop

			s := sdk.NewSDK(sdk.Config{
				APIURL:          settings.APIURL,
				TLSVerification: settings.TLSVerification,
				Timeout:         settings.Timeout,
				DownloadTimeout: settings.DownloadTimeout,
			})
			s = middleware.Logging(logger, s)
			s = middleware.Tracing(tp.Tracer(svcName), s)
			counter, latency := middleware.MakeMetrics(svcName, "sdk")
			s = middleware.Metrics(counter, latency, s)

			cli.SetLogger(logger)
			cli.SetSettings(settings)
			cli.SetSDK(s)

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if shutdown != nil {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				shutdown(ctx)
			}
			if cfg.MetricsFile != "" {
				if err := prometheus.WriteToTextfile(cfg.MetricsFile, prometheus.DefaultGatherer); err != nil {
					slog.Error("failed to write metrics", slog.String("file", cfg.MetricsFile), slog.Any("error", err))
				}
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "TOML configuration file")
	flags.StringVarP(&settings.APIURL, "api-url", "u", settings.APIURL, "Analysis service API URL")
	flags.StringVarP(&settings.LogLevel, "log-level", "l", settings.LogLevel, "Log level (debug, info, warn, error)")
	flags.DurationVar(&settings.Timeout, "timeout", settings.Timeout, "Request timeout")
	flags.DurationVar(&settings.DownloadTimeout, "download-timeout", settings.DownloadTimeout, "Metrics download timeout")
	flags.DurationVar(&settings.PollInterval, "poll-interval", settings.PollInterval, "Task status poll interval")
	flags.BoolVar(&settings.TLSVerification, "tls-verification", settings.TLSVerification, "Verify the API TLS certificate")

	rootCmd.AddCommand(cli.NewPackagesCmd())
	rootCmd.AddCommand(cli.NewTasksCmd())
	rootCmd.AddCommand(cli.NewConfigCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

// applyFlags re-applies explicitly set flags so they win over the config
// file, which is loaded after flag parsing.
func applyFlags(cmd *cobra.Command, s *pkgbench.Settings) {
	flags := cmd.Flags()
	if v, err := flags.GetString("api-url"); err == nil && flags.Changed("api-url") {
		s.APIURL = v
	}
	if v, err := flags.GetString("log-level"); err == nil && flags.Changed("log-level") {
		s.LogLevel = v
	}
	if v, err := flags.GetDuration("timeout"); err == nil && flags.Changed("timeout") {
		s.Timeout = v
	}
	if v, err := flags.GetDuration("download-timeout"); err == nil && flags.Changed("download-timeout") {
		s.DownloadTimeout = v
	}
	if v, err := flags.GetDuration("poll-interval"); err == nil && flags.Changed("poll-interval") {
		s.PollInterval = v
	}
	if v, err := flags.GetBool("tls-verification"); err == nil && flags.Changed("tls-verification") {
		s.TLSVerification = v
	}
}

func newLogger(lvl string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	return logger, nil
}

func newTracerProvider(ctx context.Context, cfg envConfig) (trace.TracerProvider, func(context.Context), error) {
	if cfg.OTELURL == (url.URL{}) {
		return noop.NewTracerProvider(), nil, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.OTELURL.Host),
	}
	if cfg.OTELURL.Path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(cfg.OTELURL.Path))
	}
	if cfg.OTELURL.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", svcName))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("error shutting down tracer provider", slog.Any("error", err))
		}
	}, nil
}
