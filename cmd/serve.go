package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arin/codeaudit/internal/ai"
	"github.com/arin/codeaudit/internal/config"
	"github.com/arin/codeaudit/internal/server"
)

var (
	serveAddr        string
	serveUpstream    string
	serveModel       string
	serveReadTimeout time.Duration
	serveDev         bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP service",
	Long: `Run the HTTP service used by the dashboard.

Endpoints:
  POST /process-code   {"code": "...", "packageType": "bronze|silver|gold"}
  GET  /healthz
  GET  /metrics

Flags override the config file and CODEAUDIT_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveUpstream != "" {
			cfg.UpstreamURL = serveUpstream
		}
		if serveModel != "" {
			cfg.Model = serveModel
		}
		if serveReadTimeout > 0 {
			cfg.ReadTimeout = serveReadTimeout.String()
		}

		log, err := newLogger(serveDev)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		client := ai.NewClient(cfg)
		srv := server.New(client, server.WithLogger(log), server.WithRegistry(reg))

		log.Info("using inference server",
			zap.String("upstream", client.Endpoint()),
			zap.String("model", client.Model()),
			zap.Duration("read_timeout", cfg.Timeout()),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :3001)")
	serveCmd.Flags().StringVar(&serveUpstream, "upstream", "", "Inference server generate URL")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Model identifier sent upstream")
	serveCmd.Flags().DurationVar(&serveReadTimeout, "read-timeout", 0, "Fail the stream if the upstream sends nothing for this long")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Human-readable debug logging")
}
