package cmd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/arin/codeaudit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codeaudit configuration",
}

var setModelCmd = &cobra.Command{
	Use:   "set-model <model-name>",
	Short: "Set the model sent to the inference server (default: codellama)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetModel(args[0]); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Printf("Model set to %s.\n", args[0])
		return nil
	},
}

var setURLCmd = &cobra.Command{
	Use:   "set-url <generate-url>",
	Short: "Set the inference server URL (default: http://localhost:11434/api/generate)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid URL %q", args[0])
		}
		if err := config.SetUpstreamURL(args[0]); err != nil {
			return fmt.Errorf("failed to save URL: %w", err)
		}
		fmt.Printf("Inference server set to %s.\n", args[0])
		return nil
	},
}

var setTimeoutCmd = &cobra.Command{
	Use:   "set-timeout <duration>",
	Short: "Set how long to wait for the next chunk before giving up (e.g. 90s)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration %q", args[0])
		}
		if err := config.SetReadTimeout(d); err != nil {
			return fmt.Errorf("failed to save timeout: %w", err)
		}
		fmt.Printf("Read timeout set to %s.\n", d)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("Model:        %s\n", cfg.Model)
		fmt.Printf("Upstream:     %s\n", cfg.UpstreamURL)
		fmt.Printf("Listen addr:  %s\n", cfg.Addr)
		fmt.Printf("Read timeout: %s\n", cfg.Timeout())
		fmt.Printf("Config Dir:   %s\n", config.Dir())
		return nil
	},
}

func init() {
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(setURLCmd)
	configCmd.AddCommand(setTimeoutCmd)
	configCmd.AddCommand(showCmd)
}
