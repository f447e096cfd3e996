package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/codeaudit/internal/ai"
	"github.com/arin/codeaudit/internal/audit"
	"github.com/arin/codeaudit/internal/config"
	"github.com/arin/codeaudit/internal/history"
	"github.com/arin/codeaudit/internal/prompt"
	"github.com/arin/codeaudit/internal/stream"
	"github.com/arin/codeaudit/internal/ui"
)

const maxSourceBytes = 1 << 20

var (
	auditTier      string
	auditNoHistory bool
)

var auditCmd = &cobra.Command{
	Use:   "audit [file]",
	Short: "Audit a contract from the terminal",
	Long: `Send a contract to the configured model and print the analysis as
it streams in. Reads from stdin when the file is "-" or omitted.

Tiers:
  bronze  basic review
  silver  standard audit
  gold    comprehensive audit

Examples:
  codeaudit audit Token.sol
  codeaudit audit Vault.sol --tier gold
  cat Token.sol | codeaudit audit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		source := "-"
		if len(args) == 1 {
			source = args[0]
		}
		code, err := readSource(source)
		if err != nil {
			return err
		}

		text, tokenLimit, err := prompt.Build(code, prompt.ParseTier(auditTier))
		if errors.Is(err, prompt.ErrInvalidInput) {
			return fmt.Errorf("%s is empty, nothing to audit", displayName(source))
		}
		if err != nil {
			return err
		}

		client := ai.NewClient(cfg)
		cyan := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.FgHiBlack)
		yellow := color.New(color.FgYellow)
		red := color.New(color.FgRed)

		sp := ui.NewSpinner(fmt.Sprintf("Asking %s...", cfg.Model))
		sp.Start()
		body, err := client.Stream(cmd.Context(), text, tokenLimit)
		if err != nil {
			sp.Fail("Could not start the audit")
			return fmt.Errorf("audit failed: %w", err)
		}
		defer body.Close()
		sp.Stop()

		cyan.Fprintf(os.Stderr, "\n  %s · %s\n\n", displayName(source), auditTier)

		printer := ui.NewStreamPrinter(os.Stdout, "  ")
		res := audit.Aggregate(stream.NewParser(body), audit.WithFragmentHook(printer.Write))
		if !printer.Wrote() {
			dim.Fprintf(os.Stdout, "  (the model returned no text)\n")
		}
		printer.Finish()

		switch {
		case res.Interrupted:
			red.Fprintf(os.Stderr, "  ✗ The stream was interrupted; the report above is incomplete.\n")
		case !res.Completed:
			yellow.Fprintf(os.Stderr, "  ⚠ The model closed the stream without signalling completion.\n")
		}
		if n := len(res.Warnings); n > 0 {
			dim.Fprintf(os.Stderr, "  %d malformed line(s) skipped.\n", n)
		}

		if !auditNoHistory {
			_ = history.Save(history.Entry{
				Source:      source,
				PackageType: auditTier,
				Model:       cfg.Model,
				Completed:   res.Completed,
				Interrupted: res.Interrupted,
				Warnings:    len(res.Warnings),
				Reply:       res.Text,
			})
		}
		return nil
	},
}

func readSource(source string) (string, error) {
	var r io.Reader = os.Stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return "", fmt.Errorf("could not open %s: %w", source, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", displayName(source), err)
	}
	if len(data) > maxSourceBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", displayName(source), maxSourceBytes)
	}
	return string(data), nil
}

func displayName(source string) string {
	if source == "-" {
		return "stdin"
	}
	return source
}

func init() {
	auditCmd.Flags().StringVarP(&auditTier, "tier", "t", prompt.DefaultPackage, "Audit tier: bronze, silver or gold")
	auditCmd.Flags().BoolVar(&auditNoHistory, "no-history", false, "Do not record this audit in history")
}
