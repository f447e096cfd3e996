package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/codeaudit/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and inference server health",
	Long: `Run a health check on your codeaudit setup.
Verifies the config directory, inference server connectivity and
model availability.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)
		cyan := color.New(color.FgCyan, color.Bold)

		cyan.Fprintf(os.Stderr, "\n  🩺 codeaudit doctor\n\n")

		pass, fail, warn := 0, 0, 0

		check := func(name string, fn func() (string, error)) {
			detail, err := fn()
			if err != nil {
				if strings.HasPrefix(err.Error(), "warn:") {
					yellow.Fprintf(os.Stderr, "  ⚠ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", strings.TrimPrefix(err.Error(), "warn:"))
					warn++
				} else {
					red.Fprintf(os.Stderr, "  ✗ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", err.Error())
					fail++
				}
			} else {
				green.Fprintf(os.Stderr, "  ✓ %s", name)
				if detail != "" {
					dim.Fprintf(os.Stderr, " · %s", detail)
				}
				fmt.Fprintln(os.Stderr)
				pass++
			}
		}

		cfg, _ := config.Load()
		client := &http.Client{Timeout: 3 * time.Second}

		check("Config directory", func() (string, error) {
			dir := config.Dir()
			info, err := os.Stat(dir)
			if err != nil {
				return "", fmt.Errorf("warn:%s not found, defaults and environment are in use", dir)
			}
			if !info.IsDir() {
				return "", fmt.Errorf("%s exists but is not a directory", dir)
			}
			return dir, nil
		})

		check("Upstream URL valid", func() (string, error) {
			u, err := url.Parse(cfg.UpstreamURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return "", fmt.Errorf("invalid URL %q (fix with: codeaudit config set-url <url>)", cfg.UpstreamURL)
			}
			return cfg.UpstreamURL, nil
		})

		check("Inference server reachable", func() (string, error) {
			base, err := serverRoot(cfg.UpstreamURL)
			if err != nil {
				return "", err
			}
			resp, err := client.Get(base)
			if err != nil {
				return "", fmt.Errorf("could not connect to %s (is it running? try: ollama serve)", base)
			}
			defer resp.Body.Close()
			return fmt.Sprintf("%s (status %d)", base, resp.StatusCode), nil
		})

		check(fmt.Sprintf("Model available (%s)", cfg.Model), func() (string, error) {
			base, err := serverRoot(cfg.UpstreamURL)
			if err != nil {
				return "", err
			}
			resp, err := client.Get(base + "/api/tags")
			if err != nil {
				return "", fmt.Errorf("warn:could not list models")
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("warn:server does not expose /api/tags (status %d), skipping", resp.StatusCode)
			}
			var tags struct {
				Models []struct {
					Name string `json:"name"`
				} `json:"models"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
				return "", fmt.Errorf("warn:unexpected /api/tags response")
			}
			want := strings.Split(cfg.Model, ":")[0]
			for _, m := range tags.Models {
				if strings.Split(m.Name, ":")[0] == want {
					return m.Name, nil
				}
			}
			return "", fmt.Errorf("model not found (run: ollama pull %s)", cfg.Model)
		})

		check("Read timeout", func() (string, error) {
			return cfg.Timeout().String(), nil
		})

		check("System info", func() (string, error) {
			return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), nil
		})

		fmt.Fprintln(os.Stderr)
		total := pass + fail + warn
		if fail == 0 && warn == 0 {
			green.Fprintf(os.Stderr, "  All %d checks passed. You're good to go.\n\n", total)
		} else if fail == 0 {
			yellow.Fprintf(os.Stderr, "  %d passed, %d warnings. Everything works, but some things could be better.\n\n", pass, warn)
		} else {
			red.Fprintf(os.Stderr, "  %d passed, %d failed, %d warnings. Fix the failures above.\n\n", pass, fail, warn)
		}

		return nil
	},
}

// serverRoot returns scheme://host of the generate URL.
func serverRoot(generateURL string) (string, error) {
	u, err := url.Parse(generateURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid upstream URL %q", generateURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
