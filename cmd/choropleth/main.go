package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-choropleth/internal/choropleth"
	"github.com/joeblew999/plat-choropleth/internal/logging"
	"github.com/joeblew999/plat-choropleth/internal/server"
)

// Options defines all CLI flags and env vars for the choropleth server.
// Flags: --host, --port, --dataset, --map-config, --data-dir, --templates-dir, --session-ttl, --log-level
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATASET, SERVICE_MAP_CONFIG, SERVICE_DATA_DIR,
// SERVICE_TEMPLATES_DIR, SERVICE_SESSION_TTL, SERVICE_LOG_LEVEL
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8086"`
	Dataset      string `doc:"GeoJSON feature collection (bundled US states when empty)"`
	MapConfig    string `doc:"YAML file with map settings"`
	DataDir      string `doc:"Directory for the DuckDB file (in memory when empty)"`
	TemplatesDir string `doc:"Re-read page templates from this directory on every page load"`
	SessionTTL   string `doc:"How long an idle map session lives" default:"30m"`
	LogLevel     string `doc:"Log level (debug, info, warn, error)" default:"info"`
}

func newServer(opts *Options) (*server.Server, error) {
	ttl, err := time.ParseDuration(opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session ttl %q: %w", opts.SessionTTL, err)
	}
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		Dataset:      opts.Dataset,
		MapConfig:    opts.MapConfig,
		DataDir:      opts.DataDir,
		TemplatesDir: opts.TemplatesDir,
		SessionTTL:   ttl,
		Logger:       logging.New(opts.LogLevel),
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := logging.New(opts.LogLevel)
		var httpServer *http.Server
		var cancel context.CancelFunc

		hooks.OnStart(func() {
			srv, err := newServer(opts)
			if err != nil {
				log.Fatal().Err(err).Msg("starting server")
			}
			defer srv.Close()

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go srv.Run(ctx)

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-choropleth server starting...\n")
			fmt.Printf("  Map:     %s/map\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if cancel != nil {
				cancel()
			}
			if httpServer == nil {
				return
			}
			ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("shutdown")
			}
		})
	})

	cli.Root().Use = "choropleth"
	cli.Root().Short = "Interactive population density map"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.LogLevel = "error"
			srv, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// legend subcommand: print the density buckets
	legendCmd := &cobra.Command{
		Use:   "legend",
		Short: "Print the density legend",
		Run: func(cmd *cobra.Command, args []string) {
			for _, e := range choropleth.LegendEntries() {
				fmt.Printf("%-9s %s\n", e.Label, e.Color)
			}
		},
	}
	cli.Root().AddCommand(legendCmd)

	cli.Run()
}
