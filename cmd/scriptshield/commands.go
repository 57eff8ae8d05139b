package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pynezz/pynezzentials"
	"github.com/spf13/cobra"

	"github.com/pynezz/scriptshield/internal/accesslog"
	"github.com/pynezz/scriptshield/internal/api"
	"github.com/pynezz/scriptshield/internal/client"
	"github.com/pynezz/scriptshield/internal/config"
	"github.com/pynezz/scriptshield/internal/database/stores"
	"github.com/pynezz/scriptshield/internal/fs"
	"github.com/pynezz/scriptshield/internal/mock"
	"github.com/pynezz/scriptshield/internal/session"
	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/internal/tui"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/pkg/model"
	"github.com/pynezz/scriptshield/pkg/version"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "scriptshield",
		Short:         "ScriptShield site server and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.SetLevel(util.ParseLevel(opts.logLevel))
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warning, error or silent")

	root.AddCommand(
		newServeCmd(opts),
		newMonitorCmd(opts),
		newKeygenCmd(opts),
		newScanCmd(opts),
		newHealthCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}

			if cfg.Auth.JWTSecret == "change-me" {
				util.PrintWarning("auth.jwt_secret is the default; set SCRIPTSHIELD_AUTH_JWT_SECRET")
			}

			st, err := stores.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			deps := api.Deps{Stores: st, Mock: mock.New(time.Now().UnixNano())}
			if cfg.Threats.Enabled {
				det, err := threat.New(cfg.Threats.RulesDir)
				if err != nil {
					return fmt.Errorf("load threat rules: %w", err)
				}
				util.PrintInfof("loaded %d threat rules", len(det.Titles()))
				deps.Detector = det
			}

			srv, err := api.NewServer(cfg, deps)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if fs.FileExists(opts.configPath) {
				if err := config.Watch(ctx, opts.configPath, srv.Reload); err != nil {
					util.PrintWarning("config watch disabled: " + err.Error())
				}
			}

			tui.Header.PrintHeader()
			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				util.PrintInfo("shutting down")
				return srv.ShutdownWithTimeout(5 * time.Second)
			}
		},
	}
}

type monitorOptions struct {
	url      string
	apiKey   string
	period   string
	interval time.Duration
}

func newMonitorCmd(opts *rootOptions) *cobra.Command {
	mo := &monitorOptions{}
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live terminal dashboard of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, mo.url)
			if err != nil {
				return err
			}
			if mo.apiKey != "" {
				if !session.ValidateAPIKeyFormat(mo.apiKey) {
					util.PrintWarning("api key does not look like sk_<env>_<24 chars>")
				}
				if _, err := c.Login(mo.apiKey, session.HWID(session.MachineComponents()...)); err != nil {
					return fmt.Errorf("login: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tui.NewMonitor(c, mo.period, mo.interval).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&mo.url, "url", "", "API base URL (default from config)")
	cmd.Flags().StringVar(&mo.apiKey, "key", "", "API key to log in with")
	cmd.Flags().StringVar(&mo.period, "period", "24h", "stats period, e.g. 24h or 7d")
	cmd.Flags().DurationVar(&mo.interval, "interval", 5*time.Second, "refresh interval")
	return cmd
}

// newClient builds a client whose session is kept in the configured file.
func newClient(opts *rootOptions, url string) (*client.Client, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = cfg.Client.BaseURL
	}

	store, err := session.OpenFileStorage(cfg.Client.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return client.New(url, session.New(store)), nil
}

type keygenOptions struct {
	env   string
	name  string
	owner string
}

func newKeygenCmd(opts *rootOptions) *cobra.Command {
	ko := &keygenOptions{}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an API key and store its hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch ko.env {
			case "live", "test", "dev":
			default:
				return fmt.Errorf("invalid environment %q: want live, test or dev", ko.env)
			}

			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			st, err := stores.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			plain, key, err := st.CreateKey(cmd.Context(), ko.owner, ko.name, ko.env, []string{"script:read", "script:execute"})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", plain)
			util.PrintSuccess(fmt.Sprintf("created key %q (%s), rate limit %s", key.Name, key.Masked, key.RateLimit))
			util.PrintWarning("the key is shown once; only its hash is stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&ko.env, "env", "live", "key environment: live, test or dev")
	cmd.Flags().StringVar(&ko.name, "name", "", "display name of the key")
	cmd.Flags().StringVar(&ko.owner, "owner", "", "owner id; keys without an owner are shared demo keys")
	return cmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "scan <access.log>...",
		Short: "Replay nginx JSON access logs through the threat rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			det, err := threat.New(cfg.Threats.RulesDir)
			if err != nil {
				return fmt.Errorf("load threat rules: %w", err)
			}

			var rec threat.Recorder
			if !dryRun {
				st, err := stores.Open(cfg.Database)
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				defer st.Close()
				rec = st
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				report, err := accesslog.ScanFile(cmd.Context(), path, det, rec)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "%s: %d lines, %d skipped, %d hits\n", path, report.Lines, report.Skipped, report.Hits)
				for _, title := range report.Rules() {
					fmt.Fprintf(out, "  %-32s %d\n", title, report.ByRule[title])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report hits without recording them")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that a server answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, url)
			if err != nil {
				return err
			}
			h := c.HealthCheck()
			fmt.Fprintf(cmd.OutOrStdout(), "api:  %s\nauth: %s\nat:   %s\n", h.API, h.Auth, h.Timestamp)
			if h.API != "healthy" {
				return errors.New("api unhealthy")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "API base URL (default from config)")
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fs.FileExists(opts.configPath) {
				return fmt.Errorf("%s already exists", opts.configPath)
			}
			return config.WriteConfig(config.Default(), opts.configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			printSummary(cmd, cfg)
			return nil
		},
	})
	return cmd
}

func printSummary(cmd *cobra.Command, cfg *model.Config) {
	var b strings.Builder
	fmt.Fprintf(&b, "listen:   %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(&b, "database: %s\n", cfg.Database.Path)
	fmt.Fprintf(&b, "limits:   api %d/%s, auth %d/%s, script %d/%s\n",
		cfg.RateLimit.APIMax, cfg.RateLimit.APIWindow,
		cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow,
		cfg.RateLimit.ScriptMax, cfg.RateLimit.ScriptWindow)
	fmt.Fprintf(&b, "threats:  %t\n", cfg.Threats.Enabled)

	// every line must end in \n, the box drops an unterminated last line
	fmt.Fprintln(cmd.OutOrStdout(), pynezzentials.FormatRoundedBox(b.String()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
