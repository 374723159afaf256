package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/config"
	"github.com/yllada/vpn-switcher/metrics"
	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/notify"
	"github.com/yllada/vpn-switcher/switcher"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the switcher daemon",
	Long: `Run subscribes to NetworkManager state changes and keeps the active VPN
tunnel consistent with the trust policy. Intended to live under systemd,
but works the same from a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func runDaemon() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logCfg := common.LogConfig{Level: level, Format: cfg.LogFormat, EnableFile: cfg.LogFile}
	if err := common.InitLogger(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
	}
	defer common.CloseLogger()

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)

	store, err := openStore(cfg.PolicyPath)
	if err != nil {
		return err
	}
	// A broken policy file should stop the daemon at startup, not on the
	// first cycle.
	if _, err := store.Load(); err != nil {
		return err
	}
	common.LogInfo("Policy file: %s", store.Path())

	client, err := netman.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	sw := switcher.New(client, store)
	sw.SetDebounce(cfg.Debounce())

	if cfg.ReachabilityURL != "" {
		sw.SetReachabilityChecker(netman.NewHTTPProber(cfg.ReachabilityURL))
		common.LogInfo("Reachability probe: %s", cfg.ReachabilityURL)
	}

	if cfg.ShowNotifications {
		notifier, err := notify.New()
		if err != nil {
			common.LogWarn("Desktop notifications unavailable: %v", err)
		} else {
			defer notifier.Close()
			sw.SetNotifier(notifier)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if cfg.MetricsAddress != "" {
		metrics.Enable()
		service, err := metrics.NewService(cfg.MetricsAddress)
		if err != nil {
			return fmt.Errorf("failed to start metrics service: %w", err)
		}
		defer service.Close()
		go func() {
			common.LogInfo("Metrics exposed on http://%s%s", service.Addr(), metrics.DefaultPath)
			if err := service.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				common.LogError("Metrics service error: %v", err)
			}
		}()
	}

	go switcher.RunWatchdog(ctx)

	return sw.Run(ctx)
}

// setupSignalHandler configures graceful shutdown on SIGINT and SIGTERM.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the daemon configuration (default ~/.config/vpn-switcher/config.yaml)")
	rootCmd.AddCommand(runCmd)
}
