// Package cli provides the command-line interface for VPN Switcher. One
// binary carries the daemon entry point and the policy management commands,
// so systemd and the terminal drive the same code.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/policy"
)

var (
	policyPath string
	verbose    bool

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "vpn-switcher",
	Short: "Policy driven VPN switching for NetworkManager",
	Long: `VPN Switcher keeps the active VPN tunnel consistent with the network the
host is attached to. Trusted SSIDs and interfaces map to the tunnel they
require; every other network gets the fallback tunnel, or none at all.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. Build metadata is injected by main.
func Execute(version, buildTime, commitSHA string) {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, commitSHA)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "path to the policy file (default ~/.config/vpn-switcher/policy.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
}

// openStore resolves the policy file location. The --policy flag wins over
// the daemon configuration, which wins over the default path.
func openStore(configOverride string) (*policy.Store, error) {
	path := policyPath
	if path == "" {
		path = configOverride
	}
	if path == "" {
		var err error
		path, err = common.DefaultPolicyPath()
		if err != nil {
			return nil, err
		}
	}
	return policy.NewStore(path), nil
}

// withClient runs fn with a connected control plane client and a bounded
// context.
func withClient(fn func(ctx context.Context, client *netman.Client) error) error {
	client, err := netman.NewClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), common.QueryTimeout)
	defer cancel()
	return fn(ctx, client)
}

// resolveTunnel accepts a literal connection UUID or resolves a saved
// connection name through NetworkManager.
func resolveTunnel(nameOrUUID string) (string, error) {
	if _, err := uuid.Parse(nameOrUUID); err == nil {
		return nameOrUUID, nil
	}

	var resolved string
	err := withClient(func(ctx context.Context, client *netman.Client) error {
		found, err := client.FindTunnelByName(ctx, nameOrUUID)
		if err != nil {
			return err
		}
		resolved = found
		return nil
	})
	return resolved, err
}
