package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/policy"
)

var (
	addSSID      string
	addInterface string
	addVPN       string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a trust rule mapping an SSID or interface to a VPN",
	Example: `  vpn-switcher add --ssid HomeWifi --vpn "Home VPN"
  vpn-switcher add --interface eth0 --vpn 91280897-1605-4b05-b2b7-dc52219c2e6c`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd()
	},
}

func runAdd() error {
	if addVPN == "" {
		return fmt.Errorf("--vpn is required")
	}
	if addSSID == "" && addInterface == "" {
		return fmt.Errorf("either --ssid or --interface is required")
	}

	store, err := openStore("")
	if err != nil {
		return err
	}
	tunnelUUID, err := resolveTunnel(addVPN)
	if err != nil {
		return err
	}

	rule := policy.TrustRule{SSID: addSSID, Interface: addInterface, VPNUUID: tunnelUUID}
	if err := store.AddRule(rule); err != nil {
		return err
	}
	fmt.Printf("✓ Added rule: %s -> %s\n", rule.Describe(), common.TruncateID(tunnelUUID, 8))
	return nil
}

var (
	removeSSID      string
	removeInterface string
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove trust rules matching an SSID or interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove()
	},
}

func runRemove() error {
	if removeSSID == "" && removeInterface == "" {
		return fmt.Errorf("either --ssid or --interface is required")
	}

	store, err := openStore("")
	if err != nil {
		return err
	}
	removed, err := store.RemoveRules(removeSSID, removeInterface)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d matching rule(s).\n", removed)
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the trust rules and the fallback tunnel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList()
	},
}

func runList() error {
	store, err := openStore("")
	if err != nil {
		return err
	}
	cfg, err := store.Load()
	if err != nil {
		return err
	}

	if len(cfg.Rules) == 0 {
		fmt.Println("No trust rules configured.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tMATCH\tTUNNEL")
		fmt.Fprintln(w, "-\t-----\t------")
		for i, rule := range cfg.Rules {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, rule.Describe(), rule.VPNUUID)
		}
		w.Flush()
	}

	fmt.Println()
	if cfg.FallbackVPNUUID != "" {
		fmt.Printf("Fallback VPN UUID: %s\n", cfg.FallbackVPNUUID)
	} else {
		fmt.Println("No fallback VPN configured.")
	}
	fmt.Printf("Reachability wait: %d probes, %s apart\n", cfg.CheckTimeout(), cfg.CheckInterval())
	return nil
}

var (
	fallbackVPN   string
	fallbackClear bool
)

var fallbackCmd = &cobra.Command{
	Use:   "set-fallback",
	Short: "Set or clear the fallback VPN for unmatched networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetFallback()
	},
}

func runSetFallback() error {
	store, err := openStore("")
	if err != nil {
		return err
	}

	if fallbackClear {
		if err := store.ClearFallback(); err != nil {
			return err
		}
		fmt.Println("Cleared fallback VPN.")
		return nil
	}

	if fallbackVPN == "" {
		return fmt.Errorf("either --vpn or --clear is required")
	}
	tunnelUUID, err := resolveTunnel(fallbackVPN)
	if err != nil {
		return err
	}
	if err := store.SetFallback(tunnelUUID); err != nil {
		return err
	}
	fmt.Printf("✓ Set fallback VPN to: %s\n", tunnelUUID)
	return nil
}

func init() {
	addCmd.Flags().StringVar(&addSSID, "ssid", "", "wireless network name the rule matches")
	addCmd.Flags().StringVar(&addInterface, "interface", "", "interface name the rule matches (e.g. eth0)")
	addCmd.Flags().StringVar(&addVPN, "vpn", "", "VPN connection name or UUID (required)")

	removeCmd.Flags().StringVar(&removeSSID, "ssid", "", "remove rules matching this SSID")
	removeCmd.Flags().StringVar(&removeInterface, "interface", "", "remove rules matching this interface")

	fallbackCmd.Flags().StringVar(&fallbackVPN, "vpn", "", "VPN connection name or UUID")
	fallbackCmd.Flags().BoolVar(&fallbackClear, "clear", false, "remove the fallback VPN")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fallbackCmd)
}
