package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/policy"
	"github.com/yllada/vpn-switcher/ui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the active tunnels match the policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func runStatus() error {
	store, err := openStore("")
	if err != nil {
		return err
	}

	if statusWatch {
		client, err := netman.NewClient()
		if err != nil {
			return err
		}
		defer client.Close()
		return ui.Run(client, store)
	}

	return withClient(func(ctx context.Context, client *netman.Client) error {
		links, err := netman.LinkAttachments(ctx, client)
		if err != nil {
			return err
		}
		tunnels, err := netman.TunnelAttachments(ctx, client)
		if err != nil {
			return err
		}
		cfg, err := store.Load()
		if err != nil {
			return err
		}
		printStatus(links, tunnels, policy.Evaluate(links, tunnels, cfg))
		return nil
	})
}

func printStatus(links, tunnels []netman.Attachment, ev policy.Evaluation) {
	if len(links)+len(tunnels) == 0 {
		fmt.Println("No active connections.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tNAME\tINTERFACE\tSSID")
		fmt.Fprintln(w, "----\t----\t---------\t----")
		for _, att := range append(append([]netman.Attachment{}, links...), tunnels...) {
			iface := att.Interface
			if iface == "" {
				iface = "-"
			}
			ssid := att.SSID
			if ssid == "" {
				ssid = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", att.Kind, att.Name, iface, ssid)
		}
		w.Flush()
	}

	fmt.Println()
	required := "no tunnel required"
	if ev.DesiredTunnel != "" {
		required = "required tunnel: " + ev.DesiredTunnel
	}
	if ev.Compliant {
		fmt.Printf("✓ Compliant (%s)\n", required)
	} else {
		fmt.Printf("✗ Not compliant (%s)\n", required)
	}
	if ev.MatchedRule != nil {
		fmt.Printf("Matched rule: %s\n", ev.MatchedRule.Describe())
	}
	if ev.FallbackApplied {
		fmt.Println("Fallback VPN is in effect for this network.")
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "continuously refresh in an interactive view")
	rootCmd.AddCommand(statusCmd)
}
