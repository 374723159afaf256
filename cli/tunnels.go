package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-switcher/netman"
)

var tunnelsCmd = &cobra.Command{
	Use:   "tunnels",
	Short: "List the VPN connections NetworkManager knows about",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTunnels()
	},
}

func runTunnels() error {
	return withClient(func(ctx context.Context, client *netman.Client) error {
		saved, err := client.SavedTunnels(ctx)
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			fmt.Println("No VPN connections configured.")
			return nil
		}

		active, err := netman.TunnelAttachments(ctx, client)
		if err != nil {
			return err
		}
		activeSet := make(map[string]bool, len(active))
		for _, att := range active {
			activeSet[att.UUID] = true
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "UUID\tNAME\tTYPE\tACTIVE")
		fmt.Fprintln(w, "----\t----\t----\t------")
		for _, tunnel := range saved {
			activeMark := "No"
			if activeSet[tunnel.UUID] {
				activeMark = "Yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tunnel.UUID, tunnel.Name, tunnel.Type, activeMark)
		}
		w.Flush()
		return nil
	})
}

func init() {
	rootCmd.AddCommand(tunnelsCmd)
}
