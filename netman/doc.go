// Package netman is the NetworkManager control plane for VPN Switcher.
//
// This package implements everything the switcher needs from the host
// network stack:
//   - Querying active connections as Attachments, filtered by kind
//   - Activating and deactivating VPN tunnels
//   - Reachability checks (NetworkManager connectivity or HTTP probe)
//   - Subscribing to network state change notifications
//
// # Usage
//
//	client, err := netman.NewClient()
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	links, err := netman.LinkAttachments(ctx, client)
//	if err != nil {
//		return err
//	}
//	for _, link := range links {
//		fmt.Printf("%s on %s\n", link.Name, link.Interface)
//	}
//
// # Design Principles
//
//   - The ControlPlane interface carries only the capabilities the switcher
//     consumes, so tests can substitute a fake without a bus.
//   - Attachment queries are always fresh; nothing is cached between cycles.
//   - A failure reading one connection never fails the whole query.
package netman
