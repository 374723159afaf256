// Package policy defines the trust policy for VPN Switcher and evaluates it
// against the network the host is attached to.
//
// A policy is an ordered list of trust rules, each mapping an SSID or an
// interface name to the VPN tunnel that network requires, plus an optional
// fallback tunnel for networks no rule matches. Evaluate is a pure function
// over the active attachments; the Store handles the YAML file on disk.
//
// # Usage
//
//	store := policy.NewStore(path)
//	cfg, err := store.Load()
//	if err != nil {
//		return err
//	}
//	ev := policy.Evaluate(links, tunnels, cfg)
//	if !ev.Compliant {
//		// tear down and activate ev.DesiredTunnel
//	}
//
// # Design Principles
//
//   - Rules are consulted in order and the first match wins, so policy files
//     read top to bottom like firewall rules.
//   - Unset rule fields never match; an empty SSID in a rule does not match
//     a wired link's empty SSID.
//   - Compliance requires the one tunnel the policy names to be active, and
//     no tunnel at all when the policy names none.
package policy
