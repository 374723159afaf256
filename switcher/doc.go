// Package switcher is the daemon core of VPN Switcher: it reacts to network
// change notifications and converges the active VPN tunnels onto what the
// trust policy requires.
//
// Notifications are debounced so a flapping interface triggers one cycle,
// not one per event, and only the latest notification survives. A cycle
// snapshots the network once, evaluates the policy against the snapshot,
// and when the host is out of compliance tears down every active tunnel,
// waits for reachability, and activates the required one. One cycle runs at
// a time; notifications landing mid-cycle are dropped and the next real
// change re-evaluates.
//
// # Usage
//
//	sw := switcher.New(client, store)
//	sw.SetNotifier(notifier)
//	if err := sw.Run(ctx); err != nil {
//		return err
//	}
//
// # Design Principles
//
//   - Fail safe: when the network never becomes reachable the cycle ends
//     with no tunnel up instead of retrying forever.
//   - A failed cycle is contained; the daemon keeps listening and the next
//     network change starts a fresh cycle.
//   - Time is injected through clockwork so debounce and retry behavior is
//     testable without real sleeps.
package switcher
