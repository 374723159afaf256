package policy

import "github.com/yllada/vpn-switcher/netman"

// Evaluation is the outcome of matching the active attachments against a
// trust policy.
type Evaluation struct {
	// Compliant reports whether the tunnel the policy requires right now is
	// active, or that no tunnel runs when none is required.
	Compliant bool
	// DesiredTunnel is the UUID of the tunnel that should be active. Empty
	// means no tunnel is required. Always computed, even when compliant, so
	// callers can remediate without evaluating again.
	DesiredTunnel string
	// MatchedRule is the rule that determined DesiredTunnel. Nil when the
	// fallback applied or no tunnel is required.
	MatchedRule *TrustRule
	// FallbackApplied reports that no rule matched and the fallback tunnel
	// was selected.
	FallbackApplied bool
}

// Evaluate decides which tunnel the current network requires and whether the
// active tunnel set already satisfies it. Rules are consulted in order and
// the first rule matching any link wins; the order links are reported in
// never affects the outcome. Evaluate touches no external state.
func Evaluate(links, tunnels []netman.Attachment, cfg *Config) Evaluation {
	// No links at all: nothing is required and any leftover tunnel is a
	// violation.
	if len(links) == 0 {
		return Evaluation{Compliant: len(tunnels) == 0}
	}

	for i := range cfg.Rules {
		rule := cfg.Rules[i]
		for _, link := range links {
			if rule.Matches(link) {
				return Evaluation{
					Compliant:     tunnelActive(tunnels, rule.VPNUUID),
					DesiredTunnel: rule.VPNUUID,
					MatchedRule:   &cfg.Rules[i],
				}
			}
		}
	}

	if cfg.FallbackVPNUUID != "" {
		return Evaluation{
			Compliant:       tunnelActive(tunnels, cfg.FallbackVPNUUID),
			DesiredTunnel:   cfg.FallbackVPNUUID,
			FallbackApplied: true,
		}
	}

	// No rule matched and no fallback is configured: no tunnel may run.
	return Evaluation{Compliant: len(tunnels) == 0}
}

// tunnelActive reports whether the required tunnel is among the active ones.
// Compliance is membership, not set equality: a second tunnel next to the
// required one is tolerated until a remediation cycle tears everything down.
func tunnelActive(tunnels []netman.Attachment, tunnelUUID string) bool {
	for _, tunnel := range tunnels {
		if tunnel.UUID == tunnelUUID {
			return true
		}
	}
	return false
}
