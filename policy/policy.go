package policy

import (
	"fmt"
	"time"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/netman"
)

// TrustRule maps one network attachment to the tunnel it requires. A rule
// matches an attachment when its SSID equals the attachment's SSID or its
// Interface equals the attachment's interface name. Unset selector fields
// never match, so a rule without an SSID cannot match a wired link just
// because both SSIDs are empty.
type TrustRule struct {
	SSID      string `yaml:"ssid,omitempty"`
	Interface string `yaml:"interface,omitempty"`
	VPNUUID   string `yaml:"vpn_uuid"`
}

// Matches reports whether the rule applies to the given attachment.
func (r TrustRule) Matches(att netman.Attachment) bool {
	if r.SSID != "" && r.SSID == att.SSID {
		return true
	}
	if r.Interface != "" && r.Interface == att.Interface {
		return true
	}
	return false
}

// Describe returns a short human-readable selector for the rule.
func (r TrustRule) Describe() string {
	switch {
	case r.SSID != "" && r.Interface != "":
		return fmt.Sprintf("ssid=%s interface=%s", r.SSID, r.Interface)
	case r.SSID != "":
		return "ssid=" + r.SSID
	case r.Interface != "":
		return "interface=" + r.Interface
	default:
		return "(empty)"
	}
}

func (r TrustRule) validate() error {
	if r.VPNUUID == "" {
		return fmt.Errorf("%w: vpn_uuid is required", common.ErrInvalidRule)
	}
	if r.SSID == "" && r.Interface == "" {
		return fmt.Errorf("%w: ssid or interface is required", common.ErrInvalidRule)
	}
	return nil
}

// Config is the trust policy the daemon enforces: an ordered rule list, an
// optional fallback tunnel for unmatched networks, and the reachability wait
// settings.
type Config struct {
	// Rules are consulted in file order; the first match wins.
	Rules []TrustRule `yaml:"trusted_connections"`
	// FallbackVPNUUID is the tunnel required on networks no rule matches.
	// Empty means unmatched networks need no tunnel.
	FallbackVPNUUID string `yaml:"fallback_vpn_uuid,omitempty"`
	// CheckTimeoutSeconds is the number of reachability probes per cycle.
	// A pointer so an explicit zero (fail immediately) stays distinguishable
	// from an absent key (default).
	CheckTimeoutSeconds *int `yaml:"check_timeout_seconds,omitempty"`
	// CheckIntervalSeconds is the delay between reachability probes.
	CheckIntervalSeconds int `yaml:"check_interval_seconds,omitempty"`
}

// CheckTimeout returns the number of reachability probes per cycle.
func (c *Config) CheckTimeout() int {
	if c.CheckTimeoutSeconds == nil {
		return common.DefaultCheckTimeout
	}
	return *c.CheckTimeoutSeconds
}

// CheckInterval returns the delay between reachability probes.
func (c *Config) CheckInterval() time.Duration {
	if c.CheckIntervalSeconds <= 0 {
		return common.DefaultCheckInterval
	}
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

func (c *Config) validate() error {
	for i, rule := range c.Rules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("rule %d (%s): %w", i+1, rule.Describe(), err)
		}
	}
	if c.CheckTimeoutSeconds != nil && *c.CheckTimeoutSeconds < 0 {
		return fmt.Errorf("check_timeout_seconds must not be negative")
	}
	if c.CheckIntervalSeconds < 0 {
		return fmt.Errorf("check_interval_seconds must not be negative")
	}
	return nil
}
