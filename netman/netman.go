// Package netman provides the control plane for the VPN Switcher.
// This file contains the attachment model and the capability interface the
// switcher core consumes.
package netman

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/yllada/vpn-switcher/common"
)

// Kind classifies an active network attachment.
type Kind string

const (
	KindWired    Kind = "wired"
	KindWireless Kind = "wireless"
	KindVPN      Kind = "vpn"
	KindBridge   Kind = "bridge"
	KindLoopback Kind = "loopback"
	KindOther    Kind = "other"
)

// KindFromConnectionType maps a NetworkManager connection type to a Kind.
func KindFromConnectionType(connType string) Kind {
	switch connType {
	case "802-3-ethernet":
		return KindWired
	case "802-11-wireless":
		return KindWireless
	case "vpn", "wireguard":
		return KindVPN
	case "bridge":
		return KindBridge
	case "loopback":
		return KindLoopback
	default:
		return KindOther
	}
}

// Attachment describes one active connection as reported by the control
// plane. Attachments are produced fresh on every query and never cached.
type Attachment struct {
	// UUID is the connection identifier trust rules and policies refer to.
	UUID string
	// Name is the human-readable connection id.
	Name string
	// Interface is the name of the network interface backing the connection.
	Interface string
	// SSID is set for wireless attachments only.
	SSID string
	// Kind classifies the attachment.
	Kind Kind
	// Path is the D-Bus object path of the active connection, needed to
	// deactivate it.
	Path string
}

// Filter restricts an attachment query by kind. Naming the same kind in both
// Include and Exclude is contradictory and rejected before any query runs.
type Filter struct {
	Include []Kind
	Exclude []Kind
}

// Validate reports contradictory include/exclude combinations.
func (f Filter) Validate() error {
	for _, inc := range f.Include {
		for _, exc := range f.Exclude {
			if inc == exc {
				return fmt.Errorf("%w: kind %q both included and excluded", common.ErrFilterConflict, inc)
			}
		}
	}
	return nil
}

// Allows reports whether an attachment of kind k passes the filter.
func (f Filter) Allows(k Kind) bool {
	if len(f.Include) > 0 {
		for _, inc := range f.Include {
			if inc == k {
				return true
			}
		}
		return false
	}
	for _, exc := range f.Exclude {
		if exc == k {
			return false
		}
	}
	return true
}

// LinkFilter matches the physical link attachments trust rules are written
// against: everything except tunnels, bridges and loopback.
func LinkFilter() Filter {
	return Filter{Exclude: []Kind{KindVPN, KindBridge, KindLoopback}}
}

// TunnelFilter matches tunnel attachments only.
func TunnelFilter() Filter {
	return Filter{Include: []Kind{KindVPN}}
}

// NetworkState mirrors the NetworkManager NMState enumeration.
type NetworkState uint32

const (
	StateUnknown         NetworkState = 0
	StateAsleep          NetworkState = 10
	StateDisconnected    NetworkState = 20
	StateDisconnecting   NetworkState = 30
	StateConnecting      NetworkState = 40
	StateConnectedLocal  NetworkState = 50
	StateConnectedSite   NetworkState = 60
	StateConnectedGlobal NetworkState = 70
)

// String returns a human-readable state name.
func (s NetworkState) String() string {
	switch s {
	case StateAsleep:
		return "asleep"
	case StateDisconnected:
		return "disconnected"
	case StateDisconnecting:
		return "disconnecting"
	case StateConnecting:
		return "connecting"
	case StateConnectedLocal:
		return "connected (local)"
	case StateConnectedSite:
		return "connected (site)"
	case StateConnectedGlobal:
		return "connected (global)"
	default:
		return "unknown"
	}
}

// Connectivity mirrors the NetworkManager NMConnectivityState enumeration.
type Connectivity uint32

const (
	ConnectivityUnknown Connectivity = iota
	ConnectivityNone
	ConnectivityPortal
	ConnectivityLimited
	ConnectivityFull
)

// StateChange is one network change notification from the control plane.
type StateChange struct {
	State NetworkState
}

// ControlPlane is the capability set the switcher core consumes. The
// production implementation talks to NetworkManager over D-Bus; tests
// substitute a fake.
type ControlPlane interface {
	// ListAttachments returns the active attachments passing the filter.
	ListAttachments(ctx context.Context, filter Filter) ([]Attachment, error)
	// DeactivateTunnel tears down one active tunnel attachment.
	DeactivateTunnel(ctx context.Context, att Attachment) error
	// ActivateTunnel brings up the saved connection with the given UUID.
	// An empty UUID is a no-op success.
	ActivateTunnel(ctx context.Context, tunnelUUID string) error
	// CheckReachability reports whether the host currently has full network
	// reachability. An error means reachability is unknown.
	CheckReachability(ctx context.Context) (bool, error)
	// Subscribe delivers network change notifications until ctx is done.
	Subscribe(ctx context.Context) (<-chan StateChange, error)
}

// LinkAttachments lists the physical link attachments rules match against.
func LinkAttachments(ctx context.Context, cp ControlPlane) ([]Attachment, error) {
	return cp.ListAttachments(ctx, LinkFilter())
}

// TunnelAttachments lists the active tunnel attachments.
func TunnelAttachments(ctx context.Context, cp ControlPlane) ([]Attachment, error) {
	return cp.ListAttachments(ctx, TunnelFilter())
}

// DecodeSSID turns the raw SSID bytes reported by NetworkManager into a
// printable string. SSIDs are octet strings with no mandated encoding:
// valid UTF-8 decodes as-is, anything else is hex-encoded so it stays
// loggable and comparable.
func DecodeSSID(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return fmt.Sprintf("0x%x", raw)
}
