// Package notify delivers desktop notifications through the freedesktop
// notification service on the session bus. Headless hosts simply fail New
// and callers fall back to common.NopNotifier.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/vpn-switcher/common"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
	notifyMethod  = "org.freedesktop.Notifications.Notify"

	defaultIcon = "network-vpn"

	// Notifications expire on their own; tunnel switches are transient news.
	expireTimeoutMs = 5000
)

// DesktopNotifier sends desktop notifications. It implements
// common.Notifier.
type DesktopNotifier struct {
	conn *dbus.Conn
}

// New connects to the session bus.
func New() (*DesktopNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBusUnavailable, err)
	}
	return &DesktopNotifier{conn: conn}, nil
}

// Close releases the bus connection.
func (n *DesktopNotifier) Close() error {
	return n.conn.Close()
}

// Notify sends a notification with the default VPN icon.
func (n *DesktopNotifier) Notify(title, message string) error {
	return n.NotifyWithIcon(title, message, defaultIcon)
}

// NotifyWithIcon sends a notification with a custom icon name.
func (n *DesktopNotifier) NotifyWithIcon(title, message, icon string) error {
	obj := n.conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		common.AppName,
		uint32(0), // do not replace previous notifications
		icon,
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		int32(expireTimeoutMs),
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
