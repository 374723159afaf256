package netman

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/vpn-switcher/common"
)

const (
	nmInterface         = "org.freedesktop.NetworkManager"
	nmActiveConnIface   = "org.freedesktop.NetworkManager.Connection.Active"
	nmDeviceIface       = "org.freedesktop.NetworkManager.Device"
	nmWirelessIface     = "org.freedesktop.NetworkManager.Device.Wireless"
	nmAccessPointIface  = "org.freedesktop.NetworkManager.AccessPoint"
	nmSettingsIface     = "org.freedesktop.NetworkManager.Settings"
	nmSettingsConnIface = "org.freedesktop.NetworkManager.Settings.Connection"
	propertiesIface     = "org.freedesktop.DBus.Properties"
)

// Client is the NetworkManager-backed control plane. It owns a system bus
// connection and translates between D-Bus objects and Attachments.
type Client struct {
	conn *dbus.Conn
	nm   dbus.BusObject
}

// NewClient connects to the system bus and binds the NetworkManager object.
func NewClient() (*Client, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBusUnavailable, err)
	}
	return &Client{
		conn: conn,
		nm:   conn.Object(common.NMService, dbus.ObjectPath(common.NMObjectPath)),
	}, nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// prop reads one D-Bus property through the Properties interface so the
// call honors the caller's context.
func (c *Client) prop(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	obj := c.conn.Object(common.NMService, path)
	if err := obj.CallWithContext(ctx, propertiesIface+".Get", 0, iface, name).Store(&v); err != nil {
		return dbus.Variant{}, fmt.Errorf("failed to read %s.%s on %s: %w", iface, name, path, err)
	}
	return v, nil
}

func (c *Client) stringProp(ctx context.Context, path dbus.ObjectPath, iface, name string) (string, error) {
	v, err := c.prop(ctx, path, iface, name)
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("property %s.%s is not a string", iface, name)
	}
	return s, nil
}

// ListAttachments returns the active attachments passing the filter. A
// failure reading one connection skips that connection only; the query as a
// whole fails only when NetworkManager itself cannot be reached.
func (c *Client) ListAttachments(ctx context.Context, filter Filter) ([]Attachment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	paths, err := c.activeConnectionPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active connections: %w", err)
	}

	attachments := make([]Attachment, 0, len(paths))
	for _, path := range paths {
		found, err := c.connectionAttachments(ctx, path)
		if err != nil {
			common.LogWarn("Failed to extract connection info for %s: %v", path, err)
			continue
		}
		for _, att := range found {
			if filter.Allows(att.Kind) {
				attachments = append(attachments, att)
			}
		}
	}
	return attachments, nil
}

func (c *Client) activeConnectionPaths(ctx context.Context) ([]dbus.ObjectPath, error) {
	v, err := c.prop(ctx, dbus.ObjectPath(common.NMObjectPath), nmInterface, "ActiveConnections")
	if err != nil {
		return nil, err
	}
	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("unexpected ActiveConnections type %T", v.Value())
	}
	return paths, nil
}

// connectionAttachments expands one active connection into attachments, one
// per backing device. Device-less connections still yield one attachment so
// they remain visible to teardown.
func (c *Client) connectionAttachments(ctx context.Context, path dbus.ObjectPath) ([]Attachment, error) {
	connType, err := c.stringProp(ctx, path, nmActiveConnIface, "Type")
	if err != nil {
		return nil, err
	}
	name, err := c.stringProp(ctx, path, nmActiveConnIface, "Id")
	if err != nil {
		return nil, err
	}
	connUUID, err := c.stringProp(ctx, path, nmActiveConnIface, "Uuid")
	if err != nil {
		return nil, err
	}

	base := Attachment{
		UUID: connUUID,
		Name: name,
		Kind: KindFromConnectionType(connType),
		Path: string(path),
	}

	v, err := c.prop(ctx, path, nmActiveConnIface, "Devices")
	if err != nil {
		return nil, err
	}
	devices, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("unexpected Devices type %T", v.Value())
	}
	if len(devices) == 0 {
		return []Attachment{base}, nil
	}

	attachments := make([]Attachment, 0, len(devices))
	for _, device := range devices {
		att := base
		iface, err := c.stringProp(ctx, device, nmDeviceIface, "Interface")
		if err != nil {
			return nil, err
		}
		att.Interface = iface

		if att.Kind == KindWireless {
			ssid, err := c.activeSSID(ctx, device)
			if err != nil {
				common.LogWarn("Could not get SSID for %s: %v", iface, err)
			} else {
				att.SSID = ssid
			}
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func (c *Client) activeSSID(ctx context.Context, device dbus.ObjectPath) (string, error) {
	v, err := c.prop(ctx, device, nmWirelessIface, "ActiveAccessPoint")
	if err != nil {
		return "", err
	}
	apPath, ok := v.Value().(dbus.ObjectPath)
	if !ok || apPath == "/" {
		// Wireless device without an associated access point.
		return "", nil
	}
	sv, err := c.prop(ctx, apPath, nmAccessPointIface, "Ssid")
	if err != nil {
		return "", err
	}
	raw, ok := sv.Value().([]byte)
	if !ok {
		return "", fmt.Errorf("unexpected Ssid type %T", sv.Value())
	}
	return DecodeSSID(raw), nil
}

// DeactivateTunnel tears down one active tunnel attachment.
func (c *Client) DeactivateTunnel(ctx context.Context, att Attachment) error {
	if att.Path == "" {
		return fmt.Errorf("attachment %s has no active connection path", att.UUID)
	}
	call := c.nm.CallWithContext(ctx, nmInterface+".DeactivateConnection", 0, dbus.ObjectPath(att.Path))
	if call.Err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", att.Name, call.Err)
	}
	return nil
}

// ActivateTunnel brings up the saved connection with the given UUID. The
// device and specific object are left for NetworkManager to pick.
func (c *Client) ActivateTunnel(ctx context.Context, tunnelUUID string) error {
	if tunnelUUID == "" {
		return nil
	}
	connPath, err := c.settingsPathByUUID(ctx, tunnelUUID)
	if err != nil {
		return err
	}

	root := dbus.ObjectPath("/")
	var activePath dbus.ObjectPath
	err = c.nm.CallWithContext(ctx, nmInterface+".ActivateConnection", 0, connPath, root, root).Store(&activePath)
	if err != nil {
		return fmt.Errorf("failed to activate tunnel %s: %w", tunnelUUID, err)
	}
	common.LogDebug("Activation started for %s (active path %s)", tunnelUUID, activePath)
	return nil
}

func (c *Client) listSettingsConnections(ctx context.Context) ([]dbus.ObjectPath, error) {
	settings := c.conn.Object(common.NMService, dbus.ObjectPath(common.NMSettingsPath))
	var paths []dbus.ObjectPath
	if err := settings.CallWithContext(ctx, nmSettingsIface+".ListConnections", 0).Store(&paths); err != nil {
		return nil, fmt.Errorf("failed to list saved connections: %w", err)
	}
	return paths, nil
}

// savedConnection is the subset of a settings profile the switcher needs.
type savedConnection struct {
	UUID string
	Name string
	Type string
}

func (c *Client) connectionSettings(ctx context.Context, path dbus.ObjectPath) (savedConnection, error) {
	obj := c.conn.Object(common.NMService, path)
	var settings map[string]map[string]dbus.Variant
	if err := obj.CallWithContext(ctx, nmSettingsConnIface+".GetSettings", 0).Store(&settings); err != nil {
		return savedConnection{}, err
	}
	section, ok := settings["connection"]
	if !ok {
		return savedConnection{}, fmt.Errorf("connection section missing in %s", path)
	}

	var sc savedConnection
	if v, ok := section["uuid"]; ok {
		sc.UUID, _ = v.Value().(string)
	}
	if v, ok := section["id"]; ok {
		sc.Name, _ = v.Value().(string)
	}
	if v, ok := section["type"]; ok {
		sc.Type, _ = v.Value().(string)
	}
	return sc, nil
}

func (c *Client) settingsPathByUUID(ctx context.Context, tunnelUUID string) (dbus.ObjectPath, error) {
	paths, err := c.listSettingsConnections(ctx)
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		sc, err := c.connectionSettings(ctx, path)
		if err != nil {
			common.LogWarn("Could not read settings for %s: %v", path, err)
			continue
		}
		if sc.UUID == tunnelUUID {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", common.ErrTunnelNotFound, tunnelUUID)
}

// SavedTunnel is a VPN connection configured in NetworkManager settings.
type SavedTunnel struct {
	UUID string
	Name string
	Type string
}

// SavedTunnels lists the VPN and WireGuard connections configured in
// NetworkManager, whether active or not.
func (c *Client) SavedTunnels(ctx context.Context) ([]SavedTunnel, error) {
	paths, err := c.listSettingsConnections(ctx)
	if err != nil {
		return nil, err
	}

	var tunnels []SavedTunnel
	for _, path := range paths {
		sc, err := c.connectionSettings(ctx, path)
		if err != nil {
			common.LogWarn("Could not read settings for %s: %v", path, err)
			continue
		}
		if KindFromConnectionType(sc.Type) != KindVPN {
			continue
		}
		tunnels = append(tunnels, SavedTunnel{UUID: sc.UUID, Name: sc.Name, Type: sc.Type})
	}
	return tunnels, nil
}

// FindTunnelByName resolves a saved VPN connection name to its UUID.
func (c *Client) FindTunnelByName(ctx context.Context, name string) (string, error) {
	tunnels, err := c.SavedTunnels(ctx)
	if err != nil {
		return "", err
	}
	for _, tunnel := range tunnels {
		if tunnel.Name == name {
			return tunnel.UUID, nil
		}
	}
	return "", fmt.Errorf("%w: no VPN connection named %q", common.ErrTunnelNotFound, name)
}

// CheckReachability asks NetworkManager to run its connectivity check. Only
// full connectivity counts; portal or limited states stay unreachable so the
// switcher keeps waiting instead of activating a tunnel into a captive
// portal.
func (c *Client) CheckReachability(ctx context.Context) (bool, error) {
	var state uint32
	if err := c.nm.CallWithContext(ctx, nmInterface+".CheckConnectivity", 0).Store(&state); err != nil {
		return false, fmt.Errorf("connectivity check failed: %w", err)
	}
	return Connectivity(state) == ConnectivityFull, nil
}

// Subscribe delivers NetworkManager StateChanged notifications until ctx is
// done. The returned channel is closed on cancellation.
func (c *Client) Subscribe(ctx context.Context) (<-chan StateChange, error) {
	err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbus.ObjectPath(common.NMObjectPath)),
		dbus.WithMatchInterface(nmInterface),
		dbus.WithMatchMember("StateChanged"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to state changes: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	events := make(chan StateChange, 1)
	go func() {
		defer close(events)
		defer c.conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig.Name != nmInterface+".StateChanged" || len(sig.Body) == 0 {
					continue
				}
				state, ok := sig.Body[0].(uint32)
				if !ok {
					continue
				}
				select {
				case events <- StateChange{State: NetworkState(state)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
