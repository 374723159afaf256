package switcher

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/yllada/vpn-switcher/common"
)

// NotifyReady tells systemd the daemon finished starting. Outside systemd
// supervision this is a no-op.
func NotifyReady() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		common.LogDebug("sd_notify READY failed: %v", err)
	}
}

// NotifyStopping tells systemd a graceful shutdown has begun.
func NotifyStopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		common.LogDebug("sd_notify STOPPING failed: %v", err)
	}
}

// RunWatchdog pings the systemd watchdog until ctx is cancelled, at half
// the interval systemd announces. It returns immediately when the unit has
// no WatchdogSec configured, so it is safe to start unconditionally.
func RunWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		common.LogDebug("systemd watchdog not enabled")
		return
	}

	interval /= 2
	if interval <= 0 {
		interval = common.WatchdogInterval
	}
	common.LogInfo("systemd watchdog enabled, pinging every %v", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				common.LogWarn("Watchdog ping failed: %v", err)
			}
		}
	}
}
