package switcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/metrics"
	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/policy"
)

// ReachabilityChecker is the probe the switcher polls before activating a
// tunnel. The control plane satisfies it; an HTTP prober can replace it.
type ReachabilityChecker interface {
	CheckReachability(ctx context.Context) (bool, error)
}

// Switcher drives the trust policy: it listens for network change
// notifications, debounces them, and runs at most one switch cycle at a
// time against a consistent snapshot of the network.
type Switcher struct {
	cp       netman.ControlPlane
	store    *policy.Store
	clock    clockwork.Clock
	logger   common.Logger
	notifier common.Notifier
	probe    ReachabilityChecker
	debounce time.Duration

	mu            sync.Mutex
	runCtx        context.Context
	state         CycleState
	debounceTimer clockwork.Timer
	cycleActive   bool
	lastOutcome   Outcome
	onCycleDone   func(Outcome)
}

// New creates a Switcher over the given control plane and policy store,
// with the real clock, the default logger, and the control plane's own
// reachability check.
func New(cp netman.ControlPlane, store *policy.Store) *Switcher {
	return &Switcher{
		cp:       cp,
		store:    store,
		clock:    clockwork.NewRealClock(),
		logger:   common.DefaultLogger(),
		notifier: common.NopNotifier{},
		probe:    cp,
		debounce: common.DebounceDelay,
		runCtx:   context.Background(),
	}
}

// SetNotifier routes remediation notifications to the given notifier.
func (s *Switcher) SetNotifier(n common.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// SetReachabilityChecker replaces the reachability probe, e.g. with an HTTP
// prober against a captive portal detection endpoint.
func (s *Switcher) SetReachabilityChecker(rc ReachabilityChecker) {
	if rc != nil {
		s.probe = rc
	}
}

// SetDebounce overrides how long change notifications are coalesced before
// a cycle starts. Zero runs cycles immediately.
func (s *Switcher) SetDebounce(d time.Duration) {
	if d >= 0 {
		s.debounce = d
	}
}

// SetOnCycleDone registers a callback invoked after every finished cycle.
func (s *Switcher) SetOnCycleDone(callback func(Outcome)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCycleDone = callback
}

// State returns the current cycle state.
func (s *Switcher) State() CycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutcome returns how the most recent cycle ended.
func (s *Switcher) LastOutcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// Run subscribes to network change notifications and blocks until ctx is
// cancelled. systemd is told READY only once the subscription is live. The
// daemon converges once at startup, through the same debounced path as a
// real notification, so a reboot on an untrusted network comes up
// remediated.
func (s *Switcher) Run(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	events, err := s.cp.Subscribe(ctx)
	if err != nil {
		return err
	}

	NotifyReady()
	defer NotifyStopping()

	s.logger.Info("VPN switcher daemon started")
	s.OnNetworkChange()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("VPN switcher stopping gracefully")
			s.cancelPending()
			return nil
		case change, ok := <-events:
			if !ok {
				s.cancelPending()
				if ctx.Err() != nil {
					s.logger.Info("VPN switcher stopping gracefully")
					return nil
				}
				return errors.New("network change subscription closed unexpectedly")
			}
			s.logger.Debug("Network state changed: %s", change.State)
			s.OnNetworkChange()
		}
	}
}

// OnNetworkChange schedules an evaluation after the debounce delay.
// Repeated notifications reset the delay so only the latest one runs, and a
// notification arriving while a cycle is executing never spawns a second
// cycle.
func (s *Switcher) OnNetworkChange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Reset(s.debounce)
		return
	}
	s.debounceTimer = s.clock.AfterFunc(s.debounce, s.debounceFired)
}

func (s *Switcher) debounceFired() {
	s.mu.Lock()
	s.debounceTimer = nil
	if s.cycleActive {
		// The running cycle owns the control plane. Its snapshot is already
		// stale, but the next notification schedules a fresh evaluation.
		s.mu.Unlock()
		s.logger.Debug("Switch cycle already in flight, dropping notification")
		return
	}
	s.cycleActive = true
	ctx := s.runCtx
	s.mu.Unlock()

	go s.runCycle(ctx)
}

func (s *Switcher) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
}

// runCycle executes one full switch cycle. Every failure is contained: the
// cycle ends with an outcome and the daemon keeps listening.
func (s *Switcher) runCycle(ctx context.Context) {
	cycleID := common.TruncateID(uuid.NewString(), 8)
	started := s.clock.Now()

	outcome := OutcomeError
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Cycle %s: unexpected panic: %v", cycleID, r)
			outcome = OutcomeError
		}
		s.finishCycle(outcome, s.clock.Since(started))
	}()

	outcome = s.cycle(ctx, cycleID)
}

func (s *Switcher) finishCycle(outcome Outcome, elapsed time.Duration) {
	metrics.ObserveCycle(string(outcome), elapsed)

	s.mu.Lock()
	s.cycleActive = false
	s.state = StateIdle
	s.lastOutcome = outcome
	callback := s.onCycleDone
	s.mu.Unlock()

	if callback != nil {
		callback(outcome)
	}
}

func (s *Switcher) setState(state CycleState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Debug("Cycle state: %s", state)
}

// cycle is the state machine body: snapshot, evaluate, and when the host is
// not compliant tear down every tunnel, wait for reachability, and activate
// the required one. The policy is read fresh each cycle so CLI edits apply
// without a restart.
func (s *Switcher) cycle(ctx context.Context, cycleID string) Outcome {
	s.setState(StateEvaluating)

	cfg, err := s.store.Load()
	if err != nil {
		// Never act on a policy that failed to load; keeping the current
		// tunnels up is safer than converging on a guess.
		s.logger.Error("Cycle %s aborted: %v", cycleID, err)
		return OutcomeError
	}

	links, err := s.queryLinks(ctx)
	if err != nil {
		s.logger.Error("Cycle %s: failed to list link attachments: %v", cycleID, err)
		return OutcomeError
	}
	tunnels, err := s.queryTunnels(ctx)
	if err != nil {
		s.logger.Error("Cycle %s: failed to list tunnel attachments: %v", cycleID, err)
		return OutcomeError
	}

	ev := policy.Evaluate(links, tunnels, cfg)
	metrics.SetCompliant(ev.Compliant)

	if len(links) == 0 {
		// No network to protect. Leftover tunnels stay untouched; the
		// evaluator still reports them as non-compliant.
		s.logger.Info("No active connections found")
		return OutcomeNoNetwork
	}

	if ev.Compliant {
		s.logger.Debug("Cycle %s: compliant, required tunnel: %s", cycleID, describeTunnel(ev.DesiredTunnel))
		return OutcomeCompliant
	}

	s.logger.Info("Cycle %s: not compliant, required tunnel: %s", cycleID, describeTunnel(ev.DesiredTunnel))

	s.setState(StateTearingDown)
	s.teardownTunnels(ctx, tunnels)

	if ev.DesiredTunnel == "" {
		// The teardown already converged us.
		s.logger.Info("Cycle %s: no tunnel required on this network", cycleID)
		s.notifyIcon("VPN Switcher", "VPN deactivated, this network requires no tunnel", "network-vpn-disconnected")
		return OutcomeRemediated
	}

	s.setState(StateAwaitingReachability)
	if !s.awaitReachability(ctx, cfg.CheckTimeout(), cfg.CheckInterval()) {
		if ctx.Err() != nil {
			s.logger.Info("Cycle %s: cancelled while waiting for reachability", cycleID)
			return OutcomeCancelled
		}
		// Fail safe: no tunnel rather than a tunnel on a dead network.
		s.logger.Warn("Internet never became available, leaving tunnels down")
		s.notifyIcon("VPN Switcher", "Network unreachable, leaving VPN down", "dialog-warning")
		return OutcomeUnreachable
	}

	s.setState(StateActivating)
	s.logger.Info("Activating VPN with UUID: %s", ev.DesiredTunnel)
	if err := s.activateTunnel(ctx, ev.DesiredTunnel); err != nil {
		metrics.TunnelActivation(false)
		s.logger.Error("Cycle %s: failed to activate tunnel %s: %v", cycleID, ev.DesiredTunnel, err)
		s.notifyIcon("VPN Switcher", "Failed to activate tunnel "+common.TruncateID(ev.DesiredTunnel, 8), "network-vpn-error")
		return OutcomeError
	}
	metrics.TunnelActivation(true)
	s.logger.Info("Cycle %s: activated tunnel %s", cycleID, ev.DesiredTunnel)
	s.notify("VPN Switched", "Activated tunnel "+common.TruncateID(ev.DesiredTunnel, 8))
	return OutcomeRemediated
}

// teardownTunnels deactivates every active tunnel, continuing past
// individual failures so one stuck tunnel cannot keep another one up.
func (s *Switcher) teardownTunnels(ctx context.Context, tunnels []netman.Attachment) {
	for _, tunnel := range tunnels {
		if err := s.deactivateTunnel(ctx, tunnel); err != nil {
			metrics.TunnelDeactivation(false)
			s.logger.Warn("VPN deactivation error: %v", err)
			continue
		}
		metrics.TunnelDeactivation(true)
		s.logger.Info("Deactivated active VPN %s", tunnel.Name)
	}
}

// awaitReachability polls the probe once per interval until it reports
// reachable, up to attempts probes in total. A probe error counts as not
// reachable for that attempt. There is no sleep after the last probe.
func (s *Switcher) awaitReachability(ctx context.Context, attempts int, interval time.Duration) bool {
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		reachable, err := s.checkReachability(ctx)
		if err != nil {
			s.logger.Warn("Internet check failed: %v", err)
		}
		metrics.ReachabilityProbe(reachable)
		if reachable {
			return true
		}
		s.logger.Debug("Internet not reachable yet (attempt %d/%d)", attempt, attempts)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-s.clock.After(interval):
		}
	}
	return false
}

func (s *Switcher) queryLinks(ctx context.Context) ([]netman.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, common.QueryTimeout)
	defer cancel()
	return netman.LinkAttachments(ctx, s.cp)
}

func (s *Switcher) queryTunnels(ctx context.Context) ([]netman.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, common.QueryTimeout)
	defer cancel()
	return netman.TunnelAttachments(ctx, s.cp)
}

func (s *Switcher) deactivateTunnel(ctx context.Context, tunnel netman.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, common.QueryTimeout)
	defer cancel()
	return s.cp.DeactivateTunnel(ctx, tunnel)
}

func (s *Switcher) activateTunnel(ctx context.Context, tunnelUUID string) error {
	ctx, cancel := context.WithTimeout(ctx, common.QueryTimeout)
	defer cancel()
	return s.cp.ActivateTunnel(ctx, tunnelUUID)
}

func (s *Switcher) checkReachability(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, common.QueryTimeout)
	defer cancel()
	return s.probe.CheckReachability(ctx)
}

func (s *Switcher) notify(title, message string) {
	if err := s.notifier.Notify(title, message); err != nil {
		s.logger.Debug("Notification failed: %v", err)
	}
}

func (s *Switcher) notifyIcon(title, message, icon string) {
	if err := s.notifier.NotifyWithIcon(title, message, icon); err != nil {
		s.logger.Debug("Notification failed: %v", err)
	}
}

func describeTunnel(tunnelUUID string) string {
	if tunnelUUID == "" {
		return "none"
	}
	return tunnelUUID
}
