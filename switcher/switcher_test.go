package switcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/policy"
)

const (
	vpnHome     = "11111111-1111-1111-1111-111111111111"
	vpnOffice   = "22222222-2222-2222-2222-222222222222"
	vpnFallback = "33333333-3333-3333-3333-333333333333"
)

func intPtr(n int) *int { return &n }

func wifiAtt(ssid string) netman.Attachment {
	return netman.Attachment{
		UUID:      "link-" + ssid,
		Name:      ssid,
		Interface: "wlan0",
		SSID:      ssid,
		Kind:      netman.KindWireless,
	}
}

func wiredAtt(iface string) netman.Attachment {
	return netman.Attachment{
		UUID:      "link-" + iface,
		Name:      "Wired connection",
		Interface: iface,
		Kind:      netman.KindWired,
	}
}

func tunnelAtt(tunnelUUID string) netman.Attachment {
	return netman.Attachment{
		UUID: tunnelUUID,
		Name: "tunnel-" + tunnelUUID[:8],
		Kind: netman.KindVPN,
		Path: "/org/freedesktop/NetworkManager/ActiveConnection/1",
	}
}

// fakeControlPlane implements netman.ControlPlane in memory. Activations
// and deactivations mutate the tunnel set so consecutive cycles observe
// each other's effects.
type fakeControlPlane struct {
	mu            sync.Mutex
	links         []netman.Attachment
	tunnels       []netman.Attachment
	reachable     bool
	probeErr      error
	probeResults  []bool
	probeCalls    int
	listCalls     int
	activateCalls int
	activated     []string
	deactivated   []string
	activateErr   error
	deactivateErr map[string]error
	listEntered   chan struct{}
	listGate      chan struct{}
	events        chan netman.StateChange
}

func newFakeControlPlane() *fakeControlPlane {
	return &fakeControlPlane{
		reachable:     true,
		deactivateErr: map[string]error{},
		events:        make(chan netman.StateChange),
	}
}

func (f *fakeControlPlane) ListAttachments(ctx context.Context, filter netman.Filter) ([]netman.Attachment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.listCalls++
	entered := f.listEntered
	f.listEntered = nil
	gate := f.listGate
	all := append(append([]netman.Attachment{}, f.links...), f.tunnels...)
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	var out []netman.Attachment
	for _, att := range all {
		if filter.Allows(att.Kind) {
			out = append(out, att)
		}
	}
	return out, nil
}

func (f *fakeControlPlane) DeactivateTunnel(ctx context.Context, att netman.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deactivateErr[att.UUID]; err != nil {
		return err
	}
	f.deactivated = append(f.deactivated, att.UUID)
	kept := f.tunnels[:0]
	for _, tunnel := range f.tunnels {
		if tunnel.UUID != att.UUID {
			kept = append(kept, tunnel)
		}
	}
	f.tunnels = kept
	return nil
}

func (f *fakeControlPlane) ActivateTunnel(ctx context.Context, tunnelUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activateCalls++
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, tunnelUUID)
	f.tunnels = append(f.tunnels, tunnelAtt(tunnelUUID))
	return nil
}

func (f *fakeControlPlane) CheckReachability(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	if len(f.probeResults) > 0 {
		next := f.probeResults[0]
		f.probeResults = f.probeResults[1:]
		return next, nil
	}
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return f.reachable, nil
}

func (f *fakeControlPlane) Subscribe(ctx context.Context) (<-chan netman.StateChange, error) {
	return f.events, nil
}

func (f *fakeControlPlane) snapshot() (activated, deactivated []string, probes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.activated...), append([]string{}, f.deactivated...), f.probeCalls
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func newTestSwitcher(t *testing.T, cp *fakeControlPlane, cfg *policy.Config) *Switcher {
	t.Helper()
	store := policy.NewStore(filepath.Join(t.TempDir(), "policy.yaml"))
	if cfg != nil {
		if err := store.Save(cfg); err != nil {
			t.Fatalf("failed to seed policy: %v", err)
		}
	}
	return New(cp, store)
}

func homePolicy() *policy.Config {
	return &policy.Config{
		Rules: []policy.TrustRule{
			{SSID: "HomeWifi", VPNUUID: vpnHome},
			{Interface: "eth0", VPNUUID: vpnOffice},
		},
		FallbackVPNUUID:      vpnFallback,
		CheckTimeoutSeconds:  intPtr(3),
		CheckIntervalSeconds: 1,
	}
}

func TestCycleCompliantTouchesNothing(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeCompliant {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeCompliant)
	}
	activated, deactivated, _ := cp.snapshot()
	if len(activated) != 0 || len(deactivated) != 0 {
		t.Errorf("compliant cycle must not touch tunnels, got activated=%v deactivated=%v", activated, deactivated)
	}
	if got := s.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v after the cycle", got, StateIdle)
	}
}

func TestCycleSwitchesWrongTunnel(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wiredAtt("eth0")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
	activated, deactivated, probes := cp.snapshot()
	if len(deactivated) != 1 || deactivated[0] != vpnHome {
		t.Errorf("deactivated = %v, want [%s]", deactivated, vpnHome)
	}
	if len(activated) != 1 || activated[0] != vpnOffice {
		t.Errorf("activated = %v, want [%s]", activated, vpnOffice)
	}
	if probes != 1 {
		t.Errorf("probeCalls = %d, want 1 when the first probe succeeds", probes)
	}
}

func TestCycleActivatesFallbackOnUnmatchedNetwork(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("CoffeeShop")}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
	activated, deactivated, _ := cp.snapshot()
	if len(deactivated) != 0 {
		t.Errorf("deactivated = %v, want none", deactivated)
	}
	if len(activated) != 1 || activated[0] != vpnFallback {
		t.Errorf("activated = %v, want [%s]", activated, vpnFallback)
	}
}

func TestCycleWrongTunnelsAreReplaced(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnOffice), tunnelAtt(vpnFallback)}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
	activated, deactivated, _ := cp.snapshot()
	if len(deactivated) != 2 {
		t.Errorf("deactivated = %v, want both tunnels torn down", deactivated)
	}
	if len(activated) != 1 || activated[0] != vpnHome {
		t.Errorf("activated = %v, want [%s]", activated, vpnHome)
	}
}

func TestCycleRequiredTunnelAmongOthersIsLeftAlone(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome), tunnelAtt(vpnOffice)}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeCompliant {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeCompliant)
	}
	activated, deactivated, _ := cp.snapshot()
	if len(activated) != 0 || len(deactivated) != 0 {
		t.Error("a compliant cycle must not touch any tunnel")
	}
}

func TestCycleNoNetwork(t *testing.T) {
	cp := newFakeControlPlane()
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeNoNetwork {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeNoNetwork)
	}
	activated, deactivated, probes := cp.snapshot()
	if len(activated) != 0 || len(deactivated) != 0 || probes != 0 {
		t.Error("a cycle with no network must not touch the control plane")
	}
}

func TestCycleNoLinksLeavesTunnelsUntouched(t *testing.T) {
	cp := newFakeControlPlane()
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeNoNetwork {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeNoNetwork)
	}
	activated, deactivated, probes := cp.snapshot()
	if len(activated) != 0 || len(deactivated) != 0 || probes != 0 {
		t.Error("a cycle without links must not touch the control plane")
	}
}

func TestCycleTeardownOnlyWhenNoTunnelRequired(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("CoffeeShop")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, &policy.Config{
		Rules: []policy.TrustRule{{SSID: "HomeWifi", VPNUUID: vpnHome}},
	})

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
	activated, deactivated, probes := cp.snapshot()
	if len(deactivated) != 1 || deactivated[0] != vpnHome {
		t.Errorf("deactivated = %v, want [%s]", deactivated, vpnHome)
	}
	if len(activated) != 0 {
		t.Errorf("activated = %v, want none on an untrusted network", activated)
	}
	if probes != 0 {
		t.Errorf("probeCalls = %d, want 0 when no tunnel is required", probes)
	}
}

func TestCycleTeardownContinuesPastFailures(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("CoffeeShop")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome), tunnelAtt(vpnOffice)}
	cp.deactivateErr[vpnHome] = errors.New("device busy")
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	_, deactivated, _ := cp.snapshot()
	if len(deactivated) != 1 || deactivated[0] != vpnOffice {
		t.Errorf("deactivated = %v, want the second tunnel despite the first failing", deactivated)
	}
	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
}

func TestCycleActivationFailureIsNotRetried(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.activateErr = errors.New("activation rejected")
	s := newTestSwitcher(t, cp, homePolicy())

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeError {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeError)
	}
	cp.mu.Lock()
	calls := cp.activateCalls
	cp.mu.Unlock()
	if calls != 1 {
		t.Errorf("activateCalls = %d, want exactly 1", calls)
	}
}

func TestCycleAbortsOnBrokenPolicy(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnOffice)}
	s := newTestSwitcher(t, cp, nil)
	if err := writeFile(s.store.Path(), "trusted_connections: [broken\n"); err != nil {
		t.Fatalf("failed to corrupt policy: %v", err)
	}

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeError {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeError)
	}
	activated, deactivated, _ := cp.snapshot()
	if len(activated) != 0 || len(deactivated) != 0 {
		t.Error("a cycle with an unreadable policy must not touch tunnels")
	}
}

func TestCycleReachabilityTimeout(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnOffice)}
	cp.reachable = false
	s := newTestSwitcher(t, cp, homePolicy())
	fc := clockwork.NewFakeClock()
	s.clock = fc

	done := make(chan struct{})
	go func() {
		s.runCycle(context.Background())
		close(done)
	}()

	// Three probes with a one second wait between them, none after the
	// last.
	for i := 0; i < 2; i++ {
		fc.BlockUntil(1)
		fc.Advance(time.Second)
	}
	<-done

	if got := s.LastOutcome(); got != OutcomeUnreachable {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeUnreachable)
	}
	activated, deactivated, probes := cp.snapshot()
	if probes != 3 {
		t.Errorf("probeCalls = %d, want exactly 3", probes)
	}
	if len(activated) != 0 {
		t.Errorf("activated = %v, want none when unreachable", activated)
	}
	if len(deactivated) != 1 {
		t.Errorf("deactivated = %v, want the wrong tunnel torn down first", deactivated)
	}
}

func TestCycleReachabilityRecovers(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.probeResults = []bool{false, false, true}
	s := newTestSwitcher(t, cp, homePolicy())
	fc := clockwork.NewFakeClock()
	s.clock = fc

	done := make(chan struct{})
	go func() {
		s.runCycle(context.Background())
		close(done)
	}()

	for i := 0; i < 2; i++ {
		fc.BlockUntil(1)
		fc.Advance(time.Second)
	}
	<-done

	if got := s.LastOutcome(); got != OutcomeRemediated {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeRemediated)
	}
	activated, _, probes := cp.snapshot()
	if probes != 3 {
		t.Errorf("probeCalls = %d, want 3", probes)
	}
	if len(activated) != 1 || activated[0] != vpnHome {
		t.Errorf("activated = %v, want [%s] once reachable", activated, vpnHome)
	}
}

func TestCycleZeroTimeoutFailsImmediately(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cfg := homePolicy()
	cfg.CheckTimeoutSeconds = intPtr(0)
	s := newTestSwitcher(t, cp, cfg)

	s.runCycle(context.Background())

	if got := s.LastOutcome(); got != OutcomeUnreachable {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeUnreachable)
	}
	activated, _, probes := cp.snapshot()
	if probes != 0 {
		t.Errorf("probeCalls = %d, want 0 with a zero timeout", probes)
	}
	if len(activated) != 0 {
		t.Errorf("activated = %v, want none", activated)
	}
}

func TestCycleCancelledWhileWaiting(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.reachable = false
	s := newTestSwitcher(t, cp, homePolicy())
	fc := clockwork.NewFakeClock()
	s.clock = fc

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.runCycle(ctx)
		close(done)
	}()

	fc.BlockUntil(1)
	cancel()
	<-done

	if got := s.LastOutcome(); got != OutcomeCancelled {
		t.Errorf("LastOutcome() = %v, want %v", got, OutcomeCancelled)
	}
	activated, _, probes := cp.snapshot()
	if probes != 1 {
		t.Errorf("probeCalls = %d, want 1 before cancellation", probes)
	}
	if len(activated) != 0 {
		t.Errorf("activated = %v, want none after cancellation", activated)
	}
}

func TestCyclePicksUpPolicyEdits(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	s := newTestSwitcher(t, cp, &policy.Config{
		Rules: []policy.TrustRule{{SSID: "HomeWifi", VPNUUID: vpnHome}},
	})

	s.runCycle(context.Background())

	// Edit the policy between cycles, as the CLI would.
	err := s.store.Save(&policy.Config{
		Rules: []policy.TrustRule{{SSID: "HomeWifi", VPNUUID: vpnOffice}},
	})
	if err != nil {
		t.Fatalf("failed to update policy: %v", err)
	}

	s.runCycle(context.Background())

	activated, deactivated, _ := cp.snapshot()
	if len(activated) != 2 || activated[0] != vpnHome || activated[1] != vpnOffice {
		t.Errorf("activated = %v, want [%s %s]", activated, vpnHome, vpnOffice)
	}
	if len(deactivated) != 1 || deactivated[0] != vpnHome {
		t.Errorf("deactivated = %v, want the first tunnel replaced", deactivated)
	}
}

func TestDebounceCoalescesAndLatestWins(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, homePolicy())
	fc := clockwork.NewFakeClock()
	s.clock = fc

	done := make(chan Outcome, 4)
	s.SetOnCycleDone(func(o Outcome) { done <- o })

	s.OnNetworkChange()
	fc.Advance(3 * time.Second)
	s.OnNetworkChange() // resets the pending delay

	// Past the first deadline, before the reset one: nothing may run.
	fc.Advance(4 * time.Second)
	select {
	case o := <-done:
		t.Fatalf("cycle ran before the debounce elapsed: %v", o)
	case <-time.After(50 * time.Millisecond):
	}

	fc.Advance(1 * time.Second)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never ran after the debounce elapsed")
	}

	// Exactly one cycle for the whole burst.
	select {
	case o := <-done:
		t.Fatalf("unexpected second cycle: %v", o)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationDuringCycleIsDropped(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("CoffeeShop")}
	cp.listEntered = make(chan struct{})
	cp.listGate = make(chan struct{})
	s := newTestSwitcher(t, cp, homePolicy())
	s.SetDebounce(time.Millisecond)

	done := make(chan Outcome, 4)
	s.SetOnCycleDone(func(o Outcome) { done <- o })

	s.OnNetworkChange()
	<-cp.listEntered // first cycle is inside its snapshot now

	// These debounce timers expire while the cycle is still running.
	s.OnNetworkChange()
	s.OnNetworkChange()
	time.Sleep(50 * time.Millisecond)

	close(cp.listGate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never finished")
	}

	select {
	case o := <-done:
		t.Fatalf("a dropped notification still ran a cycle: %v", o)
	case <-time.After(100 * time.Millisecond):
	}

	cp.mu.Lock()
	listCalls := cp.listCalls
	cp.mu.Unlock()
	if listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 (one snapshot by one cycle)", listCalls)
	}
}

func TestRunConvergesOnStartupAndOnEvents(t *testing.T) {
	cp := newFakeControlPlane()
	cp.links = []netman.Attachment{wifiAtt("HomeWifi")}
	cp.tunnels = []netman.Attachment{tunnelAtt(vpnHome)}
	s := newTestSwitcher(t, cp, homePolicy())
	s.SetDebounce(time.Millisecond)

	done := make(chan Outcome, 4)
	s.SetOnCycleDone(func(o Outcome) { done <- o })

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	select {
	case o := <-done:
		if o != OutcomeCompliant {
			t.Errorf("startup outcome = %v, want %v", o, OutcomeCompliant)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("startup evaluation never ran")
	}

	cp.events <- netman.StateChange{State: netman.StateConnectedGlobal}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event evaluation never ran")
	}

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Errorf("Run() = %v, want nil on graceful shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}

func TestRunFailsWhenSubscriptionDies(t *testing.T) {
	cp := newFakeControlPlane()
	s := newTestSwitcher(t, cp, homePolicy())

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background()) }()

	close(cp.events)
	select {
	case err := <-runErr:
		if err == nil {
			t.Error("Run() = nil, want error when the subscription closes")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the subscription closed")
	}
}

func TestNewDefaults(t *testing.T) {
	cp := newFakeControlPlane()
	s := newTestSwitcher(t, cp, nil)

	if s.State() != StateIdle {
		t.Errorf("State() = %v, want %v", s.State(), StateIdle)
	}
	if s.LastOutcome() != Outcome("") {
		t.Errorf("LastOutcome() = %v, want empty before the first cycle", s.LastOutcome())
	}
	if s.debounce != 5*time.Second {
		t.Errorf("debounce = %v, want 5s", s.debounce)
	}
	if probe, ok := s.probe.(*fakeControlPlane); !ok || probe != cp {
		t.Error("default probe should be the control plane itself")
	}
}

func TestCycleStateString(t *testing.T) {
	tests := []struct {
		state CycleState
		want  string
	}{
		{StateIdle, "idle"},
		{StateEvaluating, "evaluating"},
		{StateTearingDown, "tearing down"},
		{StateAwaitingReachability, "awaiting reachability"},
		{StateActivating, "activating"},
		{CycleState(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("CycleState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
