package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/NeuralTrust/TrustGuard/pkg/domain"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/prometheus"
	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// EventSink receives every recorded event. Implementations must not block.
type EventSink interface {
	Submit(evt security.Event)
}

type Options struct {
	Config Config
	Clock  clock.Clock
	// Storage is the undecorated storage. The monitor reads session
	// artifacts and purges credentials through it.
	Storage    platform.Storage
	Navigator  platform.Navigator
	Window     platform.Window
	Repository security.EventLogRepository
	Sink       EventSink
	Metrics    *prometheus.SecurityMetrics
}

// SecurityMonitor owns the event log, the blocked attempts counter and the
// lifecycle of every detector. Build one per host session and share it.
type SecurityMonitor struct {
	logger    *logrus.Logger
	cfg       Config
	clock     clock.Clock
	raw       platform.Storage
	navigator platform.Navigator
	window    platform.Window
	repo      security.EventLogRepository
	sink      EventSink
	metrics   *prometheus.SecurityMetrics

	mu       sync.Mutex
	log      *eventLog
	state    security.State
	mirrorMu sync.Mutex
	blocked  atomic.Int64
	active   atomic.Bool

	lifecycleMu   sync.Mutex
	running       bool
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	unsubscribers []func()

	storage   *storageMonitor
	checker   *sessionChecker
	scanner   *injectionScanner
	responder *incidentResponder
	observer  *activityObserver
}

func NewSecurityMonitor(logger *logrus.Logger, opts Options) (*SecurityMonitor, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("security monitor: %w", domain.ErrStorageUnavailable)
	}
	cfg := mergeDefaults(opts.Config)
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	m := &SecurityMonitor{
		logger:    logger,
		cfg:       cfg,
		clock:     clk,
		raw:       opts.Storage,
		navigator: opts.Navigator,
		window:    opts.Window,
		repo:      opts.Repository,
		sink:      opts.Sink,
		metrics:   opts.Metrics,
		log:       newEventLog(cfg.EventLogCapacity),
		state:     security.StateUninitialized,
	}
	m.storage = newStorageMonitor(m, opts.Storage)
	m.checker = newSessionChecker(logger, cfg, opts.Storage)
	m.scanner = newInjectionScanner()
	m.responder = newIncidentResponder(logger, cfg, opts.Storage, opts.Navigator)
	m.observer = newActivityObserver(m, cfg.DevtoolsThreshold)
	m.publishState(security.StateUninitialized)
	return m, nil
}

func mergeDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.SessionCheckInterval <= 0 {
		cfg.SessionCheckInterval = def.SessionCheckInterval
	}
	if len(cfg.SensitiveMarkers) == 0 {
		cfg.SensitiveMarkers = def.SensitiveMarkers
	}
	if cfg.AuthTokenKey == "" {
		cfg.AuthTokenKey = def.AuthTokenKey
	}
	if cfg.TokenKey == "" {
		cfg.TokenKey = def.TokenKey
	}
	if cfg.UserKey == "" {
		cfg.UserKey = def.UserKey
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = def.LoginPath
	}
	if cfg.EventLogCapacity <= 0 {
		cfg.EventLogCapacity = def.EventLogCapacity
	}
	if cfg.DevtoolsThreshold <= 0 {
		cfg.DevtoolsThreshold = def.DevtoolsThreshold
	}
	return cfg
}

// LogSecurityEvent classifies and records an event. Mirroring and export
// failures are logged and never returned; the only error is an invalid
// partial event. Escalating events run the incident responder before
// LogSecurityEvent returns.
func (m *SecurityMonitor) LogSecurityEvent(ctx context.Context, partial security.PartialEvent) error {
	if err := partial.Validate(); err != nil {
		return err
	}

	userAgent := ""
	if m.navigator != nil {
		userAgent = m.navigator.UserAgent()
	}
	evt, err := security.NewEvent(partial, m.clock.Now(), userAgent, resolveUserID(ctx, m.raw, m.cfg))
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.log.append(evt)
	size := m.log.len()
	m.mu.Unlock()

	m.mirror(ctx)
	m.trace(evt)

	if m.metrics != nil {
		m.metrics.EventsTotal.WithLabelValues(string(evt.Type()), evt.Severity().String()).Inc()
		m.metrics.EventLogSize.Set(float64(size))
	}
	if m.sink != nil {
		m.sink.Submit(evt)
	}

	if shouldEscalate(evt) {
		m.escalate(ctx, evt)
	}
	return nil
}

// shouldEscalate blocks on every critical event and on injection or CSRF
// matches whatever their recorded severity.
func shouldEscalate(evt security.Event) bool {
	if evt.Severity() == security.Critical {
		return true
	}
	switch evt.Details().(type) {
	case security.InjectionAttemptDetails, security.CSRFAttemptDetails:
		return true
	}
	return false
}

func (m *SecurityMonitor) escalate(ctx context.Context, evt security.Event) {
	if m.State() == security.StateUninitialized {
		m.logger.WithFields(logrus.Fields{
			"eventID": evt.ID().String(),
			"type":    evt.Type(),
		}).Warn("escalation skipped, monitoring is not started")
		return
	}
	m.setState(security.StateBlocked)
	count := m.blocked.Add(1)
	if m.metrics != nil {
		m.metrics.BlockedAttempts.Inc()
	}
	m.responder.respond(ctx, evt, count)
}

// mirror persists the whole log. Concurrent records are serialised so the
// last snapshot written is the newest.
func (m *SecurityMonitor) mirror(ctx context.Context) {
	if m.repo == nil {
		return
	}
	m.mirrorMu.Lock()
	defer m.mirrorMu.Unlock()

	m.mu.Lock()
	snapshot := m.log.snapshot()
	m.mu.Unlock()

	if err := m.repo.Save(ctx, snapshot); err != nil {
		m.logger.WithError(err).Warn("failed to mirror security event log")
	}
}

func (m *SecurityMonitor) trace(evt security.Event) {
	entry := m.logger.WithFields(logrus.Fields{
		"eventID":  evt.ID().String(),
		"type":     evt.Type(),
		"severity": evt.Severity().String(),
		"kind":     evt.Details().Kind(),
		"details":  evt.Details().Fields(),
	})
	if userID, ok := evt.UserID(); ok {
		entry = entry.WithField("userID", userID)
	}
	switch evt.Severity() {
	case security.Critical, security.High:
		entry.Warn("security event recorded")
	case security.Medium:
		entry.Info("security event recorded")
	default:
		entry.Debug("security event recorded")
	}
}

func (m *SecurityMonitor) GetThreatReport() security.ThreatReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return security.BuildThreatReport(m.log.snapshot(), m.blocked.Load())
}

// GetSecurityEvents returns a copy of the log, oldest first.
func (m *SecurityMonitor) GetSecurityEvents() []security.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.snapshot()
}

// ClearEvents empties the log and its mirror. The blocked attempts counter
// is kept.
func (m *SecurityMonitor) ClearEvents(ctx context.Context) {
	m.mirrorMu.Lock()
	defer m.mirrorMu.Unlock()

	m.mu.Lock()
	m.log.reset()
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.EventLogSize.Set(0)
	}
	if m.repo == nil {
		return
	}
	if err := m.repo.Clear(ctx); err != nil {
		m.logger.WithError(err).Warn("failed to clear mirrored security event log")
	}
}

func (m *SecurityMonitor) BlockedAttempts() int64 {
	return m.blocked.Load()
}

func (m *SecurityMonitor) State() security.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SecurityMonitor) setState(state security.State) {
	m.mu.Lock()
	if m.state == state {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = state
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"from": prev,
		"to":   state,
	}).Info("security monitor state changed")
	m.publishState(state)
}

func (m *SecurityMonitor) publishState(state security.State) {
	if m.metrics == nil {
		return
	}
	for _, s := range []security.State{security.StateUninitialized, security.StateMonitoring, security.StateBlocked} {
		value := 0.0
		if s == state {
			value = 1
		}
		m.metrics.MonitorState.WithLabelValues(string(s)).Set(value)
	}
}

// Storage returns the decorated storage the host must use for every
// key-value access.
func (m *SecurityMonitor) Storage() platform.Storage {
	return m.storage
}

// GuardRequester wraps next with the outbound origin guard.
func (m *SecurityMonitor) GuardRequester(next platform.Requester) platform.Requester {
	return &guardedRequester{monitor: m, next: next}
}

// StartMonitoring runs the capability check and, when it passes, activates
// every detector. A failed check leaves the decorators as pass-through and
// the state uninitialized. Calling it while running is a no-op.
func (m *SecurityMonitor) StartMonitoring(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.running {
		return nil
	}
	if err := m.capabilityCheck(ctx); err != nil {
		m.logger.WithError(err).Error("security monitoring disabled")
		return err
	}

	m.restore(ctx)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.running = true
	m.active.Store(true)
	if m.State() == security.StateUninitialized {
		m.setState(security.StateMonitoring)
	}

	m.ScanNavigation(runCtx, m.navigator.CurrentURL())
	m.unsubscribers = append(m.unsubscribers, m.navigator.OnNavigate(func(url string) {
		m.ScanNavigation(runCtx, url)
	}))
	m.startSessionChecker(runCtx)
	if m.window != nil {
		m.unsubscribers = append(m.unsubscribers, m.observer.subscribe(runCtx, m.window)...)
	}

	m.logger.WithFields(logrus.Fields{
		"interval": m.cfg.SessionCheckInterval.String(),
		"origin":   m.navigator.Origin(),
	}).Info("security monitoring started")
	return nil
}

func (m *SecurityMonitor) capabilityCheck(ctx context.Context) error {
	if m.navigator == nil {
		return fmt.Errorf("%w: %w", domain.ErrCapabilityCheckFailed, domain.ErrNavigatorUnavailable)
	}
	if err := m.raw.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w: %w", domain.ErrCapabilityCheckFailed, domain.ErrStorageUnavailable, err)
	}
	return nil
}

// restore loads the mirrored log when nothing has been recorded yet.
func (m *SecurityMonitor) restore(ctx context.Context) {
	if m.repo == nil {
		return
	}
	events, err := m.repo.Load(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("failed to restore mirrored security event log")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.log.len() > 0 {
		return
	}
	for _, evt := range events {
		m.log.append(evt)
	}
	if m.metrics != nil {
		m.metrics.EventLogSize.Set(float64(m.log.len()))
	}
}

func (m *SecurityMonitor) startSessionChecker(ctx context.Context) {
	ticker := m.clock.Ticker(m.cfg.SessionCheckInterval)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckSession(ctx)
			}
		}
	}()
}

// StopMonitoring stops the session checker and drops every subscription.
// The decorators become pass-through. It is safe to call more than once.
func (m *SecurityMonitor) StopMonitoring() {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if !m.running {
		return
	}
	m.active.Store(false)
	m.cancel()
	m.wg.Wait()
	for _, unsubscribe := range m.unsubscribers {
		unsubscribe()
	}
	m.unsubscribers = nil
	m.running = false
	m.logger.Info("security monitoring stopped")
}

// CheckSession runs one session consistency check and records each finding.
func (m *SecurityMonitor) CheckSession(ctx context.Context) {
	findings, err := m.checker.check(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("session check skipped")
		return
	}
	for _, finding := range findings {
		m.record(ctx, finding)
	}
}

// ScanNavigation records an injection attempt when url carries a known
// payload shape.
func (m *SecurityMonitor) ScanNavigation(ctx context.Context, url string) {
	details, ok := m.scanner.scan(url)
	if !ok {
		return
	}
	m.record(ctx, security.PartialEvent{Severity: security.High, Details: details})
}

// record is LogSecurityEvent for detector findings, which are always valid.
func (m *SecurityMonitor) record(ctx context.Context, partial security.PartialEvent) {
	if err := m.LogSecurityEvent(ctx, partial); err != nil {
		m.logger.WithError(err).Error("failed to record security event")
	}
}

func (m *SecurityMonitor) isActive() bool {
	return m.active.Load()
}
