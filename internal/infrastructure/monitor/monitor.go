package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Check pings one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Monitor pings the configured dependencies on a cron schedule and keeps the
// latest result for /health.
type Monitor struct {
	checks   []namedCheck
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		timeout:  3 * time.Second,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Add registers a dependency. It must be called before Start.
func (m *Monitor) Add(name string, check Check) {
	if check == nil {
		return
	}
	m.checks = append(m.checks, namedCheck{name: name, check: check})
}

// Start runs one check synchronously so /health is accurate from the first
// request, then schedules the rest.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())
	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return fmt.Errorf("schedule health checks: %w", err)
	}
	m.cron.Start()
	return nil
}

func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh pings every dependency and replaces the stored status.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Healthy:    true,
		Components: make(map[string]Component, len(m.checks)),
		LastCheck:  time.Now().UTC(),
	}
	for _, p := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		started := time.Now()
		err := p.check(checkCtx)
		cancel()

		component := Component{Online: err == nil, Latency: time.Since(started).String()}
		if err != nil {
			component.Error = err.Error()
			status.Healthy = false
			m.logger.Warn("dependency unhealthy", zap.String("component", p.name), zap.Error(err))
		}
		status.Components[p.name] = component
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Names lists registered dependencies in a stable order.
func (m *Monitor) Names() []string {
	names := make([]string, 0, len(m.checks))
	for _, p := range m.checks {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}
