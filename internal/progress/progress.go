// Package progress reports the advancement of long-running constructions and lets the caller abort them.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/log"
	"go.uber.org/zap"
)

// Monitor is notified of the progress of a task and tells whether the task must be aborted
type Monitor interface {
	Begin(task string, totalWork int)
	Worked(work int)
	Done()
	IsCanceled() bool
}

// Null is a Monitor that ignores the progress and never cancels
var Null Monitor = nullMonitor{}

type nullMonitor struct{}

func (nullMonitor) Begin(string, int) {}
func (nullMonitor) Worked(int)        {}
func (nullMonitor) Done()             {}
func (nullMonitor) IsCanceled() bool  { return false }

// Check returns a Cancelled error if the monitor has been cancelled
func Check(m Monitor, task string) error {
	if m.IsCanceled() {
		return georef.NewCancelled("%s cancelled", task)
	}
	return nil
}

// OrNull returns m, or Null if m is nil
func OrNull(m Monitor) Monitor {
	if m == nil {
		return Null
	}
	return m
}

// CancelOnly returns a Monitor ignoring the progress and cancelled with m, for the sub-tasks of a task monitored by m
func CancelOnly(m Monitor) Monitor {
	return cancelOnly{m: OrNull(m)}
}

type cancelOnly struct {
	nullMonitor
	m Monitor
}

func (c cancelOnly) IsCanceled() bool {
	return c.m.IsCanceled()
}

type contextMonitor struct {
	ctx        context.Context
	mutex      sync.Mutex
	task       string
	total      int
	worked     int
	lastDecile int
	start      time.Time
}

// FromContext returns a Monitor cancelled with the context, logging the progress of the task at debug level
func FromContext(ctx context.Context) Monitor {
	return &contextMonitor{ctx: ctx}
}

func (m *contextMonitor) Begin(task string, totalWork int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.task, m.total, m.worked, m.lastDecile, m.start = task, totalWork, 0, 0, time.Now()
	log.Logger(m.ctx).Debug("start "+task, zap.Int("total", totalWork))
}

func (m *contextMonitor) Worked(work int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.worked += work
	if m.total <= 0 {
		return
	}
	if decile := 10 * m.worked / m.total; decile > m.lastDecile && decile < 10 {
		m.lastDecile = decile
		log.Logger(m.ctx).Debug(m.task, zap.Int("percent", 10*decile))
	}
}

func (m *contextMonitor) Done() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	log.Logger(m.ctx).Debug("end "+m.task, zap.Duration("elapsed", time.Since(m.start)))
}

func (m *contextMonitor) IsCanceled() bool {
	return m.ctx.Err() != nil
}
