// Package diag provides ambient, non-hot-path observability for the
// threads core: structured logging for test/benchmark harnesses and an
// optional tracer for preemption-source lifecycle events. The
// scheduler's own hot path never imports this package: the core itself
// does not log, it reports errors as values, and diag exists entirely
// for harnesses built on top of it to report what they observed.
package diag

import "github.com/sirupsen/logrus"

// Logger wraps a logrus.Entry pre-populated with a component field, for
// harnesses exercising the core (property tests, fuzz-style interleaving
// drivers) to report what they observed without the core itself knowing
// diag exists.
type Logger struct {
	entry *logrus.Entry
}

// New returns a Logger for the named harness component.
func New(component string) *Logger {
	return &Logger{entry: logrus.WithField("component", component)}
}

// Scenario logs a named property-test scenario result.
func (l *Logger) Scenario(name string, fields map[string]interface{}, err error) {
	e := l.entry.WithField("scenario", name)
	for k, v := range fields {
		e = e.WithField(k, v)
	}
	if err != nil {
		e.WithError(err).Error("scenario failed")
		return
	}
	e.Debug("scenario passed")
}

// Tracer observes preemption-source enable/disable/tick-snapshot events
// from ordinary (non-signal-context) code — never from onTick itself.
type Tracer struct {
	entry *logrus.Entry
}

// NewTracer returns a Tracer for the preemption source.
func NewTracer() *Tracer {
	return &Tracer{entry: logrus.WithField("component", "preempt")}
}

// Enabled logs that the preemption source was armed.
func (t *Tracer) Enabled(intervalMicros int64) {
	t.entry.WithField("interval_us", intervalMicros).Info("preemption enabled")
}

// Disabled logs that the preemption source was torn down.
func (t *Tracer) Disabled() {
	t.entry.Info("preemption disabled")
}

// Tick logs a periodic tick-counter snapshot, for diagnostics only.
func (t *Tracer) Tick(count uint64) {
	t.entry.WithField("ticks", count).Debug("tick snapshot")
}
