//go:build unix

package threads

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// signalSource is the hosted POSIX realization of the preemption
// source: a periodic interval timer delivering SIGALRM, using
// golang.org/x/sys/unix for the raw itimer/signal syscalls.
//
// Go does not let user code install a true async-signal handler that
// runs a restricted instruction sequence on the interrupted thread's
// own stack the way a C SIGALRM handler would; the runtime forwards
// the signal to a delivery goroutine via signal.Notify. That goroutine
// still only ever calls onTick — the same two relaxed atomics a real
// signal handler would perform — before going back to sleep, so the
// rest of the core sees an identical contract: needs_resched is set
// asynchronously with respect to whichever thread is logically
// running, and the flag is only ever acted on at a checkpoint.
type signalSource struct {
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func init() { activeSource = &signalSource{} }

func (s *signalSource) Start(intervalMicros int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if intervalMicros <= 0 {
		return ErrPreemptionUnsupported
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGALRM)

	it := unix.Itimerval{
		Value:    unix.NsecToTimeval(intervalMicros * 1000),
		Interval: unix.NsecToTimeval(intervalMicros * 1000),
	}
	if err := unix.Setitimer(unix.ITIMER_REAL, &it, nil); err != nil {
		signal.Stop(c)
		return err
	}

	s.stopCh = make(chan struct{})
	s.running = true
	stop := s.stopCh
	go func() {
		for {
			select {
			case <-c:
				onTick()
			case <-stop:
				signal.Stop(c)
				return
			}
		}
	}()
	return nil
}

func (s *signalSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	var zero unix.Itimerval
	_ = unix.Setitimer(unix.ITIMER_REAL, &zero, nil)
	close(s.stopCh)
	s.running = false
}
