// Package threads is a freestanding preemptive multithreading core for a
// single logical CPU: thread descriptors, a lock-free priority run-queue,
// an architecture-specific context-switch primitive, and a signal-safe
// preemption tick.
//
// The package owns exactly the coupling between those three subsystems.
// Stack allocation, CLI drivers, SMP scheduling and dynamic memory are
// deliberately out of scope.
package threads
