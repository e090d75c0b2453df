package threads

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintptrOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestStateString(t *testing.T) {
	cases := map[state]string{
		stateEmpty:     "Empty",
		stateReady:     "Ready",
		stateRunning:   "Running",
		stateBlocked:   "Blocked",
		stateExited:    "Exited",
		stateReserving: "Reserving",
		state(99):      "Invalid",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
}

func TestDescriptorCasState(t *testing.T) {
	var d descriptor
	d.setState(stateEmpty)
	require.True(t, d.casState(stateEmpty, stateReserving))
	assert.Equal(t, stateReserving, d.state())
	// A stale compare-and-swap against the old value must fail.
	require.False(t, d.casState(stateEmpty, stateReady))
	assert.Equal(t, stateReserving, d.state())
}

func TestStackRegionBounds(t *testing.T) {
	s := stackRegion{base: 0x1000, len: 4096}
	assert.Equal(t, uintptr(0x1000), s.guardLo())
	assert.Equal(t, uintptr(0x1000+GuardBytes), s.guardHi())
	assert.Equal(t, uintptr(0x1000+4096), s.top())
}

func TestGuardSeedAndCheck(t *testing.T) {
	buf := make([]byte, GuardBytes+64)
	s := stackRegion{base: uintptrOf(buf), len: uintptr(len(buf))}
	seedGuard(s)
	assert.True(t, checkGuard(s))

	// Corrupt one word inside the guard zone: checkGuard must notice.
	storeWordAt(s.base+8, 0xAAAAAAAAAAAAAAAA)
	assert.False(t, checkGuard(s))
}
