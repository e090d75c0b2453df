package threads

// FPDirty and SetFPDirty expose the per-descriptor FPU/vector dirty
// bit. This backend never installs a real #NM trap — doing so from
// user-mode Go would require cgo — so it conservatively reports every
// live descriptor as dirty unless a caller has explicitly cleared it
// after its own save/restore. FPStateSize reports how large a save
// area the current backend would need.

// FPDirty reports whether t's FPU/vector state is considered dirty.
func FPDirty(t int) (bool, error) {
	if t < 0 || t >= MaxThreads {
		return false, ErrInvalidTid
	}
	d := &sched.descs[t]
	if d.state() == stateEmpty {
		return false, ErrInvalidTid
	}
	return d.fpDirty.Load(), nil
}

// SetFPDirty updates t's dirty bit. A caller that has performed its own
// FXSAVE/FXRSTOR around a context switch (outside this package, via its
// own build-tagged extension) uses this to clear the conservative
// default.
func SetFPDirty(t int, dirty bool) error {
	if t < 0 || t >= MaxThreads {
		return ErrInvalidTid
	}
	d := &sched.descs[t]
	if d.state() == stateEmpty {
		return ErrInvalidTid
	}
	d.fpDirty.Store(dirty)
	return nil
}

// FPStateSize reports the byte size of the current architecture
// backend's FPU/vector save area.
func FPStateSize() int { return backend.fpStateSize() }
