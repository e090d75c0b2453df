package threads

import "unsafe"

// storeWordAt and loadWordAt give the guard-zone code raw access to a
// caller-provided stack region by address. The core never owns this
// memory — stack allocation is external to it — it only ever
// reads/writes within the bounds the caller handed to Spawn.

//go:nosplit
func storeWordAt(addr uintptr, v uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = v
}

//go:nosplit
func loadWordAt(addr uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(addr))
}
