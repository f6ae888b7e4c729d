package gtlib

import (
	"sync"
)

// VMap is a mutex-guarded generic map.
type VMap[kT comparable, vT any] struct {
	kv map[kT]vT
	mu sync.RWMutex
}

// NewVMap returns an empty, ready-to-use VMap.
func NewVMap[kT comparable, vT any]() VMap[kT, vT] {
	return VMap[kT, vT]{
		kv: make(map[kT]vT),
	}
}

// Make resets the map. Required before first use of a zero-value VMap.
func (vm *VMap[kT, vT]) Make() {
	vm.kv = make(map[kT]vT)
}

// Set stores a value for the given key.
func (vm *VMap[kT, vT]) Set(key kT, val vT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.kv[key] = val
}

// Get returns the value stored for key, or the zero value.
func (vm *VMap[kT, vT]) Get(key kT) (val vT) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	val = vm.kv[key]
	return
}

// Lookup returns the value stored for key and whether it was present.
func (vm *VMap[kT, vT]) Lookup(key kT) (val vT, ok bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	val, ok = vm.kv[key]
	return
}

// Len returns the number of stored entries.
func (vm *VMap[kT, vT]) Len() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.kv)
}

// Dump returns all keys and values as parallel slices.
func (vm *VMap[kT, vT]) Dump() (keys []kT, vals []vT) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	n := len(vm.kv)
	keys = make([]kT, 0, n)
	vals = make([]vT, 0, n)
	for key, val := range vm.kv {
		keys = append(keys, key)
		vals = append(vals, val)
	}
	return
}

// Range calls f for each entry until f returns false. f must not
// modify the map.
func (vm *VMap[kT, vT]) Range(f func(key kT, val vT) bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for k, v := range vm.kv {
		if !f(k, v) {
			return
		}
	}
}

// Delete removes a key. Deleting an absent key is a no-op.
func (vm *VMap[kT, vT]) Delete(key kT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.kv, key)
}
