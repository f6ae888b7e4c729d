package gtlib

import (
	"sync"
	"testing"
)

func TestVMapBasicOps(t *testing.T) {
	vm := NewVMap[string, int]()

	vm.Set("a", 1)
	vm.Set("b", 2)
	if vm.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", vm.Len())
	}
	if got := vm.Get("a"); got != 1 {
		t.Errorf("Get(a) = %d, want 1", got)
	}
	if _, ok := vm.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}

	vm.Delete("a")
	vm.Delete("a") // absent key is a no-op
	if _, ok := vm.Lookup("a"); ok {
		t.Error("Lookup(a) reported present after delete")
	}

	keys, vals := vm.Dump()
	if len(keys) != 1 || keys[0] != "b" || vals[0] != 2 {
		t.Errorf("Dump() = %v/%v, want [b]/[2]", keys, vals)
	}
}

func TestVMapRangeStopsEarly(t *testing.T) {
	vm := NewVMap[int, int]()
	for i := 0; i < 5; i++ {
		vm.Set(i, i)
	}
	var seen int
	vm.Range(func(k, v int) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Range visited %d entries after stop, want 1", seen)
	}
}

func TestVMapConcurrentAccess(t *testing.T) {
	vm := NewVMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vm.Set(i, i)
			vm.Get(i)
			vm.Len()
		}(i)
	}
	wg.Wait()
	if vm.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", vm.Len())
	}
}
