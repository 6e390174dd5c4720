package youtube

import "testing"

func TestKeyPoolRotation(t *testing.T) {
	pool := NewKeyPool([]string{"key-a", "key-b", "key-c"})

	if got := pool.Current(); got != "key-a" {
		t.Errorf("Current() = %q, want key-a", got)
	}
	if got := pool.Next(); got != "key-b" {
		t.Errorf("Next() = %q, want key-b", got)
	}
	if got := pool.Next(); got != "key-c" {
		t.Errorf("Next() = %q, want key-c", got)
	}
	if pool.Exhausted() {
		t.Error("pool should not be exhausted while a key remains")
	}

	if got := pool.Next(); got != "" {
		t.Errorf("Next() past the last key = %q, want empty", got)
	}
	if !pool.Exhausted() {
		t.Error("pool should be exhausted after the last key")
	}
	if got := pool.Current(); got != "" {
		t.Errorf("Current() after exhaustion = %q, want empty", got)
	}
}

func TestKeyPoolReset(t *testing.T) {
	pool := NewKeyPool([]string{"key-a", "key-b"})
	pool.Next()
	pool.Next()
	if !pool.Exhausted() {
		t.Fatal("pool should be exhausted")
	}

	pool.Reset()
	if pool.Exhausted() {
		t.Error("Reset() should clear exhaustion")
	}
	if got := pool.Current(); got != "key-a" {
		t.Errorf("Current() after Reset() = %q, want key-a", got)
	}
}

func TestKeyPoolDropsEmptyKeys(t *testing.T) {
	pool := NewKeyPool([]string{"", "key-a", ""})
	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1", pool.Size())
	}
	if got := pool.Current(); got != "key-a" {
		t.Errorf("Current() = %q, want key-a", got)
	}
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool(nil)
	if !pool.Exhausted() {
		t.Error("empty pool should report exhausted")
	}
	if got := pool.Current(); got != "" {
		t.Errorf("Current() on empty pool = %q, want empty", got)
	}
}
