package iban

import (
	"sort"
	"sync"
	"testing"
)

func TestNextCyclesThroughPool(t *testing.T) {
	for code, list := range predefined {
		t.Run(code, func(t *testing.T) {
			a := New()

			seen := make(map[string]bool)
			for range len(list) {
				v := a.Next(code)
				if seen[v] {
					t.Fatalf("value %q repeated within one cycle", v)
				}
				seen[v] = true
			}

			for _, want := range list {
				if !seen[want] {
					t.Errorf("cycle missed %q", want)
				}
			}

			// the next call starts a fresh cycle drawn from the same set
			next := a.Next(code)
			if !seen[next] {
				t.Errorf("value %q after exhaustion not from pool", next)
			}
			if got := a.Remaining(code); got != len(list)-1 {
				t.Errorf("remaining after reshuffle = %d, want %d", got, len(list)-1)
			}
		})
	}
}

func TestNextTwoElementPool(t *testing.T) {
	a := NewWithPools(map[string][]string{"DE": {"A", "B"}})

	first := a.Next("DE")
	second := a.Next("DE")
	got := []string{first, second}
	sort.Strings(got)
	if got[0] != "A" || got[1] != "B" {
		t.Fatalf("first cycle = %v, want permutation of [A B]", []string{first, second})
	}

	third := a.Next("DE")
	if third != "A" && third != "B" {
		t.Errorf("third value = %q, want A or B", third)
	}
}

func TestNextUnknownCountry(t *testing.T) {
	a := New()
	for _, code := range []string{"ES", "", "xx"} {
		if got := a.Next(code); got != NA {
			t.Errorf("Next(%q) = %q, want %q", code, got, NA)
		}
	}
}

func TestNextEmptyPool(t *testing.T) {
	a := NewWithPools(map[string][]string{"IT": {}})
	for range 3 {
		if got := a.Next("IT"); got != NA {
			t.Fatalf("empty pool = %q, want %q", got, NA)
		}
	}
}

func TestNextCaseInsensitive(t *testing.T) {
	a := NewWithPools(map[string][]string{"lu": {"LU1"}})
	if got := a.Next("Lu"); got != "LU1" {
		t.Errorf("got %q, want LU1", got)
	}
}

func TestPoolsAreIndependent(t *testing.T) {
	a := NewWithPools(map[string][]string{
		"IT": {"I1", "I2", "I3"},
		"FR": {"F1", "F2"},
	})

	a.Next("IT")
	if got := a.Remaining("FR"); got != 2 {
		t.Errorf("FR remaining = %d, want 2", got)
	}
	if got := a.Remaining("IT"); got != 2 {
		t.Errorf("IT remaining = %d, want 2", got)
	}
}

func TestReset(t *testing.T) {
	a := NewWithPools(map[string][]string{"FR": {"F1", "F2", "F3"}})
	a.Next("FR")
	a.Next("FR")
	a.Reset()
	if got := a.Remaining("FR"); got != 3 {
		t.Errorf("remaining after reset = %d, want 3", got)
	}
}

func TestNewWithPoolsCopiesInput(t *testing.T) {
	src := map[string][]string{"DE": {"A"}}
	a := NewWithPools(src)
	src["DE"][0] = "mutated"
	if got := a.Next("DE"); got != "A" {
		t.Errorf("got %q, want A", got)
	}
}

func TestNextConcurrent(t *testing.T) {
	list := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	a := NewWithPools(map[string][]string{"IT": list})

	var mu sync.Mutex
	counts := make(map[string]int)

	var wg sync.WaitGroup
	for range len(list) * 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := a.Next("IT")
			mu.Lock()
			counts[v]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// four full cycles: every value handed out exactly four times
	for _, v := range list {
		if counts[v] != 4 {
			t.Errorf("%s issued %d times, want 4", v, counts[v])
		}
	}
}
