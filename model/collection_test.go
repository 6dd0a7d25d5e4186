package model

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

type item struct{ name string }

func TestCollection_Basics(t *testing.T) {
	c := NewCollection[item]()

	if got := c.Add(&item{"a"}); got != 1 {
		t.Errorf("first Add = %d, want 1", got)
	}
	if got := c.Add(&item{"b"}); got != 2 {
		t.Errorf("second Add = %d, want 2", got)
	}
	if c.Get(1).name != "a" || c.Get(2).name != "b" {
		t.Errorf("Get returned wrong items")
	}

	if !c.Clear(1) {
		t.Errorf("Clear(1) = false, want true")
	}
	if c.Get(1) != nil {
		t.Errorf("Get(1) after Clear = %v, want nil", c.Get(1))
	}
	if c.Count() != 2 {
		t.Errorf("Count after Clear = %d, want 2", c.Count())
	}
	if got := c.Add(&item{"c"}); got != 3 {
		t.Errorf("Add after Clear = %d, want 3 (indices are never reused)", got)
	}
}

func TestCollection_SetNeverExtends(t *testing.T) {
	c := NewCollection[item]()
	c.Add(&item{"a"})

	tests := []struct {
		index int
		want  bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{2, false},
		{100, false},
	}
	for _, tt := range tests {
		if got := c.Set(tt.index, &item{"x"}); got != tt.want {
			t.Errorf("Set(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
	if c.Count() != 1 {
		t.Errorf("Count = %d, want 1", c.Count())
	}
	if c.Get(1).name != "x" {
		t.Errorf("Set(1) did not replace the item")
	}
}

func TestCollection_Each(t *testing.T) {
	c := NewCollection[item]()
	c.Add(&item{"a"})
	c.Add(&item{"b"})
	c.Add(&item{"c"})
	c.Clear(2)

	var seen []int
	err := c.Each(func(i int, _ *item) error {
		seen = append(seen, i)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Errorf("Each visited %v, want [1 3]", seen)
	}

	stop := errors.New("stop")
	if err := c.Each(func(int, *item) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("Each error = %v, want stop", err)
	}
}

// TestCollection_Properties drives random operation sequences and checks
// that indices stay contiguous and out-of-range reads return nil.
func TestCollection_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := NewCollection[item]()
		var model []*item

		ops := rapid.IntRange(0, 50).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				it := &item{}
				if got := c.Add(it); got != len(model)+1 {
					t.Fatalf("Add = %d, want %d", got, len(model)+1)
				}
				model = append(model, it)
			case 1:
				idx := rapid.IntRange(-3, len(model)+3).Draw(t, "set")
				it := &item{}
				ok := c.Set(idx, it)
				if ok != (idx >= 1 && idx <= len(model)) {
					t.Fatalf("Set(%d) = %v with count %d", idx, ok, len(model))
				}
				if ok {
					model[idx-1] = it
				}
			case 2:
				idx := rapid.IntRange(-3, len(model)+3).Draw(t, "clear")
				if c.Clear(idx) {
					model[idx-1] = nil
				}
			}
		}

		if c.Count() != len(model) {
			t.Fatalf("Count = %d, want %d", c.Count(), len(model))
		}
		probe := rapid.IntRange(-10, len(model)+10).Draw(t, "probe")
		got := c.Get(probe)
		if probe < 1 || probe > len(model) {
			if got != nil {
				t.Fatalf("Get(%d) = %v, want nil", probe, got)
			}
		} else if got != model[probe-1] {
			t.Fatalf("Get(%d) returned the wrong item", probe)
		}
	})
}
