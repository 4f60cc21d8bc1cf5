package scratch

import "testing"

func TestInlineHeapIndistinguishable(t *testing.T) {
	small := New[int](2)
	small.Set(0, 1)
	small.Set(1, 2)
	big := New[int](5)
	for i := 0; i < 5; i++ {
		big.Set(i, i)
	}
	if small.IsHeap() {
		t.Error("expected inline storage for length 2")
	}
	if !big.IsHeap() {
		t.Error("expected heap storage for length 5")
	}
	if small.At(0) != 1 || small.At(1) != 2 {
		t.Errorf("small vector contents wrong: %v", small.Slice())
	}
	if big.At(4) != 4 {
		t.Errorf("big vector contents wrong: %v", big.Slice())
	}
}

func TestResizeRegimeTransitions(t *testing.T) {
	v := New[int](1)
	v.Set(0, 42)
	v.Resize(10)
	if !v.IsHeap() {
		t.Fatal("expected heap after growth")
	}
	if v.At(0) != 42 {
		t.Errorf("value lost across growth: %v", v.Slice())
	}
	v.Resize(1)
	if v.IsHeap() {
		t.Fatal("expected inline after shrink")
	}
	if v.At(0) != 42 {
		t.Errorf("value lost across shrink: %v", v.Slice())
	}
}

func TestMutAliasesBothRegimes(t *testing.T) {
	small := New[int](2)
	small.Mut()[0] = 7
	if small.At(0) != 7 {
		t.Errorf("Mut() did not alias inline storage")
	}
	big := New[int](5)
	big.Mut()[3] = 9
	if big.At(3) != 9 {
		t.Errorf("Mut() did not alias heap storage")
	}
}

func TestCloneIndependence(t *testing.T) {
	v := FromSlice([]int{1, 2, 3, 4})
	c := v.Clone()
	c.Set(0, 99)
	if v.At(0) == 99 {
		t.Error("Clone aliased the original vector")
	}
}
