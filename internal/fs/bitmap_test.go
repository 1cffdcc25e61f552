package fs

import "testing"

func TestBitmapMarkClearTest(t *testing.T) {
	b := NewBitmap(64)

	if b.Test(7) {
		t.Error("New bitmap should have no set bits")
	}
	b.Mark(7)
	if !b.Test(7) {
		t.Error("Expected bit 7 set after Mark")
	}
	if b.Test(6) || b.Test(8) {
		t.Error("Neighboring bits should be unaffected")
	}
	b.Clear(7)
	if b.Test(7) {
		t.Error("Expected bit 7 clear after Clear")
	}
}

func TestBitmapFindAndMark(t *testing.T) {
	b := NewBitmap(16)
	b.Mark(0)
	b.Mark(1)

	if got := b.FindAndMark(); got != 2 {
		t.Errorf("Expected first free bit 2, got %d", got)
	}
	if !b.Test(2) {
		t.Error("FindAndMark should mark the bit it returns")
	}
}

func TestBitmapExhaustion(t *testing.T) {
	b := NewBitmap(4)
	for i := 0; i < 4; i++ {
		if got := b.FindAndMark(); got != i {
			t.Errorf("Expected bit %d, got %d", i, got)
		}
	}
	if got := b.FindAndMark(); got != -1 {
		t.Errorf("Expected -1 on a full bitmap, got %d", got)
	}
}

func TestBitmapNumClear(t *testing.T) {
	b := NewBitmap(100)
	if got := b.NumClear(); got != 100 {
		t.Errorf("Expected 100 clear bits, got %d", got)
	}
	b.Mark(3)
	b.Mark(77)
	if got := b.NumClear(); got != 98 {
		t.Errorf("Expected 98 clear bits, got %d", got)
	}
}
