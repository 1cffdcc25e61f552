package fs

import (
	"fmt"
	"io"

	"sectorfs/internal/logging"
)

var bitmapLogger = logging.GetLogger().WithPrefix("bitmap")

// Bitmap tracks which sectors of the device are allocated: one bit per
// sector. It is an in-memory snapshot, loaded from its backing file at
// the start of a mutating operation and either written back on success
// or discarded on failure.
type Bitmap struct {
	numBits int
	bits    []byte
}

// NewBitmap creates a cleared bitmap covering numBits sectors.
func NewBitmap(numBits int) *Bitmap {
	return &Bitmap{
		numBits: numBits,
		bits:    make([]byte, (numBits+7)/8),
	}
}

// Mark sets the bit for the given sector.
func (b *Bitmap) Mark(sector int) {
	b.bits[sector/8] |= 1 << uint(sector%8)
}

// Clear resets the bit for the given sector.
func (b *Bitmap) Clear(sector int) {
	b.bits[sector/8] &^= 1 << uint(sector%8)
}

// Test reports whether the bit for the given sector is set.
func (b *Bitmap) Test(sector int) bool {
	return b.bits[sector/8]&(1<<uint(sector%8)) != 0
}

// FindAndMark finds the first clear bit, marks it and returns its
// index. It returns -1 if every bit is set.
func (b *Bitmap) FindAndMark() int {
	for i := 0; i < b.numBits; i++ {
		if !b.Test(i) {
			b.Mark(i)
			bitmapLogger.Trace("Allocated sector %d", i)
			return i
		}
	}
	return -1
}

// NumClear returns the number of clear bits.
func (b *Bitmap) NumClear() int {
	count := 0
	for i := 0; i < b.numBits; i++ {
		if !b.Test(i) {
			count++
		}
	}
	return count
}

// FetchFrom loads the bitmap contents from its backing file.
func (b *Bitmap) FetchFrom(f *BlockFile) error {
	n, err := f.ReadAt(b.bits, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch bitmap: %w", err)
	}
	if n != len(b.bits) {
		return fmt.Errorf("short bitmap read: got %d bytes, want %d", n, len(b.bits))
	}
	return nil
}

// WriteBack flushes the bitmap contents to its backing file.
func (b *Bitmap) WriteBack(f *BlockFile) error {
	n, err := f.WriteAt(b.bits, 0)
	if err != nil {
		return fmt.Errorf("failed to write back bitmap: %w", err)
	}
	if n != len(b.bits) {
		return fmt.Errorf("short bitmap write: wrote %d bytes, want %d", n, len(b.bits))
	}
	return nil
}

// Print dumps the set bits to w, for the Print diagnostic.
func (b *Bitmap) Print(w io.Writer) {
	fmt.Fprintf(w, "Bitmap set bits (%d free of %d):\n", b.NumClear(), b.numBits)
	for i := 0; i < b.numBits; i++ {
		if b.Test(i) {
			fmt.Fprintf(w, "%d ", i)
		}
	}
	fmt.Fprintln(w)
}
