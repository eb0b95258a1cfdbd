package bonded

import (
	"testing"

	"github.com/jeff231li/openmm/internal/device"
)

func TestBlockWidths(t *testing.T) {
	cases := []struct {
		arity int
		want  []int
	}{
		{1, []int{1}},
		{2, []int{2}},
		{3, []int{4}},
		{4, []int{4}},
		{5, []int{4, 1}},
		{6, []int{4, 2}},
		{7, []int{4, 4}},
		{8, []int{4, 4}},
		{9, []int{4, 4, 1}},
	}
	for _, c := range cases {
		got := blockWidths(c.arity)
		if len(got) != len(c.want) {
			t.Errorf("arity %d: widths %v, want %v", c.arity, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("arity %d: widths %v, want %v", c.arity, got, c.want)
				break
			}
		}
	}
}

func TestBlockWidthNeverThree(t *testing.T) {
	for arity := 1; arity <= 20; arity++ {
		for _, w := range blockWidths(arity) {
			if w == 3 {
				t.Fatalf("arity %d produced a width-3 block", arity)
			}
			if w != 1 && w != 2 && w != 4 {
				t.Fatalf("arity %d produced width %d", arity, w)
			}
		}
	}
}

// Packing then unpacking at every covered slot must recover the original
// atom index for every (bond, slot) pair.
func TestPackRoundTrip(t *testing.T) {
	ctx := device.NewEmulator(64)
	for arity := 1; arity <= 8; arity++ {
		const numBonds = 7
		atoms := make([][]int, numBonds)
		for b := range atoms {
			tuple := make([]int, arity)
			for s := range tuple {
				tuple[s] = (b*arity + s) % 64
			}
			atoms[b] = tuple
		}

		blocks, err := packIndices(ctx, 0, atoms)
		if err != nil {
			t.Fatalf("arity %d: %v", arity, err)
		}

		for b := 0; b < numBonds; b++ {
			slot := 0
			for _, blk := range blocks {
				data := blk.array.Uints()
				for lane := 0; lane < blk.width && slot < arity; lane++ {
					got := int(data[b*blk.width+lane])
					if got != atoms[b][slot] {
						t.Errorf("arity %d bond %d slot %d: got %d, want %d", arity, b, slot, got, atoms[b][slot])
					}
					slot++
				}
			}
			if slot != arity {
				t.Errorf("arity %d bond %d: covered %d slots", arity, b, slot)
			}
		}
	}
}

func TestPackPadLaneDuplicatesLastIndex(t *testing.T) {
	ctx := device.NewEmulator(16)
	atoms := [][]int{{3, 7, 11}, {1, 2, 4}}

	blocks, err := packIndices(ctx, 0, atoms)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].width != 4 {
		t.Fatalf("expected one width-4 block, got %+v", blocks)
	}
	data := blocks[0].array.Uints()
	for b, tuple := range atoms {
		if int(data[b*4+3]) != tuple[2] {
			t.Errorf("bond %d pad lane holds %d, want duplicate of %d", b, data[b*4+3], tuple[2])
		}
	}
}

func TestPackBufferSizes(t *testing.T) {
	ctx := device.NewEmulator(32)
	atoms := [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}}

	blocks, err := packIndices(ctx, 2, atoms)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	if got := len(blocks[0].array.Uints()); got != 10 {
		t.Errorf("block holds %d entries, want 10", got)
	}
	if blocks[0].array.Type() != device.UInt2 {
		t.Errorf("block type %s, want %s", blocks[0].array.Type(), device.UInt2)
	}
}
