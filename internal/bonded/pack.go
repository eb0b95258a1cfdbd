package bonded

import (
	"fmt"

	"github.com/jeff231li/openmm/internal/device"
)

// indexBlock is one fixed-width slice of a term's atom tuples, uploaded as
// a device array for vectorized loads. A term of arity A decomposes into
// successive blocks of width 4 until fewer than four slots remain; a final
// remainder of 3 is promoted to width 4 so only uniform vector types occur.
type indexBlock struct {
	width int
	array *device.Array
}

// blockWidths returns the lane widths covering a tuple of the given arity.
func blockWidths(arity int) []int {
	var widths []int
	for start := 0; start < arity; {
		w := arity - start
		if w > 4 {
			w = 4
		}
		if w == 3 {
			w = 4
		}
		widths = append(widths, w)
		start += w
	}
	return widths
}

// packIndices builds the index blocks for one term. The promoted fourth
// lane of a width-3 remainder duplicates the tuple's last valid index; no
// generated code ever reads it.
func packIndices(ctx device.Context, termIndex int, atoms [][]int) ([]indexBlock, error) {
	numBonds := len(atoms)
	arity := len(atoms[0])

	var blocks []indexBlock
	start := 0
	for blockIndex, width := range blockWidths(arity) {
		data := make([]uint32, width*numBonds)
		for bond, tuple := range atoms {
			for lane := 0; lane < width; lane++ {
				slot := start + lane
				if slot >= arity {
					slot = arity - 1 // pad lane, unread
				}
				data[bond*width+lane] = uint32(tuple[slot])
			}
		}

		name := fmt.Sprintf("bondedIndices%d_%d", termIndex, blockIndex)
		array, err := ctx.NewArray(name, indexType(width), numBonds)
		if err != nil {
			return nil, err
		}
		if err := array.UploadUints(data); err != nil {
			return nil, err
		}
		blocks = append(blocks, indexBlock{width: width, array: array})
		start += width
	}
	return blocks, nil
}

func indexType(width int) device.Type {
	switch width {
	case 1:
		return device.UInt
	case 2:
		return device.UInt2
	default:
		return device.UInt4
	}
}
