package bonded

import (
	"sync/atomic"

	"github.com/jeff231li/openmm/internal/device"
)

// buildHostProgram constructs the emulator-executable form of the fused
// kernel. Each lane walks every term exactly as the generated source does:
// group guard, grid-stride loop over bonds, index unpack, position gather,
// snippet evaluation, fixed-point atomic force scatter, and one per-lane
// energy write at the end.
func (r *Registry) buildHostProgram() device.HostProgram {
	terms := r.terms
	padded := r.ctx.PaddedNumAtoms()

	body := func(lane, lanes int, args []any) {
		force := args[0].([]int64)
		energyBuffer := args[1].([]float64)
		posq := args[2].([]device.Real4)
		groups := args[3].(int)

		energy := 0.0
		for _, t := range terms {
			if groups&(1<<t.group) == 0 {
				continue
			}
			atoms := make([]uint32, t.arity)
			pos := make([]device.Real4, t.arity)
			for index := lane; index < t.numBonds; index += lanes {
				slot := 0
				for _, blk := range t.blocks {
					packed := blk.array.Uints()[index*blk.width : (index+1)*blk.width]
					for _, a := range packed {
						if slot == t.arity {
							break // pad lane, unread
						}
						atoms[slot] = a
						pos[slot] = posq[a]
						slot++
					}
				}

				e, forces := t.eval(index, pos)
				energy += e
				for i := 0; i < t.arity && i < len(forces); i++ {
					a := int(atoms[i])
					atomic.AddInt64(&force[a], device.EncodeForce(forces[i].X))
					atomic.AddInt64(&force[a+padded], device.EncodeForce(forces[i].Y))
					atomic.AddInt64(&force[a+2*padded], device.EncodeForce(forces[i].Z))
				}
			}
		}
		energyBuffer[lane] += energy
	}

	return device.HostProgram{kernelName: body}
}
