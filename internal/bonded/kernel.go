package bonded

import (
	"fmt"
	"strings"
)

// kernelName is the single entry point every build produces.
const kernelName = "computeBondedForces"

var laneSuffix = [4]string{".x", ".y", ".z", ".w"}

// createKernelSource assembles the fused kernel: prefix fragments, the
// parameter list (accumulators, posq, group bitmask, one index pointer per
// packed block, one parameter per extra argument), every term's guarded
// body, and the per-lane energy epilogue.
func (r *Registry) createKernelSource() string {
	var s strings.Builder
	for _, code := range r.prefix {
		s.WriteString(code)
	}
	s.WriteString(`extern "C" __global__ void ` + kernelName +
		"(long long* __restrict__ forceBuffer, real* __restrict__ energyBuffer, const real4* __restrict__ posq, int groups")
	for f, t := range r.terms {
		for b, blk := range t.blocks {
			fmt.Fprintf(&s, ", const %s* __restrict__ atomIndices%d_%d", indexType(blk.width), f, b)
		}
	}
	for i, typ := range r.argTypes {
		fmt.Fprintf(&s, ", %s* customArg%d", typ, i+1)
	}
	s.WriteString(") {\n")
	s.WriteString("real energy = 0;\n")
	for f, t := range r.terms {
		s.WriteString(r.createForceSource(f, t))
	}
	s.WriteString("energyBuffer[blockIdx.x*blockDim.x+threadIdx.x] += energy;\n")
	s.WriteString("}\n")
	return s.String()
}

// createForceSource emits one term's body: the group guard, a grid-stride
// loop over its bonds, index unpacking and position gathers for each atom
// slot, the spliced snippet, and the fixed-point force scatter. Atom
// variables are numbered 1..A across all blocks; a promoted pad lane is
// never unpacked.
func (r *Registry) createForceSource(forceIndex int, t *term) string {
	var s strings.Builder
	fmt.Fprintf(&s, "if ((groups&%d) != 0)\n", 1<<t.group)
	fmt.Fprintf(&s, "for (unsigned int index = blockIdx.x*blockDim.x+threadIdx.x; index < %d; index += blockDim.x*gridDim.x) {\n", t.numBonds)
	slot := 0
	for b, blk := range t.blocks {
		fmt.Fprintf(&s, "    %s atoms%d = atomIndices%d_%d[index];\n", indexType(blk.width), b, forceIndex, b)
		for lane := 0; lane < blk.width && slot < t.arity; lane++ {
			if blk.width == 1 {
				fmt.Fprintf(&s, "    unsigned int atom%d = atoms%d;\n", slot+1, b)
			} else {
				fmt.Fprintf(&s, "    unsigned int atom%d = atoms%d%s;\n", slot+1, b, laneSuffix[lane])
			}
			fmt.Fprintf(&s, "    real4 pos%d = posq[atom%d];\n", slot+1, slot+1)
			slot++
		}
	}
	s.WriteString(t.source)
	s.WriteString("\n")
	for i := 1; i <= t.arity; i++ {
		fmt.Fprintf(&s, "    atomicAdd(&forceBuffer[atom%d], (long long) (force%d.x*0x100000000));\n", i, i)
		fmt.Fprintf(&s, "    atomicAdd(&forceBuffer[atom%d+PADDED_NUM_ATOMS], (long long) (force%d.y*0x100000000));\n", i, i)
		fmt.Fprintf(&s, "    atomicAdd(&forceBuffer[atom%d+PADDED_NUM_ATOMS*2], (long long) (force%d.z*0x100000000));\n", i, i)
	}
	s.WriteString("}\n")
	return s.String()
}
