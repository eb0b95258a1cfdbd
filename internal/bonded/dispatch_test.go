package bonded

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/molecule"
)

// unitBondSnippet pushes atom 1 along +x and atom 2 along -x with unit
// force and adds 1.0 to the energy, for every bond.
func unitBondSnippet() Snippet {
	return Snippet{
		Source: "energy += 1.0f;\n" +
			"real3 force1 = make_real3(1, 0, 0);\n" +
			"real3 force2 = make_real3(-1, 0, 0);\n",
		Eval: func(bond int, pos []device.Real4) (float64, []device.Real3) {
			return 1.0, []device.Real3{{X: 1}, {X: -1}}
		},
	}
}

var _ = Describe("ComputeInteractions", func() {
	var (
		ctx *device.Emulator
		reg *Registry
		sys *molecule.System
	)

	BeforeEach(func() {
		ctx = device.NewEmulator(10)
		reg = NewRegistry(ctx)
		sys = molecule.New(10)
	})

	Describe("a single two-atom bond term", func() {
		bonds := [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8, 9}}

		BeforeEach(func() {
			Expect(reg.AddInteraction(bonds, unitBondSnippet(), 0)).To(Succeed())
			Expect(reg.Initialize(sys)).To(Succeed())
		})

		It("packs one block of width 2 with ten entries", func() {
			Expect(reg.terms[0].blocks).To(HaveLen(1))
			Expect(reg.terms[0].blocks[0].width).To(Equal(2))
			Expect(reg.terms[0].blocks[0].array.Uints()).To(HaveLen(10))
		})

		It("accumulates unit forces and 5.0 total energy", func() {
			Expect(reg.ComputeInteractions(1)).To(Succeed())

			Expect(ctx.EnergySum()).To(BeNumerically("~", 5.0, 1e-9))
			forces := ctx.Forces()
			for _, b := range bonds {
				Expect(forces[b[0]].X).To(BeNumerically("~", 1.0, 1e-9))
				Expect(forces[b[1]].X).To(BeNumerically("~", -1.0, 1e-9))
				Expect(forces[b[0]].Y).To(BeZero())
				Expect(forces[b[0]].Z).To(BeZero())
			}
		})

		It("leaves all buffers untouched with a zero bitmask", func() {
			Expect(reg.ComputeInteractions(0)).To(Succeed())

			Expect(ctx.EnergySum()).To(BeZero())
			for _, f := range ctx.Forces() {
				Expect(f).To(Equal(device.Real3{}))
			}
		})

		It("accumulates across repeated dispatches", func() {
			Expect(reg.ComputeInteractions(1)).To(Succeed())
			Expect(reg.ComputeInteractions(1)).To(Succeed())

			Expect(ctx.EnergySum()).To(BeNumerically("~", 10.0, 1e-9))
			Expect(ctx.Forces()[0].X).To(BeNumerically("~", 2.0, 1e-9))
		})
	})

	Describe("two terms in different groups", func() {
		BeforeEach(func() {
			Expect(reg.AddInteraction([][]int{{0, 1}}, unitBondSnippet(), 0)).To(Succeed())
			yBond := Snippet{
				Source: "energy += 2.0f;\n" +
					"real3 force1 = make_real3(0, 1, 0);\n" +
					"real3 force2 = make_real3(0, -1, 0);\n",
				Eval: func(bond int, pos []device.Real4) (float64, []device.Real3) {
					return 2.0, []device.Real3{{Y: 1}, {Y: -1}}
				},
			}
			Expect(reg.AddInteraction([][]int{{4, 5}}, yBond, 1)).To(Succeed())
			Expect(reg.Initialize(sys)).To(Succeed())
		})

		It("activates only the second term for bitmask 2", func() {
			Expect(reg.ComputeInteractions(2)).To(Succeed())

			Expect(ctx.EnergySum()).To(BeNumerically("~", 2.0, 1e-9))
			forces := ctx.Forces()
			Expect(forces[0]).To(Equal(device.Real3{}))
			Expect(forces[1]).To(Equal(device.Real3{}))
			Expect(forces[4].Y).To(BeNumerically("~", 1.0, 1e-9))
			Expect(forces[5].Y).To(BeNumerically("~", -1.0, 1e-9))
		})

		It("activates both terms for bitmask 3", func() {
			Expect(reg.ComputeInteractions(3)).To(Succeed())
			Expect(ctx.EnergySum()).To(BeNumerically("~", 3.0, 1e-9))
		})
	})

	Describe("an arity-3 term", func() {
		It("dispatches through a promoted width-4 block without touching the pad lane", func() {
			angle := Snippet{
				Source: "energy += 1.0f;\n" +
					"real3 force1 = make_real3(1, 0, 0);\n" +
					"real3 force2 = make_real3(0, 1, 0);\n" +
					"real3 force3 = make_real3(0, 0, 1);\n",
				Eval: func(bond int, pos []device.Real4) (float64, []device.Real3) {
					return 1.0, []device.Real3{{X: 1}, {Y: 1}, {Z: 1}}
				},
			}
			Expect(reg.AddInteraction([][]int{{1, 2, 3}}, angle, 0)).To(Succeed())
			Expect(reg.Initialize(sys)).To(Succeed())
			Expect(reg.ComputeInteractions(1)).To(Succeed())

			forces := ctx.Forces()
			Expect(forces[1].X).To(BeNumerically("~", 1.0, 1e-9))
			Expect(forces[2].Y).To(BeNumerically("~", 1.0, 1e-9))
			Expect(forces[3].Z).To(BeNumerically("~", 1.0, 1e-9))
			// The pad lane duplicates atom 3; it must not double its force.
			Expect(forces[3].X).To(BeZero())
			Expect(forces[3].Y).To(BeZero())
		})
	})

	Describe("repeated bonds touching one atom", func() {
		It("sums contributions atomically across lanes", func() {
			const repeats = 500
			bonds := make([][]int, repeats)
			for i := range bonds {
				bonds[i] = []int{0, 1}
			}
			Expect(reg.AddInteraction(bonds, unitBondSnippet(), 0)).To(Succeed())
			Expect(reg.Initialize(sys)).To(Succeed())
			Expect(reg.ComputeInteractions(1)).To(Succeed())

			quantum := float64(repeats) / device.ForceScale
			Expect(ctx.Forces()[0].X).To(BeNumerically("~", float64(repeats), quantum))
			Expect(ctx.Forces()[1].X).To(BeNumerically("~", -float64(repeats), quantum))
			Expect(ctx.EnergySum()).To(BeNumerically("~", float64(repeats), 1e-6))
		})
	})
})
