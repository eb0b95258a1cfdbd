package forcefield

import (
	"fmt"
	"math"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/device"
)

// PeriodicTorsion is one dihedral over four atoms:
// E = K*(1 + cos(Periodicity*phi - Phase)).
type PeriodicTorsion struct {
	Atom1, Atom2, Atom3, Atom4 int
	Periodicity                int
	Phase, K                   float64
}

// PeriodicTorsionForce contributes one arity-4 term covering all its
// torsions.
type PeriodicTorsionForce struct {
	Torsions   []PeriodicTorsion
	ForceGroup int
}

func (f *PeriodicTorsionForce) Name() string  { return "periodic_torsion" }
func (f *PeriodicTorsionForce) NumTerms() int { return len(f.Torsions) }

func (f *PeriodicTorsionForce) AddTo(ctx device.Context, reg *bonded.Registry) error {
	if len(f.Torsions) == 0 {
		return nil
	}
	for i, tor := range f.Torsions {
		if tor.K < 0 || tor.Periodicity < 1 {
			return fmt.Errorf("%w: torsion %d", ErrBadParameters, i)
		}
	}

	params, err := ctx.NewArray("torsionParams", device.Float4, len(f.Torsions))
	if err != nil {
		return err
	}
	data := make([]float64, 0, 4*len(f.Torsions))
	atoms := make([][]int, 0, len(f.Torsions))
	for _, tor := range f.Torsions {
		data = append(data, tor.K, tor.Phase, float64(tor.Periodicity), 0)
		atoms = append(atoms, []int{tor.Atom1, tor.Atom2, tor.Atom3, tor.Atom4})
	}
	if err := params.UploadFloats(data); err != nil {
		return err
	}
	argName, err := reg.AddArgument(params, "float4")
	if err != nil {
		return err
	}

	source := fmt.Sprintf(`float4 torsionParams = %s[index];
real3 b1 = make_real3(pos2.x-pos1.x, pos2.y-pos1.y, pos2.z-pos1.z);
real3 b2 = make_real3(pos3.x-pos2.x, pos3.y-pos2.y, pos3.z-pos2.z);
real3 b3 = make_real3(pos4.x-pos3.x, pos4.y-pos3.y, pos4.z-pos3.z);
real3 n1 = cross(b1, b2);
real3 n2 = cross(b2, b3);
real rb2 = SQRT(dot(b2, b2));
real phi = ATAN2(dot(cross(n1, n2), b2)/rb2, dot(n1, n2));
energy += torsionParams.x*(1 + COS(torsionParams.z*phi - torsionParams.y));
real dEdPhi = -torsionParams.x*torsionParams.z*SIN(torsionParams.z*phi - torsionParams.y);
real3 g1 = make_real3(-rb2/dot(n1, n1)*n1.x, -rb2/dot(n1, n1)*n1.y, -rb2/dot(n1, n1)*n1.z);
real3 g4 = make_real3(rb2/dot(n2, n2)*n2.x, rb2/dot(n2, n2)*n2.y, rb2/dot(n2, n2)*n2.z);
real s12 = dot(b1, b2)/dot(b2, b2);
real s32 = dot(b3, b2)/dot(b2, b2);
real3 g2 = make_real3((s12-1)*g1.x - s32*g4.x, (s12-1)*g1.y - s32*g4.y, (s12-1)*g1.z - s32*g4.z);
real3 g3 = make_real3(-s12*g1.x + (s32-1)*g4.x, -s12*g1.y + (s32-1)*g4.y, -s12*g1.z + (s32-1)*g4.z);
real3 force1 = make_real3(-dEdPhi*g1.x, -dEdPhi*g1.y, -dEdPhi*g1.z);
real3 force2 = make_real3(-dEdPhi*g2.x, -dEdPhi*g2.y, -dEdPhi*g2.z);
real3 force3 = make_real3(-dEdPhi*g3.x, -dEdPhi*g3.y, -dEdPhi*g3.z);
real3 force4 = make_real3(-dEdPhi*g4.x, -dEdPhi*g4.y, -dEdPhi*g4.z);
`, argName)

	torsions := f.Torsions
	eval := func(bond int, pos []device.Real4) (float64, []device.Real3) {
		tor := torsions[bond]
		b1 := pos[1].XYZ().Sub(pos[0].XYZ())
		b2 := pos[2].XYZ().Sub(pos[1].XYZ())
		b3 := pos[3].XYZ().Sub(pos[2].XYZ())
		n1 := b1.Cross(b2)
		n2 := b2.Cross(b3)
		rb2 := b2.Norm()
		if rb2 == 0 || n1.Dot(n1) == 0 || n2.Dot(n2) == 0 {
			return 0, make([]device.Real3, 4)
		}
		phi := math.Atan2(n1.Cross(n2).Dot(b2)/rb2, n1.Dot(n2))
		n := float64(tor.Periodicity)
		energy := tor.K * (1 + math.Cos(n*phi-tor.Phase))
		dEdPhi := -tor.K * n * math.Sin(n*phi-tor.Phase)

		// Gradients of phi with respect to each atom; forces are -dEdPhi
		// times these.
		g1 := n1.Scale(-rb2 / n1.Dot(n1))
		g4 := n2.Scale(rb2 / n2.Dot(n2))
		s12 := b1.Dot(b2) / b2.Dot(b2)
		s32 := b3.Dot(b2) / b2.Dot(b2)
		g2 := g1.Scale(s12 - 1).Sub(g4.Scale(s32))
		g3 := g4.Scale(s32 - 1).Sub(g1.Scale(s12))

		return energy, []device.Real3{
			g1.Scale(-dEdPhi),
			g2.Scale(-dEdPhi),
			g3.Scale(-dEdPhi),
			g4.Scale(-dEdPhi),
		}
	}

	return reg.AddInteraction(atoms, bonded.Snippet{Source: source, Eval: eval}, f.ForceGroup)
}
