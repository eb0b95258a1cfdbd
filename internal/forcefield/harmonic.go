package forcefield

import (
	"fmt"
	"math"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/device"
)

// HarmonicBond is one spring between two atoms: E = 0.5*K*(r-Length)^2.
type HarmonicBond struct {
	Atom1, Atom2 int
	Length, K    float64
}

// HarmonicBondForce contributes one arity-2 term covering all its bonds.
type HarmonicBondForce struct {
	Bonds      []HarmonicBond
	ForceGroup int
}

func (f *HarmonicBondForce) Name() string  { return "harmonic_bond" }
func (f *HarmonicBondForce) NumTerms() int { return len(f.Bonds) }

func (f *HarmonicBondForce) AddTo(ctx device.Context, reg *bonded.Registry) error {
	if len(f.Bonds) == 0 {
		return nil
	}
	for i, b := range f.Bonds {
		if b.Length < 0 || b.K < 0 {
			return fmt.Errorf("%w: bond %d", ErrBadParameters, i)
		}
	}

	params, err := ctx.NewArray("bondParams", device.Float2, len(f.Bonds))
	if err != nil {
		return err
	}
	data := make([]float64, 0, 2*len(f.Bonds))
	atoms := make([][]int, 0, len(f.Bonds))
	for _, b := range f.Bonds {
		data = append(data, b.Length, b.K)
		atoms = append(atoms, []int{b.Atom1, b.Atom2})
	}
	if err := params.UploadFloats(data); err != nil {
		return err
	}
	argName, err := reg.AddArgument(params, "float2")
	if err != nil {
		return err
	}

	source := fmt.Sprintf(`float2 bondParams = %s[index];
real3 delta = make_real3(pos2.x-pos1.x, pos2.y-pos1.y, pos2.z-pos1.z);
real r = SQRT(delta.x*delta.x + delta.y*delta.y + delta.z*delta.z);
real deltaIdeal = r - bondParams.x;
energy += 0.5f*bondParams.y*deltaIdeal*deltaIdeal;
real dEdR = (r > 0) ? (bondParams.y*deltaIdeal/r) : 0;
real3 force1 = make_real3(dEdR*delta.x, dEdR*delta.y, dEdR*delta.z);
real3 force2 = make_real3(-dEdR*delta.x, -dEdR*delta.y, -dEdR*delta.z);
`, argName)

	bonds := f.Bonds
	eval := func(bond int, pos []device.Real4) (float64, []device.Real3) {
		b := bonds[bond]
		delta := pos[1].XYZ().Sub(pos[0].XYZ())
		r := delta.Norm()
		dr := r - b.Length
		energy := 0.5 * b.K * dr * dr
		dEdR := 0.0
		if r > 0 {
			dEdR = b.K * dr / r
		}
		f1 := delta.Scale(dEdR)
		return energy, []device.Real3{f1, f1.Scale(-1)}
	}

	return reg.AddInteraction(atoms, bonded.Snippet{Source: source, Eval: eval}, f.ForceGroup)
}

// HarmonicAngle is one angle between three atoms with the vertex in the
// middle: E = 0.5*K*(theta-Angle)^2, Angle in radians.
type HarmonicAngle struct {
	Atom1, Atom2, Atom3 int
	Angle, K            float64
}

// HarmonicAngleForce contributes one arity-3 term covering all its angles.
// Arity 3 exercises index-block promotion to width 4.
type HarmonicAngleForce struct {
	Angles     []HarmonicAngle
	ForceGroup int
}

func (f *HarmonicAngleForce) Name() string  { return "harmonic_angle" }
func (f *HarmonicAngleForce) NumTerms() int { return len(f.Angles) }

func (f *HarmonicAngleForce) AddTo(ctx device.Context, reg *bonded.Registry) error {
	if len(f.Angles) == 0 {
		return nil
	}
	for i, a := range f.Angles {
		if a.K < 0 || a.Angle < 0 || a.Angle > math.Pi {
			return fmt.Errorf("%w: angle %d", ErrBadParameters, i)
		}
	}

	params, err := ctx.NewArray("angleParams", device.Float2, len(f.Angles))
	if err != nil {
		return err
	}
	data := make([]float64, 0, 2*len(f.Angles))
	atoms := make([][]int, 0, len(f.Angles))
	for _, a := range f.Angles {
		data = append(data, a.Angle, a.K)
		atoms = append(atoms, []int{a.Atom1, a.Atom2, a.Atom3})
	}
	if err := params.UploadFloats(data); err != nil {
		return err
	}
	argName, err := reg.AddArgument(params, "float2")
	if err != nil {
		return err
	}

	source := fmt.Sprintf(`float2 angleParams = %s[index];
real3 v21 = make_real3(pos1.x-pos2.x, pos1.y-pos2.y, pos1.z-pos2.z);
real3 v23 = make_real3(pos3.x-pos2.x, pos3.y-pos2.y, pos3.z-pos2.z);
real r21 = SQRT(v21.x*v21.x + v21.y*v21.y + v21.z*v21.z);
real r23 = SQRT(v23.x*v23.x + v23.y*v23.y + v23.z*v23.z);
real cosine = (v21.x*v23.x + v21.y*v23.y + v21.z*v23.z)/(r21*r23);
cosine = max((real) -1, min((real) 1, cosine));
real theta = ACOS(cosine);
real deltaIdeal = theta - angleParams.x;
energy += 0.5f*angleParams.y*deltaIdeal*deltaIdeal;
real sine = max(SQRT(1-cosine*cosine), (real) 1e-6f);
real dEdAngle = angleParams.y*deltaIdeal;
real3 u21 = make_real3(v21.x/r21, v21.y/r21, v21.z/r21);
real3 u23 = make_real3(v23.x/r23, v23.y/r23, v23.z/r23);
real c1 = dEdAngle/(r21*sine);
real c3 = dEdAngle/(r23*sine);
real3 force1 = make_real3(c1*(u23.x-cosine*u21.x), c1*(u23.y-cosine*u21.y), c1*(u23.z-cosine*u21.z));
real3 force3 = make_real3(c3*(u21.x-cosine*u23.x), c3*(u21.y-cosine*u23.y), c3*(u21.z-cosine*u23.z));
real3 force2 = make_real3(-force1.x-force3.x, -force1.y-force3.y, -force1.z-force3.z);
`, argName)

	angles := f.Angles
	eval := func(bond int, pos []device.Real4) (float64, []device.Real3) {
		a := angles[bond]
		v21 := pos[0].XYZ().Sub(pos[1].XYZ())
		v23 := pos[2].XYZ().Sub(pos[1].XYZ())
		r21 := v21.Norm()
		r23 := v23.Norm()
		if r21 == 0 || r23 == 0 {
			return 0, make([]device.Real3, 3)
		}
		cosine := v21.Dot(v23) / (r21 * r23)
		cosine = math.Max(-1, math.Min(1, cosine))
		theta := math.Acos(cosine)
		delta := theta - a.Angle
		energy := 0.5 * a.K * delta * delta

		sine := math.Max(math.Sqrt(1-cosine*cosine), 1e-6)
		dEdAngle := a.K * delta
		u21 := v21.Scale(1 / r21)
		u23 := v23.Scale(1 / r23)
		f1 := u23.Sub(u21.Scale(cosine)).Scale(dEdAngle / (r21 * sine))
		f3 := u21.Sub(u23.Scale(cosine)).Scale(dEdAngle / (r23 * sine))
		f2 := f1.Add(f3).Scale(-1)
		return energy, []device.Real3{f1, f2, f3}
	}

	return reg.AddInteraction(atoms, bonded.Snippet{Source: source, Eval: eval}, f.ForceGroup)
}
