package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

func TestGeneratePointMinMode(t *testing.T) {
	p := NewPatch(1, 1)
	p.D1 = 10
	p.U1, p.V1 = 2, 3
	p.NormalAxis, p.TangentAxis, p.BitangentAxis = 2, 0, 1
	p.ProjectionMode = ProjectionMin

	got := p.GeneratePoint(4, 5, 7, 10)
	if got.Z != 17 || got.X != 6 || got.Y != 8 {
		t.Fatalf("unexpected point %+v", got)
	}
}

func TestGeneratePointMaxMode(t *testing.T) {
	p := NewPatch(1, 1)
	p.D1 = 10
	p.NormalAxis, p.TangentAxis, p.BitangentAxis = 2, 0, 1
	p.ProjectionMode = ProjectionMax

	got := p.GeneratePoint(0, 0, 3, 10)
	if got.Z != 7 {
		t.Fatalf("expected max-mode depth 7, got %d", got.Z)
	}
}

func TestRotate45RoundTripsPerAxis(t *testing.T) {
	pts := []struct{ x, y, z int32 }{
		{0, 0, 0}, {1, 2, 3}, {100, 50, 7}, {1023, 0, 511},
	}
	for axis := 0; axis < 3; axis++ {
		for _, tc := range pts {
			orig := geom.Point3D{X: tc.x, Y: tc.y, Z: tc.z}
			rot := Rotate45(orig, axis, 10)

			a0, a1 := (axis+1)%3, (axis+2)%3
			rx, ry := rotate45Inverse(rot.At(a0), rot.At(a1), 10)
			back := rot.Set(a0, rx).Set(a1, ry)
			assert.Equal(t, orig, back, "axis %d point %+v", axis, tc)
		}
	}
}

func TestCanvasRoundTripAllOrientations(t *testing.T) {
	for _, o := range AllOrientations {
		p := NewPatch(3, 5)
		p.U0, p.V0 = 2, 4
		p.Orientation = o

		w, h := p.SizeU0, p.SizeV0
		for u := 0; u < w; u++ {
			for v := 0; v < h; v++ {
				_, _, flat := p.PatchBlock2CanvasBlock(u, v, 64)
				cx := flat % 64
				cy := flat / 64
				ru, rv := p.Canvas2Patch(cx*1, cy*1, 1)
				assert.Equal(t, u, ru, "orientation %v u", o)
				assert.Equal(t, v, rv, "orientation %v v", o)
			}
		}
	}
}

func TestFootprintBlocksSwapsForRotatedOrientations(t *testing.T) {
	p := NewPatch(3, 7)
	p.Orientation = OrientationRot90
	u, v := p.FootprintBlocks()
	if u != 7 || v != 3 {
		t.Fatalf("expected swapped footprint 7x3, got %dx%d", u, v)
	}

	p.Orientation = OrientationDefault
	u, v = p.FootprintBlocks()
	if u != 3 || v != 7 {
		t.Fatalf("expected unswapped footprint 3x7, got %dx%d", u, v)
	}
}
