package shadow

import (
	"github.com/spaghettifunk/cascades/engine/math"
)

// clipListCapacity bounds the triangles one box triangle can turn into.
// Clipping against four planes yields at most 1->3->5->7->9 of them.
const clipListCapacity = 16

// aabbTriangleIndexes tessellates the corners of math.Extents3D.Corners into
// the twelve triangles of the box's six faces.
var aabbTriangleIndexes = [36]int{
	0, 1, 2, 1, 2, 3,
	4, 5, 6, 5, 6, 7,
	0, 2, 4, 2, 4, 6,
	1, 3, 5, 3, 5, 7,
	0, 1, 4, 1, 4, 5,
	2, 3, 6, 3, 6, 7,
}

type triangle struct {
	pt     [3]math.Vec3
	culled bool
}

// clipList is a fixed-capacity arena of triangles. Slots are never freed:
// clipped-away triangles are only flagged as culled.
type clipList struct {
	triangles [clipListCapacity]triangle
	count     int
}

// clipPlane is one side of the light box, expressed as a scalar edge on the
// X (component 0) or Y (component 1) axis.
type clipPlane struct {
	edge      float32
	component int
	isMin     bool
}

func component(v math.Vec3, c int) float32 {
	if c == 0 {
		return v.X
	}
	return v.Y
}

// inside uses strict comparisons; a vertex exactly on the edge is outside.
func (p clipPlane) inside(v math.Vec3) bool {
	if p.isMin {
		return component(v, p.component) > p.edge
	}
	return component(v, p.component) < p.edge
}

func boxPlanes(boxMin, boxMax math.Vec3) [4]clipPlane {
	return [4]clipPlane{
		{edge: boxMin.X, component: 0, isMin: true},
		{edge: boxMax.X, component: 0},
		{edge: boxMin.Y, component: 1, isMin: true},
		{edge: boxMax.Y, component: 1},
	}
}

// ComputeNearFar clips the light-space scene box against the four side
// planes of the light box [boxMin.xy, boxMax.xy] and returns the z range of
// whatever geometry survives.
//
// When nothing survives, near stays at +K_FLOAT_MAX and far at -K_FLOAT_MAX;
// callers must treat near > far as "no shadow casters".
func ComputeNearFar(boxMin, boxMax math.Vec3, sceneLight [8]math.Vec3) (near, far float32) {
	near = math.K_FLOAT_MAX
	far = -math.K_FLOAT_MAX

	planes := boxPlanes(boxMin, boxMax)

	// scratch list reused for every box triangle
	var list clipList
	for t := 0; t < 12; t++ {
		tri := [3]math.Vec3{
			sceneLight[aabbTriangleIndexes[t*3+0]],
			sceneLight[aabbTriangleIndexes[t*3+1]],
			sceneLight[aabbTriangleIndexes[t*3+2]],
		}
		list.reset(tri)
		list.clip(planes)

		for i := 0; i < list.count; i++ {
			if list.triangles[i].culled {
				continue
			}
			for _, pt := range list.triangles[i].pt {
				if near > pt.Z {
					near = pt.Z
				}
				if far < pt.Z {
					far = pt.Z
				}
			}
		}
	}
	return near, far
}

// clipTriangle clips a single triangle against the light box and returns
// the resulting list.
func clipTriangle(tri [3]math.Vec3, boxMin, boxMax math.Vec3) clipList {
	var list clipList
	list.reset(tri)
	list.clip(boxPlanes(boxMin, boxMax))
	return list
}

func (l *clipList) reset(tri [3]math.Vec3) {
	l.triangles[0] = triangle{pt: tri}
	l.count = 1
}

func (l *clipList) clip(planes [4]clipPlane) {
	for _, plane := range planes {
		for i := 0; i < l.count; i++ {
			if l.triangles[i].culled {
				continue
			}
			if l.clipAgainst(i, plane) {
				// skip the triangle that was just inserted after i
				i++
			}
		}
	}
}

// clipAgainst clips triangle i against one plane. It returns true when the
// triangle was split and a new triangle now occupies slot i+1.
func (l *clipList) clipAgainst(i int, plane clipPlane) bool {
	tri := &l.triangles[i]

	var in [3]bool
	insideCount := 0
	for v := 0; v < 3; v++ {
		in[v] = plane.inside(tri.pt[v])
		if in[v] {
			insideCount++
		}
	}

	// Move inside vertices to the front. The order of these three swaps
	// decides which edges stay adjacent to vertex 2 below.
	if in[1] && !in[0] {
		tri.pt[0], tri.pt[1] = tri.pt[1], tri.pt[0]
		in[0], in[1] = true, false
	}
	if in[2] && !in[1] {
		tri.pt[1], tri.pt[2] = tri.pt[2], tri.pt[1]
		in[1], in[2] = true, false
	}
	if in[1] && !in[0] {
		tri.pt[0], tri.pt[1] = tri.pt[1], tri.pt[0]
		in[0], in[1] = true, false
	}

	switch insideCount {
	case 0:
		tri.culled = true
	case 1:
		tri.culled = false
		v0 := tri.pt[0]
		toV1 := tri.pt[1].Sub(v0)
		toV2 := tri.pt[2].Sub(v0)

		hit := plane.edge - component(v0, plane.component)
		// the endpoints straddle the plane, so the deltas are non-zero
		// outside of genuine float degeneracy
		along01 := hit / component(toV1, plane.component)
		along02 := hit / component(toV2, plane.component)

		tri.pt[1] = toV2.MulScalar(along02).Add(v0)
		tri.pt[2] = toV1.MulScalar(along01).Add(v0)
	case 2:
		// Move whatever sits after i to the end of the list so slot i+1
		// can hold the second half of the split.
		l.triangles[l.count] = l.triangles[i+1]
		next := &l.triangles[i+1]
		next.culled = false

		v2 := tri.pt[2]
		toV0 := tri.pt[0].Sub(v2)
		toV1 := tri.pt[1].Sub(v2)

		hit := plane.edge - component(v2, plane.component)
		along20 := hit / component(toV0, plane.component)
		along21 := hit / component(toV1, plane.component)

		p20 := toV0.MulScalar(along20).Add(v2)
		p21 := toV1.MulScalar(along21).Add(v2)

		next.pt[0] = tri.pt[0]
		next.pt[1] = tri.pt[1]
		next.pt[2] = p20

		tri.pt[0] = next.pt[1]
		tri.pt[1] = next.pt[2]
		tri.pt[2] = p21

		l.count++
		return true
	default:
		tri.culled = false
	}
	return false
}
