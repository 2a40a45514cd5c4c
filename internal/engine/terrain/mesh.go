package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilder accumulates quads into a Mesh.
type MeshBuilder struct {
	mesh Mesh
}

// NewMeshBuilder returns an empty builder.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{mesh: Mesh{Bounds: EmptyBounds()}}
}

// AddQuad appends a quad. Corners are ordered [0]=BL, [1]=BR, [2]=TL, [3]=TR
// as seen from the side the normal points to.
func (b *MeshBuilder) AddQuad(corners [4][3]float32, layer float32) {
	e1 := mgl32.Vec3(corners[1]).Sub(mgl32.Vec3(corners[0]))
	e2 := mgl32.Vec3(corners[2]).Sub(mgl32.Vec3(corners[0]))
	normal := normalize(e1.Cross(e2))

	uvs := [4][2]float32{{0, 1}, {1, 1}, {0, 0}, {1, 0}}

	base := uint32(len(b.mesh.Vertices))
	for i, c := range corners {
		b.mesh.Vertices = append(b.mesh.Vertices, Vertex{
			Position: c,
			Normal:   normal,
			TexCoord: uvs[i],
			Layer:    layer,
		})
		b.mesh.Bounds.Extend(c)
	}

	b.mesh.Indices = append(b.mesh.Indices,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}

// CreaseAngle is the largest angle, in degrees, between two face normals
// that Build still shades as one smooth surface.
const CreaseAngle = 30

// Build smooths normals and returns the finished mesh. The builder must not
// be reused afterwards.
func (b *MeshBuilder) Build() *Mesh {
	SmoothNormals(b.mesh.Vertices, CreaseAngle)
	if len(b.mesh.Vertices) == 0 {
		b.mesh.Bounds = Bounds{}
	}
	m := b.mesh
	return &m
}

// SmoothNormals averages normals of vertices that share a position and lie
// on the same layer, so seams between tiles of one material shade softly
// while material borders keep their edges. Faces meeting at more than
// creaseDeg degrees stay hard.
func SmoothNormals(vertices []Vertex, creaseDeg float32) {
	const epsilon float32 = 0.001
	cosCrease := float32(math.Cos(float64(mgl32.DegToRad(creaseDeg))))

	type key struct {
		pos   [3]int32
		layer int32
	}

	groups := make(map[key][]int)
	for i := range vertices {
		p := vertices[i].Position
		k := key{
			pos:   [3]int32{int32(p[0] / epsilon), int32(p[1] / epsilon), int32(p[2] / epsilon)},
			layer: int32(vertices[i].Layer),
		}
		groups[k] = append(groups[k], i)
	}

	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		face := make([]mgl32.Vec3, len(idx))
		for j, i := range idx {
			face[j] = mgl32.Vec3(vertices[i].Normal)
		}
		for j, i := range idx {
			var sum mgl32.Vec3
			for _, n := range face {
				if n.Dot(face[j]) >= cosCrease {
					sum = sum.Add(n)
				}
			}
			vertices[i].Normal = normalize(sum)
		}
	}
}

func normalize(v mgl32.Vec3) [3]float32 {
	if v.Len() < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return v.Normalize()
}
