package pathtrace

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const stlHeaderSize = 80

// LoadSTL reads a binary STL file and returns the resulting Mesh. Face
// normals are recomputed from vertex order (spec §6); the normals stored
// in the file are advisory and discarded. Per-vertex normals are the
// average of every incident face normal, grouped by exact coordinate
// equality (spec §6).
func LoadSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMesh, err)
	}
	defer f.Close()
	return DecodeSTL(f)
}

// rawFace is a triangle as read from the file, before per-vertex normal
// averaging has been resolved across the whole mesh.
type rawFace struct {
	p0, p1, p2 Vec3
	faceNormal Vec3
}

// DecodeSTL parses the binary STL wire format from r (spec §6): an
// 80-byte header (ignored), a uint32 triangle count, then per triangle
// three float32 normal components (ignored), nine float32 vertex
// coordinates, and a uint16 attribute byte count which must be zero.
func DecodeSTL(r io.Reader) (*Mesh, error) {
	header := make([]byte, stlHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrNoMesh, err)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count: %v", ErrNoMesh, err)
	}

	faces := make([]rawFace, 0, count)
	var vertex [12]float32 // ignored normal (3) + p0,p1,p2 (9)
	var attrByteCount uint16

	for i := uint32(0); i < count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &vertex); err != nil {
			return nil, fmt.Errorf("%w: reading triangle %d: %v", ErrNoMesh, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &attrByteCount); err != nil {
			return nil, fmt.Errorf("%w: reading attribute count for triangle %d: %v", ErrNoMesh, i, err)
		}
		if attrByteCount != 0 {
			return nil, fmt.Errorf("%w: triangle %d has non-zero attribute byte count %d", ErrNoMesh, i, attrByteCount)
		}

		p0 := V3(float64(vertex[3]), float64(vertex[4]), float64(vertex[5]))
		p1 := V3(float64(vertex[6]), float64(vertex[7]), float64(vertex[8]))
		p2 := V3(float64(vertex[9]), float64(vertex[10]), float64(vertex[11]))

		edge01 := p1.Sub(p0)
		edge02 := p2.Sub(p0)
		normal, err := edge01.Cross(edge02).Normalize()
		if err != nil {
			Logger().Warn("degenerate triangle in STL, keeping with zero normal", "index", i)
			normal = Vec3{}
		}
		faces = append(faces, rawFace{p0: p0, p1: p1, p2: p2, faceNormal: normal})
	}

	if count == 0 {
		Logger().Warn("STL mesh has zero triangles")
	}

	triangles := buildTrianglesWithVertexNormals(faces)
	return NewMesh(triangles), nil
}

// buildTrianglesWithVertexNormals groups vertices by exact coordinate
// equality and averages the incident face normals at each position
// (spec §6), then builds Triangle values carrying the resulting
// base/u/v interpolation coefficients (spec §3).
func buildTrianglesWithVertexNormals(faces []rawFace) []Triangle {
	sums := make(map[Vec3]Vec3, len(faces)*3)
	for _, face := range faces {
		sums[face.p0] = sums[face.p0].Add(face.faceNormal)
		sums[face.p1] = sums[face.p1].Add(face.faceNormal)
		sums[face.p2] = sums[face.p2].Add(face.faceNormal)
	}

	averaged := make(map[Vec3]Vec3, len(sums))
	for p, sum := range sums {
		n, err := sum.Normalize()
		if err != nil {
			n = Vec3{}
		}
		averaged[p] = n
	}

	triangles := make([]Triangle, 0, len(faces))
	for _, face := range faces {
		n0 := averaged[face.p0]
		n1 := averaged[face.p1]
		n2 := averaged[face.p2]
		vn := VertexNormal{Base: n0, U: n1.Sub(n0), V: n2.Sub(n0)}
		triangles = append(triangles, NewTriangle(face.p0, face.p1, face.p2, vn))
	}
	return triangles
}
