package meshopt

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/meshopt/shape"
	"github.com/go-gl/mathgl/mgl32"
)

func TestGeneratePointReps(t *testing.T) {
	cube := shape.Cube(2)
	jittered := cube.Clone()
	for v := range jittered.Positions {
		jittered.Positions[v] = jittered.Positions[v].Add(mgl32.Vec3{float32(v%3) * 1e-4, 0, float32(v%2) * 1e-4})
	}

	tests := []struct {
		name      string
		positions []mgl32.Vec3
		epsilon   float32
	}{
		{"exact", cube.Positions, 0},
		{"within epsilon", jittered.Positions, 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reps := make([]uint32, len(tt.positions))
			if err := GeneratePointReps(tt.positions, len(tt.positions), tt.epsilon, reps); err != nil {
				t.Fatalf("GeneratePointReps() error = %v", err)
			}

			distinct := make(map[uint32]struct{})
			for v, rep := range reps {
				if int(rep) > v {
					t.Errorf("rep of vertex %d is %d, want at most %d", v, rep, v)
				}
				if reps[rep] != rep {
					t.Errorf("rep of vertex %d is %d, whose own rep is %d", v, rep, reps[rep])
				}
				// Compare the unjittered corners.
				if !vec3ApproxEqual(cube.Positions[v], cube.Positions[rep], 1e-6) {
					t.Errorf("vertex %d at %v shares rep %d at %v", v, cube.Positions[v], rep, cube.Positions[rep])
				}
				distinct[rep] = struct{}{}
			}
			if len(distinct) != 8 {
				t.Errorf("got %d distinct reps, want 8", len(distinct))
			}
		})
	}
}

func TestGeneratePointReps_Errors(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}

	tests := []struct {
		name        string
		positions   []mgl32.Vec3
		vertexCount int
		epsilon     float32
		reps        []uint32
	}{
		{"nil positions", nil, 2, 0, make([]uint32, 2)},
		{"nil reps", positions, 2, 0, nil},
		{"no vertices", positions, 0, 0, make([]uint32, 2)},
		{"short reps", positions, 2, 0, make([]uint32, 1)},
		{"negative epsilon", positions, 2, -1, make([]uint32, 2)},
		{"nan epsilon", positions, 2, float32(math.NaN()), make([]uint32, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GeneratePointReps(tt.positions, tt.vertexCount, tt.epsilon, tt.reps)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("GeneratePointReps() error = %v, want %v", err, ErrInvalidArgument)
			}
		})
	}
}

// requireSymmetric fails unless every adjacency entry is mirrored by
// the neighbour it names.
func requireSymmetric(t *testing.T, adjacency []uint32, faceCount int) {
	t.Helper()
	for face := range faceCount {
		for edge := range 3 {
			other := adjacency[face*3+edge]
			if other == Unused32 {
				continue
			}
			back := adjacency[other*3 : other*3+3]
			if back[0] != uint32(face) && back[1] != uint32(face) && back[2] != uint32(face) {
				t.Errorf("face %d lists %d as neighbour, which lists %v", face, other, back)
			}
		}
	}
}

func TestConvertPointRepsToAdjacency(t *testing.T) {
	cube := shape.Cube(2)
	faceCount := cube.FaceCount()

	t.Run("identity reps", func(t *testing.T) {
		adjacency := make([]uint32, faceCount*3)
		if err := ConvertPointRepsToAdjacency(cube.Indices, faceCount, nil, cube.VertexCount(), adjacency); err != nil {
			t.Fatalf("ConvertPointRepsToAdjacency() error = %v", err)
		}
		// Without reps only the two triangles of each quad touch, along
		// their shared diagonal.
		for face := range uint32(faceCount) {
			var want [3]uint32
			if face%2 == 0 {
				want = [3]uint32{Unused32, Unused32, face + 1}
			} else {
				want = [3]uint32{face - 1, Unused32, Unused32}
			}
			got := [3]uint32(adjacency[face*3 : face*3+3])
			if got != want {
				t.Errorf("adjacency of face %d = %v, want %v", face, got, want)
			}
		}
	})

	t.Run("positional reps", func(t *testing.T) {
		reps := make([]uint32, cube.VertexCount())
		if err := GeneratePointReps(cube.Positions, cube.VertexCount(), 0, reps); err != nil {
			t.Fatalf("GeneratePointReps() error = %v", err)
		}
		adjacency := make([]uint32, faceCount*3)
		if err := ConvertPointRepsToAdjacency(cube.Indices, faceCount, reps, cube.VertexCount(), adjacency); err != nil {
			t.Fatalf("ConvertPointRepsToAdjacency() error = %v", err)
		}
		// The cube is closed: every edge has a neighbour.
		for j, adj := range adjacency {
			if adj == Unused32 {
				t.Errorf("edge %d of face %d has no neighbour", j%3, j/3)
			}
			if adj == uint32(j/3) {
				t.Errorf("face %d is its own neighbour", j/3)
			}
		}
		requireSymmetric(t, adjacency, faceCount)
	})
}

func TestConvertPointRepsToAdjacency_SkippedFaces(t *testing.T) {
	s := Sentinel[uint16]()
	indices := []uint16{
		0, 1, 2,
		2, 1, 3,
		s, s, s,
		1, 1, 2,
		3, s, 2,
	}
	adjacency := make([]uint32, 15)
	if err := ConvertPointRepsToAdjacency(indices, 5, nil, 4, adjacency); err != nil {
		t.Fatalf("ConvertPointRepsToAdjacency() error = %v", err)
	}

	want := []uint32{
		Unused32, 1, Unused32,
		0, Unused32, Unused32,
		Unused32, Unused32, Unused32,
		Unused32, Unused32, Unused32,
		Unused32, Unused32, Unused32,
	}
	for j := range want {
		if adjacency[j] != want[j] {
			t.Errorf("adjacency[%d] = %d, want %d", j, adjacency[j], want[j])
		}
	}
}

func TestConvertPointRepsToAdjacency_Errors(t *testing.T) {
	indices := []uint32{0, 1, 2}

	tests := []struct {
		name      string
		indices   []uint32
		reps      []uint32
		adjacency []uint32
		want      error
	}{
		{"nil adjacency", indices, nil, nil, ErrInvalidArgument},
		{"short adjacency", indices, nil, make([]uint32, 2), ErrInvalidArgument},
		{"short reps", indices, []uint32{0, 1}, make([]uint32, 3), ErrInvalidArgument},
		{"rep beyond vertices", indices, []uint32{0, 1, 9}, make([]uint32, 3), ErrUnexpected},
		{"index beyond vertices", []uint32{0, 1, 3}, nil, make([]uint32, 3), ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ConvertPointRepsToAdjacency(tt.indices, 1, tt.reps, 3, tt.adjacency)
			if !errors.Is(err, tt.want) {
				t.Errorf("ConvertPointRepsToAdjacency() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateAdjacencyAndPointReps(t *testing.T) {
	sphere, err := shape.Sphere(2, 8)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}
	faceCount := sphere.FaceCount()

	// The seam and pole vertices differ by rounding noise only.
	const epsilon = 1e-5
	reps := make([]uint32, sphere.VertexCount())
	adjacency := make([]uint32, faceCount*3)
	if err := GenerateAdjacencyAndPointReps(sphere.Indices, faceCount, sphere.Positions, sphere.VertexCount(), epsilon, reps, adjacency); err != nil {
		t.Fatalf("GenerateAdjacencyAndPointReps() error = %v", err)
	}
	requireSymmetric(t, adjacency, faceCount)

	onlyAdjacency := make([]uint32, faceCount*3)
	if err := GenerateAdjacencyAndPointReps(sphere.Indices, faceCount, sphere.Positions, sphere.VertexCount(), epsilon, nil, onlyAdjacency); err != nil {
		t.Fatalf("GenerateAdjacencyAndPointReps() error = %v", err)
	}
	for j := range adjacency {
		if adjacency[j] != onlyAdjacency[j] {
			t.Fatalf("adjacency[%d] = %d without reps output, %d with", j, onlyAdjacency[j], adjacency[j])
		}
	}

	// The last quad of the second ring closes the seam against the
	// first quad of that ring.
	const seamFace, firstFace = 63, 32
	seam := adjacency[seamFace*3 : seamFace*3+3]
	if seam[0] != firstFace && seam[1] != firstFace && seam[2] != firstFace {
		t.Errorf("seam face %d is not joined to face %d: %v", seamFace, firstFace, seam)
	}

	if err := GenerateAdjacencyAndPointReps(sphere.Indices, faceCount, sphere.Positions, sphere.VertexCount(), 0, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("GenerateAdjacencyAndPointReps() with no output error = %v, want %v", err, ErrInvalidArgument)
	}
}
