package terrain

import (
	"fmt"

	"github.com/chewxy/math32"
)

// HeightMap is a square grid of samples centred on the origin. Queries
// between samples are bilinearly interpolated; queries outside the grid use
// the nearest edge sample.
type HeightMap struct {
	size     int
	cellSize float32
	half     float32 // world offset of sample 0
	heights  []float32
}

// NewHeightMap wraps size*size row-major samples (z rows, x columns).
func NewHeightMap(size int, cellSize float32, heights []float32) (*HeightMap, error) {
	if size < 2 {
		return nil, fmt.Errorf("terrain: height map: %w: size %d must be at least 2", ErrInvalidConfig, size)
	}
	if !(cellSize > 0) || math32.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("terrain: height map: %w: cell size %v", ErrInvalidConfig, cellSize)
	}
	if len(heights) != size*size {
		return nil, fmt.Errorf("terrain: height map: %w: got %d samples, want %d", ErrInvalidConfig, len(heights), size*size)
	}
	return &HeightMap{
		size:     size,
		cellSize: cellSize,
		half:     float32(size-1) * cellSize / 2,
		heights:  heights,
	}, nil
}

// Bake samples p on a size*size grid.
func Bake(p Provider, size int, cellSize float32) (*HeightMap, error) {
	if size < 2 {
		return nil, fmt.Errorf("terrain: bake: %w: size %d must be at least 2", ErrInvalidConfig, size)
	}
	heights := make([]float32, size*size)
	half := float32(size-1) * cellSize / 2
	for row := 0; row < size; row++ {
		z := float32(row)*cellSize - half
		for col := 0; col < size; col++ {
			x := float32(col)*cellSize - half
			heights[row*size+col] = p.Height(x, z)
		}
	}
	return NewHeightMap(size, cellSize, heights)
}

func (m *HeightMap) Size() int {
	return m.size
}

func (m *HeightMap) CellSize() float32 {
	return m.cellSize
}

func (m *HeightMap) Height(x, z float32) float32 {
	gx := m.clamp((x + m.half) / m.cellSize)
	gz := m.clamp((z + m.half) / m.cellSize)

	col := int(gx)
	row := int(gz)
	if col >= m.size-1 {
		col = m.size - 2
	}
	if row >= m.size-1 {
		row = m.size - 2
	}
	fx := gx - float32(col)
	fz := gz - float32(row)

	h00 := m.at(col, row)
	h10 := m.at(col+1, row)
	h01 := m.at(col, row+1)
	h11 := m.at(col+1, row+1)
	return lerp(lerp(h00, h10, fx), lerp(h01, h11, fx), fz)
}

func (m *HeightMap) at(col, row int) float32 {
	return m.heights[row*m.size+col]
}

func (m *HeightMap) clamp(g float32) float32 {
	if !(g > 0) {
		return 0
	}
	if max := float32(m.size - 1); g > max {
		return max
	}
	return g
}
