package terrain

import "github.com/chewxy/math32"

// Noise is seeded 2D Perlin noise summed over octaves (fractal Brownian
// motion). The result lies roughly in Level ± Amplitude.
type Noise struct {
	Level     float32
	Amplitude float32
	Scale     float32 // world units to noise units

	Seed       int64
	Octaves    int
	Lacunarity float32
	Gain       float32
}

func (n *Noise) Height(x, z float32) float32 {
	return n.Level + n.Amplitude*fbm2D(x*n.Scale, z*n.Scale, n.Octaves, n.Lacunarity, n.Gain, n.Seed)
}

func fbm2D(x, y float32, octaves int, lacunarity, gain float32, seed int64) float32 {
	var result, max float32
	amplitude := float32(1)
	frequency := float32(1)

	for i := 0; i < octaves; i++ {
		result += perlin2D(x*frequency, y*frequency, seed+int64(i)) * amplitude
		max += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if max == 0 {
		return 0
	}
	return result / max
}

// perlin2D is zero on every lattice point.
func perlin2D(x, y float32, seed int64) float32 {
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	x1, y1 := x0+1, y0+1

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	ix0, iy0 := int(x0), int(y0)
	s := int(seed)
	g00 := gradient2D(hash(ix0, iy0, s))
	g10 := gradient2D(hash(ix0+1, iy0, s))
	g01 := gradient2D(hash(ix0, iy0+1, s))
	g11 := gradient2D(hash(ix0+1, iy0+1, s))

	v0 := lerp(g00[0]*(x-x0)+g00[1]*(y-y0), g10[0]*(x-x1)+g10[1]*(y-y0), sx)
	v1 := lerp(g01[0]*(x-x0)+g01[1]*(y-y1), g11[0]*(x-x1)+g11[1]*(y-y1), sx)
	return lerp(v0, v1, sy)
}

func hash(x, y, seed int) int {
	h := seed + x*374761393 + y*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

var gradients = [8][2]float32{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

func gradient2D(h int) [2]float32 {
	return gradients[h&7]
}

func lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// smoothstep is the quintic fade 6t^5 - 15t^4 + 10t^3.
func smoothstep(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}
