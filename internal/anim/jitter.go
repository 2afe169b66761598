package anim

import "math/rand/v2"

// Jitter returns a pseudo-random value in [-amplitude, amplitude) that
// depends only on seed and frame, so re-rendering a frame reproduces it.
func Jitter(seed uint64, frame int, amplitude float64) float64 {
	r := rand.New(rand.NewPCG(seed, uint64(int64(frame))))
	return (r.Float64()*2 - 1) * amplitude
}
