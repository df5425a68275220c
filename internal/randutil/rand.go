// Package randutil centralises deterministic seeding for the math/rand/v2
// generators used by the estimator, tree builder and value estimators.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns the seed for the stream-th child of seed. Workers that each
// draw from New(Derive(seed, i)) produce the same results regardless of how
// they are scheduled.
func Derive(seed int64, stream int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(stream+1)*goldenRatio64)))
}

// Split creates n independent generators derived from seed.
func Split(seed int64, n int) []*rand.Rand {
	out := make([]*rand.Rand, n)
	for i := range out {
		out[i] = New(Derive(seed, i))
	}
	return out
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
