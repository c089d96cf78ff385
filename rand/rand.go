// rand/rand.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"github.com/MichaelTJones/pcg"
)

// Rand wraps a PCG32 generator; unlike math/rand, an explicitly-seeded
// PCG gives identical sequences across platforms and Go releases, which
// keeps perturbed scenario runs reproducible.
type Rand struct {
	r *pcg.PCG32
}

func New() Rand {
	return Rand{r: pcg.NewPCG32()}
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// Float32n returns a uniform value in [-n, n]; handy for symmetric
// sensor jitter.
func (r *Rand) Float32n(n float32) float32 {
	return n * (2*r.Float32() - 1)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}
