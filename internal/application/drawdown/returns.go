package drawdown

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// minReturn is the floor applied to every drawn annual return.
const minReturn = -0.99

// generateReturns produces the n_sims x years matrix of i.i.d. normal real
// returns the kernel consumes. The mapping from (seed, path index) to draw
// stream is fixed so that every optimizer probe for a scenario sees
// byte-identical returns regardless of which E is being evaluated — callers
// must build the matrix once per grid point and reuse it across every probe.
func generateReturns(seed int64, nSims, years int, muReal, volReal float64) [][]float64 {
	matrix := make([][]float64, nSims)
	for i := 0; i < nSims; i++ {
		src := rand.NewSource(pathStreamSeed(seed, i))
		dist := distuv.Normal{Mu: muReal, Sigma: volReal, Src: src}
		row := make([]float64, years)
		for y := 0; y < years; y++ {
			r := dist.Rand()
			if r < minReturn {
				r = minReturn
			}
			row[y] = r
		}
		matrix[i] = row
	}
	return matrix
}

// pathStreamSeed derives a per-path draw-stream seed from the scenario seed
// and path index. It is a pure function of its inputs so the same
// (seed, index) always yields the same stream, independent of worker
// scheduling or probe order.
func pathStreamSeed(seed int64, pathIndex int) uint64 {
	// Splitmix-style odd-multiplier mix keeps adjacent path indices from
	// producing correlated low-order bits in the source.
	h := uint64(seed) + uint64(pathIndex)*0x9E3779B97F4A7C15
	h ^= h >> 30
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 27
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return h
}
