package modes

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the particle count above which updates are split
// across goroutines.
const parallelThreshold = 20000

// forEachParticle calls fn for every index in [0,n). Large ranges are split
// into one contiguous chunk per CPU; it returns only after every chunk is
// done, so callers may read the buffer immediately afterwards.
func forEachParticle(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// splitmix64 is a fast 64-bit mixer used to derive per-particle scatter
// from the particle index.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// unitRand returns a deterministic value in [0,1) for (index, salt).
func unitRand(index int, salt uint64) float64 {
	return float64(splitmix64(uint64(index)*0x9E3779B185EBCA87^salt)>>11) / (1 << 53)
}
