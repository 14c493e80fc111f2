// Batch size tuning harness: times one displacement run sequentially and
// across the worker pool for a range of batch sizes.
package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/lixenwraith/softmesh/deform"
	"github.com/lixenwraith/softmesh/geometry"
	"github.com/lixenwraith/softmesh/vmath"
)

const (
	vertexCount = 1 << 18
	runsPerSize = 50
)

func buildMesh() ([]vmath.Vec3, []vmath.Vec3) {
	rng := rand.New(rand.NewSource(7))
	positions := make([]vmath.Vec3, vertexCount)
	normals := make([]vmath.Vec3, vertexCount)
	for i := range positions {
		positions[i] = vmath.Vec3{
			X: rng.Float32() * 100,
			Y: rng.Float32() * 100,
			Z: rng.Float32() * 100,
		}
		normals[i] = vmath.V3Normalize(vmath.Vec3{
			X: rng.Float32() - 0.5,
			Y: rng.Float32() - 0.5,
			Z: rng.Float32() - 0.5,
		})
	}
	return positions, normals
}

func sequentialRun(positions, normals []vmath.Vec3, req deform.Request) time.Duration {
	start := time.Now()
	for r := 0; r < runsPerSize; r++ {
		for i := range positions {
			positions[i] = deform.Displace(positions[i], normals[i], req)
		}
	}
	return time.Since(start)
}

func parallelRun(batchSize int, positions, normals []vmath.Vec3, req deform.Request) (time.Duration, error) {
	buf, err := geometry.NewBuffers(positions, normals)
	if err != nil {
		return 0, err
	}
	defer buf.Release()

	pool := deform.NewPool(0)
	defer pool.Stop()

	sched, err := deform.NewScheduler(pool, batchSize)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	for r := 0; r < runsPerSize; r++ {
		job, err := sched.Schedule(buf, req)
		if err != nil {
			return 0, err
		}
		job.Complete()
	}
	return time.Since(start), nil
}

func main() {
	fmt.Printf("softmesh batch size benchmark — %d vertices, %d runs per size, %d CPUs\n",
		vertexCount, runsPerSize, runtime.NumCPU())
	fmt.Println()

	positions, normals := buildMesh()
	req := deform.Request{
		Center:  vmath.Vec3{X: 50, Y: 50, Z: 50},
		Radius:  30,
		Force:   0.01,
		Elapsed: 0.016,
	}

	seq := make([]vmath.Vec3, len(positions))
	copy(seq, positions)
	seqTime := sequentialRun(seq, normals, req)
	fmt.Printf("%-12s %12v\n", "sequential", seqTime)

	for _, batchSize := range []int{1, 8, 16, 64, 256, 1024, 4096, 16384} {
		parTime, err := parallelRun(batchSize, positions, normals, req)
		if err != nil {
			fmt.Printf("%-12d failed: %v\n", batchSize, err)
			continue
		}
		speedup := float64(seqTime) / float64(parTime)
		fmt.Printf("%-12d %12v %8.2fx\n", batchSize, parTime, speedup)
	}
}
