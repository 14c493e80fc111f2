// Headless demo: pokes a heightfield mesh at random each tick and streams
// the published positions to websocket viewers on /mesh.
package main

import (
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lixenwraith/softmesh/deform"
	"github.com/lixenwraith/softmesh/geometry"
	"github.com/lixenwraith/softmesh/status"
	"github.com/lixenwraith/softmesh/stream"
	"github.com/lixenwraith/softmesh/vmath"
)

const (
	gridSize = 64 // gridSize x gridSize vertices
	radius   = 5
	force    = 20
)

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func flatGrid(n int) ([]vmath.Vec3, []vmath.Vec3) {
	positions := make([]vmath.Vec3, n*n)
	normals := make([]vmath.Vec3, n*n)
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			i := z*n + x
			positions[i] = vmath.Vec3{X: float32(x), Y: 0, Z: float32(z)}
			normals[i] = vmath.Vec3{X: 0, Y: 1, Z: 0}
		}
	}
	return positions, normals
}

func main() {
	addr := os.Getenv("SOFTMESH_ADDR")
	if addr == "" {
		addr = ":8089"
	}
	tickMs := envInt("SOFTMESH_TICK_MS", 50)
	batchSize := envInt("SOFTMESH_BATCH_SIZE", deform.DefaultBatchSize)
	workers := envInt("SOFTMESH_WORKERS", 0)

	positions, normals := flatGrid(gridSize)
	buf, err := geometry.NewBuffers(positions, normals)
	if err != nil {
		log.Fatalf("buffers: %v", err)
	}
	defer buf.Release()

	pool := deform.NewPool(workers)
	defer pool.Stop()

	sched, err := deform.NewScheduler(pool, batchSize)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	reg := status.NewRegistry()
	ctrl := deform.NewController(buf, sched, reg, float32(tickMs)/1000)

	srv := stream.NewServer()
	defer srv.Close()
	ctrl.AddPublishHook(srv.Broadcast)

	mux := http.NewServeMux()
	mux.Handle("/mesh", srv)
	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("streaming %dx%d mesh on ws://%s/mesh", gridSize, gridSize, addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(tickMs) * time.Millisecond)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lastTick := time.Now()

	for {
		select {
		case <-stop:
			log.Printf("shutting down: %d runs, %d publishes",
				reg.Ints.Get(status.KeyRuns).Load(),
				reg.Ints.Get(status.KeyPublishes).Load())
			httpSrv.Close()
			return

		case <-ticker.C:
			// Random poke, alternating dent and raise
			point := vmath.Vec3{
				X: rng.Float32() * gridSize,
				Z: rng.Float32() * gridSize,
			}
			f := float32(force)
			if rng.Intn(2) == 0 {
				f = -f
			}
			if err := ctrl.Deform(point, radius, f); err != nil {
				log.Printf("deform: %v", err)
			}

			now := time.Now()
			ctrl.Tick(float32(now.Sub(lastTick).Seconds()))
			lastTick = now
		}
	}
}
