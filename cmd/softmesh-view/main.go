// Interactive viewer: a deformable heightfield rendered in the terminal.
// Mouse press/drag dents the mesh, Shift raises it, 'r' flattens it back.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/softmesh/deform"
	"github.com/lixenwraith/softmesh/geometry"
	"github.com/lixenwraith/softmesh/status"
	"github.com/lixenwraith/softmesh/vmath"
)

const (
	gridWidth  = 120
	gridHeight = 40
)

// Config holds the runtime knobs, all overridable via SOFTMESH_* env vars
type Config struct {
	TickMs    int
	BatchSize int
	Workers   int
	Radius    float32
	Force     float32
	Audio     bool
}

// DefaultConfig returns the tuning used when no env overrides are present
func DefaultConfig() Config {
	return Config{
		TickMs:    16,
		BatchSize: deform.DefaultBatchSize,
		Workers:   0, // NumCPU
		Radius:    6,
		Force:     40,
		Audio:     true,
	}
}

// LoadConfig reads SOFTMESH_* env overrides
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SOFTMESH_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickMs = n
		}
	}
	if v := os.Getenv("SOFTMESH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("SOFTMESH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SOFTMESH_RADIUS"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			cfg.Radius = float32(f)
		}
	}
	if v := os.Getenv("SOFTMESH_FORCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Force = float32(f)
		}
	}
	if v := os.Getenv("SOFTMESH_AUDIO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio = b
		}
	}
	return cfg
}

type Viewer struct {
	screen tcell.Screen
	cfg    Config

	pool *deform.Pool
	ctrl *deform.Controller
	reg  *status.Registry

	flat  []vmath.Vec3 // pristine positions for reset
	frame []vmath.Vec3 // last published snapshot, the only thing drawn

	lastTick  time.Time
	audioInit bool
}

func NewViewer(cfg Config) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	positions := make([]vmath.Vec3, gridWidth*gridHeight)
	normals := make([]vmath.Vec3, gridWidth*gridHeight)
	for z := 0; z < gridHeight; z++ {
		for x := 0; x < gridWidth; x++ {
			i := z*gridWidth + x
			positions[i] = vmath.Vec3{X: float32(x), Y: 0, Z: float32(z)}
			normals[i] = vmath.Vec3{X: 0, Y: 1, Z: 0}
		}
	}

	buf, err := geometry.NewBuffers(positions, normals)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	pool := deform.NewPool(cfg.Workers)
	sched, err := deform.NewScheduler(pool, cfg.BatchSize)
	if err != nil {
		pool.Stop()
		screen.Fini()
		return nil, err
	}

	reg := status.NewRegistry()
	tickSec := float32(cfg.TickMs) / 1000

	v := &Viewer{
		screen:   screen,
		cfg:      cfg,
		pool:     pool,
		ctrl:     deform.NewController(buf, sched, reg, tickSec),
		reg:      reg,
		flat:     positions,
		lastTick: time.Now(),
	}

	if cfg.Audio {
		sampleRate := beep.SampleRate(44100)
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err == nil {
			v.audioInit = true
		}
	}
	return v, nil
}

func (v *Viewer) playContactBlip() {
	if !v.audioInit {
		return
	}
	sampleRate := beep.SampleRate(44100)
	sine, _ := generators.SineTone(sampleRate, 660)
	speaker.Play(beep.Take(sampleRate.N(30*time.Millisecond), sine))
}

// poke deforms around the picked terminal cell; raise inverts the force
func (v *Viewer) poke(cellX, cellY int, raise bool) {
	if cellX < 0 || cellX >= gridWidth || cellY < 0 || cellY >= gridHeight {
		return
	}

	force := -v.cfg.Force
	if raise {
		force = v.cfg.Force
	}

	point := vmath.Vec3{X: float32(cellX), Y: 0, Z: float32(cellY)}
	if err := v.ctrl.Deform(point, v.cfg.Radius, force); err != nil {
		return
	}
	v.playContactBlip()
}

func (v *Viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Rune() == 'q':
			return false
		case ev.Rune() == 'r':
			v.ctrl.Drain() // join before touching the buffer, keep the tick delta
			v.ctrl.Buffers().Replace(v.flat)
			v.frame = append(v.frame[:0], v.flat...)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			raise := ev.Modifiers()&tcell.ModShift != 0
			x, y := ev.Position()
			v.poke(x, y, raise)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// heightStyle maps displacement magnitude to a blue-to-red ramp
func heightStyle(y float32) tcell.Style {
	style := tcell.StyleDefault
	switch {
	case y < -4:
		return style.Foreground(tcell.ColorNavy)
	case y < -1:
		return style.Foreground(tcell.ColorBlue)
	case y < -0.05:
		return style.Foreground(tcell.ColorTeal)
	case y <= 0.05:
		return style.Foreground(tcell.ColorGray)
	case y <= 1:
		return style.Foreground(tcell.ColorOlive)
	case y <= 4:
		return style.Foreground(tcell.ColorOrange)
	default:
		return style.Foreground(tcell.ColorRed)
	}
}

func heightRune(y float32) rune {
	switch {
	case y < -4:
		return '▓'
	case y < -1:
		return '▒'
	case y < -0.05:
		return '░'
	case y <= 0.05:
		return '·'
	case y <= 1:
		return '░'
	case y <= 4:
		return '▒'
	default:
		return '▓'
	}
}

func (v *Viewer) draw(positions []vmath.Vec3) {
	v.screen.Clear()

	w, h := v.screen.Size()
	for z := 0; z < gridHeight && z < h-1; z++ {
		for x := 0; x < gridWidth && x < w; x++ {
			p := positions[z*gridWidth+x]
			v.screen.SetContent(x, z, heightRune(p.Y), nil, heightStyle(p.Y))
		}
	}

	runs := v.reg.Ints.Get(status.KeyRuns).Load()
	waitMs := v.reg.Floats.Get(status.KeyWaitMs).Get()
	bar := fmt.Sprintf(" drag: dent  shift-drag: raise  r: flatten  q: quit | runs %d  wait %.2fms", runs, waitMs)
	barStyle := tcell.StyleDefault.Reverse(true)
	for i, r := range bar {
		if i >= w {
			break
		}
		v.screen.SetContent(i, h-1, r, nil, barStyle)
	}

	v.screen.Show()
}

func (v *Viewer) run() {
	ticker := time.NewTicker(time.Duration(v.cfg.TickMs) * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	// Rendering consumes the publish hook, never the live buffer
	v.ctrl.AddPublishHook(func(positions []vmath.Vec3) {
		v.frame = append(v.frame[:0], positions...)
	})
	v.frame = append(v.frame, v.flat...)

	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}

		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(v.lastTick).Seconds())
			v.lastTick = now

			v.ctrl.Tick(dt)
			v.draw(v.frame)
		}
	}
}

func (v *Viewer) cleanup() {
	if v.audioInit {
		speaker.Close()
	}
	v.pool.Stop()
	v.ctrl.Buffers().Release()
	v.screen.Fini()
}

func main() {
	viewer, err := NewViewer(LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer viewer.cleanup()

	viewer.run()
}
