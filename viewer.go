package main

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/assets"
	"github.com/milk9111/twobd/config"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/entity"
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/levels"
	"github.com/milk9111/twobd/prefabs"
	"github.com/milk9111/twobd/render"
	"github.com/milk9111/twobd/scene"
	"go.uber.org/zap"
)

// Input is the viewer's view of the keyboard: held actions for behaviours
// and edge-triggered ones for toggles.
type Input interface {
	Pressed(action string) bool
	JustPressed(action string) bool
}

// Viewer owns the loaded scenes and everything a frame needs that does not
// depend on a window.
type Viewer struct {
	log      *zap.Logger
	cfg      *config.Config
	lib      *assets.Library
	reg      *scene.Registry
	renderer *system.RenderSystem
	watcher  *prefabs.Watcher

	aspect    float32
	elapsed   float64
	layout    string
	wireframe bool
	active    int
}

func NewViewer(log *zap.Logger, cfg *config.Config) *Viewer {
	return &Viewer{
		log:       log,
		cfg:       cfg,
		lib:       assets.NewLibrary(log, cfg.Scenes.AssetsDir),
		reg:       scene.NewRegistry(log),
		renderer:  system.NewRenderSystem(),
		aspect:    float32(cfg.Window.Width) / float32(cfg.Window.Height),
		layout:    cfg.Render.Layout,
		wireframe: cfg.Render.Wireframe,
	}
}

// LoadScenes builds every available level and makes startup current.
func (v *Viewer) LoadScenes(startup string) error {
	names, err := levels.List(v.cfg.Scenes.Dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no levels found")
	}
	for _, name := range names {
		sc, err := v.build(name)
		if err != nil {
			return err
		}
		if err := v.reg.Add(sc); err != nil {
			return err
		}
	}
	if startup != "" {
		if err := v.reg.SetCurrent(startup); err != nil {
			return fmt.Errorf("startup scene %q: %w", startup, err)
		}
	}
	v.log.Info("scenes loaded", zap.Strings("scenes", v.reg.Names()), zap.String("current", v.reg.CurrentName()))
	return nil
}

func (v *Viewer) build(name string) (*scene.Scene, error) {
	lvl, err := levels.Load(v.cfg.Scenes.Dir, name)
	if err != nil {
		return nil, err
	}
	return entity.BuildScene(lvl, v.lib, entity.BuildOptions{
		Log:     v.log,
		Aspect:  v.aspect,
		Gravity: v.cfg.Physics.Gravity,
		Seed:    v.cfg.Scenes.Seed,
	})
}

// Watch starts reporting edits under the level, prefab and asset directories.
func (v *Viewer) Watch() error {
	dirs := []string{
		v.cfg.Scenes.Dir,
		"prefabs",
		filepath.Join("prefabs", "scripts"),
		filepath.Join(v.cfg.Scenes.AssetsDir, "models"),
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return err
	}
	v.watcher = w
	v.log.Debug("watching for changes", zap.Strings("dirs", w.Dirs()))
	return nil
}

// Reload rebuilds the scenes affected by the changed files. A level file
// rebuilds its own scene; prefabs, scripts and models rebuild them all. A
// scene that fails to build keeps its previous version.
func (v *Viewer) Reload(paths []string) {
	var (
		rebuild = map[string]bool{}
		all     bool
	)
	for _, p := range paths {
		switch {
		case prefabs.IsModelFile(p):
			v.lib.Evict(filepath.ToSlash(filepath.Join("models", filepath.Base(p))))
			all = true
		case prefabs.IsSpecFile(p) && v.isLevelFile(p):
			rebuild[levels.NameOf(p)] = true
		default:
			all = true
		}
	}
	if all {
		for _, name := range v.reg.Names() {
			rebuild[name] = true
		}
	}

	for name := range rebuild {
		sc, err := v.build(name)
		if err != nil {
			v.log.Warn("reload failed", zap.String("scene", name), zap.Error(err))
			continue
		}
		if _, ok := v.reg.Get(name); ok {
			err = v.reg.Replace(sc)
		} else {
			err = v.reg.Add(sc)
		}
		if err != nil {
			v.log.Warn("reload failed", zap.String("scene", name), zap.Error(err))
			continue
		}
		v.log.Info("scene reloaded", zap.String("scene", name))
	}
}

func (v *Viewer) isLevelFile(p string) bool {
	dir, err := filepath.Abs(filepath.Dir(p))
	if err != nil {
		return false
	}
	levelsDir, err := filepath.Abs(v.cfg.Scenes.Dir)
	return err == nil && dir == levelsDir
}

// Step runs one frame of input handling and scene updates.
func (v *Viewer) Step(in Input, dt float64) error {
	if in != nil {
		if err := v.handleInput(in, dt); err != nil {
			return err
		}
	}

	if v.watcher != nil {
		changed, err := v.watcher.Poll()
		if err != nil {
			v.log.Warn("watcher error", zap.Error(err))
		}
		if len(changed) > 0 {
			v.Reload(changed)
		}
	}

	var actions ecs.Input
	if in != nil {
		actions = in
	}
	if err := system.UpdateScene(v.reg, actions, dt, v.elapsed); err != nil {
		return err
	}
	v.elapsed += dt
	return nil
}

func (v *Viewer) handleInput(in Input, dt float64) error {
	if in.JustPressed(config.ActionNextScene) {
		sc, err := v.reg.Next()
		if err != nil {
			return err
		}
		v.log.Info("scene switched", zap.String("scene", sc.Name))
	}
	if in.JustPressed(config.ActionWireframe) {
		v.wireframe = !v.wireframe
	}
	if in.JustPressed(config.ActionLayout) {
		if v.layout == config.LayoutQuad {
			v.layout = config.LayoutSingle
		} else {
			v.layout = config.LayoutQuad
		}
	}
	for i, action := range []string{config.ActionView4, config.ActionView1, config.ActionView2, config.ActionView3} {
		if in.JustPressed(action) {
			v.active = i
		}
	}

	cam := v.activeCamera()
	if cam == nil {
		return nil
	}
	axis := func(pos, neg string) float32 {
		var a float32
		if in.Pressed(pos) {
			a++
		}
		if in.Pressed(neg) {
			a--
		}
		return a
	}
	move := mgl32.Vec3{
		axis(config.ActionCamRight, config.ActionCamLeft),
		axis(config.ActionCamUp, config.ActionCamDown),
		axis(config.ActionCamForward, config.ActionCamBack),
	}
	rot := mgl32.Vec3{
		axis(config.ActionCamPitchUp, config.ActionCamPitchDown),
		axis(config.ActionCamYawLeft, config.ActionCamYawRight),
		0,
	}
	step := float32(dt)
	if move != (mgl32.Vec3{}) {
		cam.Move(move.Mul(v.cfg.Camera.MoveSpeed * step))
	}
	if rot != (mgl32.Vec3{}) {
		cam.Rotate(rot.Mul(v.cfg.Camera.RotateSpeed * step))
	}
	return nil
}

func (v *Viewer) activeCamera() *render.Camera {
	sc, err := v.reg.Current()
	if err != nil || len(sc.Cameras) == 0 {
		return nil
	}
	return sc.Cameras[v.active%len(sc.Cameras)]
}

// quadSlots places cameras in screen quadrants: 1 top left, 2 top right,
// 3 bottom left and the primary camera bottom right.
var quadSlots = [4]struct {
	camera int
	col    int
	row    int
}{
	{camera: 1, col: 0, row: 0},
	{camera: 2, col: 1, row: 0},
	{camera: 3, col: 0, row: 1},
	{camera: 0, col: 1, row: 1},
}

// Views lays out the viewports for a width x height target.
func (v *Viewer) Views(sc *scene.Scene, width, height int) []system.View {
	rcfg := v.cfg.Render
	if v.layout != config.LayoutQuad || len(sc.Cameras) == 0 {
		cam := sc.Camera
		if len(sc.Cameras) > 0 {
			cam = sc.Cameras[v.active%len(sc.Cameras)]
		}
		return []system.View{{
			Camera:     cam,
			Rect:       image.Rect(0, 0, width, height),
			ClearColor: rcfg.ClearColor(),
			Wireframe:  v.wireframe,
		}}
	}

	halfW, halfH := width/2, height/2
	views := make([]system.View, 0, len(quadSlots))
	for _, slot := range quadSlots {
		border := rcfg.BorderColor()
		if slot.camera == v.active {
			border = rcfg.ActiveBorderColor()
		}
		x, y := slot.col*halfW, slot.row*halfH
		views = append(views, system.View{
			Camera:      sc.Cameras[slot.camera%len(sc.Cameras)],
			Rect:        image.Rect(x, y, x+halfW, y+halfH),
			Border:      rcfg.BorderWidth,
			BorderColor: border,
			ClearColor:  rcfg.ClearColor(),
			// the primary view shows solid geometry while the others show wires
			Wireframe: v.wireframe != (slot.camera == 0),
		})
	}
	return views
}

// SelectAt makes the quadrant under (x, y) the active view.
func (v *Viewer) SelectAt(x, y, width, height int) {
	if v.layout != config.LayoutQuad || width <= 0 || height <= 0 {
		return
	}
	col, row := min(x*2/width, 1), min(y*2/height, 1)
	for _, slot := range quadSlots {
		if slot.col == col && slot.row == row {
			v.active = slot.camera
		}
	}
}

// Draw renders the current scene onto dev.
func (v *Viewer) Draw(dev render.Device, width, height int) (system.FrameStats, error) {
	sc, err := v.reg.Current()
	if err != nil {
		return system.FrameStats{}, err
	}
	return v.renderer.DrawViews(dev, sc, v.Views(sc, width, height), v.elapsed)
}

func (v *Viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
	v.reg.Close()
	v.lib.Close()
}
