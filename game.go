package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/render/ebitendevice"
	"go.uber.org/zap"
)

type Game struct {
	log    *zap.Logger
	viewer *Viewer
	input  *keyInput
	device *ebitendevice.Device
	debug  bool

	width, height int
	stats         system.FrameStats
	err           error
}

func NewGame(log *zap.Logger, viewer *Viewer, input *keyInput, width, height int, debug bool) *Game {
	return &Game{
		log:    log,
		viewer: viewer,
		input:  input,
		device: ebitendevice.New(width, height),
		debug:  debug,
		width:  width,
		height: height,
	}
}

func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.viewer.SelectAt(x, y, g.width, g.height)
	}
	return g.viewer.Step(g.input, 1/float64(ebiten.TPS()))
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.device.BeginFrame()
	stats, err := g.viewer.Draw(g.device, g.width, g.height)
	if err != nil {
		// reported by the next Update
		g.err = err
		return
	}
	g.stats = stats
	g.device.Present(screen)

	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"%s  FPS: %.1f  draws: %d  binds: %d  applies: %d  meshes: %d",
			g.viewer.reg.CurrentName(), ebiten.ActualFPS(),
			g.stats.DrawCalls, g.stats.ShaderBinds, g.stats.MaterialApplies, g.device.Meshes()))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.device.Resize(g.width, g.height)
		g.log.Debug("resized", zap.Int("width", g.width), zap.Int("height", g.height))
	}
	return g.width, g.height
}
