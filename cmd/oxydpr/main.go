// Command oxydpr renders a lit, textured cube at a resolution chosen from the window size, the
// device pixel ratio and a megapixel budget, and shows the resulting sizes live.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-dpr/common"
	"github.com/Carmen-Shannon/oxy-dpr/engine"
	"github.com/Carmen-Shannon/oxy-dpr/engine/camera"
	"github.com/Carmen-Shannon/oxy-dpr/engine/hud"
	"github.com/Carmen-Shannon/oxy-dpr/engine/light"
	"github.com/Carmen-Shannon/oxy-dpr/engine/loader"
	"github.com/Carmen-Shannon/oxy-dpr/engine/model"
	"github.com/Carmen-Shannon/oxy-dpr/engine/readout"
	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
	"github.com/Carmen-Shannon/oxy-dpr/engine/scene"
	"github.com/Carmen-Shannon/oxy-dpr/engine/window"
	"github.com/Carmen-Shannon/oxy-dpr/internal/config"
	"github.com/Carmen-Shannon/oxy-dpr/internal/controls"
)

func main() {
	flags := config.NewFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.Path())
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}
	if cfg, err = flags.Apply(cfg); err != nil {
		log.Fatalf("[Config] %v", err)
	}

	if err := run(cfg, flags); err != nil {
		log.Fatal(err)
	}
}

// run builds the window, renderer, scene, resolution controller and displays, then blocks in
// the engine loop until the window closes.
//
// Parameters:
//   - cfg: the merged file and flag configuration
//   - flags: the parsed flags; their -config file is watched and their overrides survive reloads
//
// Returns:
//   - error: error if any part fails to start
func run(cfg config.Config, flags *config.Flags) error {
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMinWidth(cfg.Window.MinWidth),
		window.WithMinHeight(cfg.Window.MinHeight),
	)
	defer win.Close()

	msaa := renderer.MSAAOff
	if cfg.Window.MSAA {
		msaa = renderer.MSAA4x
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode(cfg)),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(cfg.Window.Software),
	)
	defer r.Release()

	textures, err := loader.NewLoader().LoadAll(
		loader.Source{Name: "uv-map", Path: cfg.Textures.UVMap, Generate: loader.UVMap(1024)},
		loader.Source{Name: "grid", Path: cfg.Textures.Grid, Generate: loader.Grid(512, 8)},
	)
	if err != nil {
		log.Printf("[Loader] %v", err)
	}

	cam := camera.NewCamera(
		camera.WithFov(75*math.Pi/180),
		camera.WithPosition(0, 0, 3),
		camera.WithTarget(0, 0, 0),
	)

	cube := model.NewModel(
		model.WithName("Cube"),
		model.WithGeometry(model.NewBox(1.5, 1.5, 1.5)),
		model.WithMaterial(material.NewMaterial(append(textureOption(textures[0]),
			material.WithName("Cube"),
			material.WithRoughness(1),
			material.WithMetalness(0.2),
		)...)),
	)
	backdrop := model.NewModel(
		model.WithName("Backdrop"),
		model.WithGeometry(model.NewPlane(45, 15)),
		model.WithPosition(0, 0, -2),
		model.WithMaterial(material.NewMaterial(append(textureOption(textures[1]),
			material.WithName("Backdrop"),
			material.WithUVRepeat(6, 2),
		)...)),
	)
	spot := light.NewSpotLight(
		light.WithPosition(0.1, 0.1, 8),
		light.WithTarget(0, 0, 0),
		light.WithIntensity(5),
		light.WithDistance(30),
		light.WithAngle(0.2*math.Pi),
		light.WithPenumbra(0.8),
		light.WithDecay(0.3),
		light.WithAmbient(0.1),
	)

	sc := scene.NewScene("Main", cam, r,
		scene.WithActive(true),
		scene.WithModels(backdrop),
		scene.WithSpinning(cube),
		scene.WithAutorotate(cfg.Scene.Autorotate),
		scene.WithLight(spot),
	)
	defer sc.Release()
	if err := sc.Init(); err != nil {
		return fmt.Errorf("failed to initialise scene: %w", err)
	}

	controller := resolution.NewController(win, r, cam,
		resolution.WithBudget(cfg.Budget()),
		resolution.WithTrackDPR(cfg.Resolution.TrackDPR),
	)

	overlayOpts := []hud.OverlayOption{hud.WithScale(win.DevicePixelRatio())}
	if !cfg.Display.HUD {
		overlayOpts = append(overlayOpts, hud.WithHidden())
	}
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithScene(0, sc),
		engine.WithProfiling(cfg.Profiling),
		engine.WithRenderFrameLimit(cfg.Window.FrameLimit),
		engine.WithResizeListener(func(_, _ int) {
			controller.Recompute()
		}),
	)
	overlay := hud.NewOverlay(r, append(overlayOpts, hud.WithFPS(eng.Profiler()))...)

	displays := []readout.Display{overlay}
	if cfg.Display.Console {
		displays = append(displays, hud.NewConsole())
	}
	if cfg.Display.Title {
		displays = append(displays, hud.NewTitle(win, cfg.Window.Title))
	}
	sink := readout.NewSink(
		readout.WithBar(progressbar.New(progressbar.WithMax(cfg.Display.BarMaxMP))),
		readout.WithDisplays(displays...),
		readout.WithOutputSizer(r),
		readout.WithPolicySource(controller),
	)
	controller.OnChange(sink.Refresh)

	dpr := resolution.NewDPRWatcher(win, func() {
		controller.Recompute()
		if err := overlay.SetScale(win.DevicePixelRatio()); err != nil {
			log.Printf("[HUD] %v", err)
		}
	})
	if err := dpr.Rearm(); err != nil {
		log.Printf("[DPR] %v", err)
	}
	defer dpr.Dispose()

	if path := flags.Path(); path != "" {
		w, err := config.NewWatcher(path, 0, win.Post, func(next config.Config) {
			controller.SetPolicy(next.Policy())
			sc.SetAutorotate(next.Scene.Autorotate)
			r.SetPresentMode(presentMode(next))
			eng.SetRenderFrameLimit(next.Window.FrameLimit)
			if next.Profiling {
				eng.EnableProfiler()
			} else {
				eng.DisableProfiler()
			}
			if err := overlay.SetVisible(next.Display.HUD); err != nil {
				log.Printf("[HUD] %v", err)
			}
		}, config.WithOverrides(flags))
		if err != nil {
			log.Printf("[Config] hot reload disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	keys := controls.New(controller,
		controls.WithRotator(sc),
		controls.WithHUD(overlay),
		controls.WithCloser(win),
	)
	win.SetKeyDownCallback(func(keyCode uint32) {
		keys.HandleKey(keyCode)
	})
	win.SetUpdateCallback(func() {
		if err := overlay.Tick(); err != nil {
			log.Printf("[HUD] %v", err)
		}
	})
	eng.SetTickCallback(func(_ float32) {
		sc.Update()
	})

	controller.Recompute()

	for _, line := range keys.Help() {
		log.Printf("[Controls] %s", line)
	}
	eng.Run()
	eng.Quit()
	return nil
}

func presentMode(cfg config.Config) renderer.PresentMode {
	if cfg.Uncapped() {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}

// textureOption returns the material option for tex, or none when the texture failed to load.
func textureOption(tex *common.TextureStagingData) []material.MaterialBuilderOption {
	if tex == nil {
		return nil
	}
	return []material.MaterialBuilderOption{material.WithTexture(tex)}
}
