package server

import (
	"io/fs"
	"log"
	"os"

	"go.opentelemetry.io/otel/trace"

	"PierToThePast/content"
	"PierToThePast/internal/dialogue"
	"PierToThePast/internal/game"
	"PierToThePast/internal/telemetry"
)

type AppConfig struct {
	// ConfigPath points at the optional kiosk.yaml settings file.
	ConfigPath string
	// ContentDir overrides the embedded levels/scripts with a directory on
	// disk (levels/ and scripts/ subdirectories).
	ContentDir string
	Overrides  KioskParamOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath: "configs/kiosk.yaml",
	}
}

// Kiosk is the shared, immutable-after-boot wiring every visitor session
// draws from.
type Kiosk struct {
	Params  KioskParams
	Levels  *game.LevelLibrary
	Scripts *dialogue.Library
	Tracer  trace.Tracer
}

func resolveKioskParams(cfg AppConfig) KioskParams {
	params := DefaultKioskParams()
	loaded, err := loadKioskParamsFromFile(cfg.ConfigPath, params)
	if err != nil {
		log.Printf("kiosk config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	return cfg.Overrides.apply(params)
}

// StartApp loads all content, validates it, and serves the kiosk. Any
// malformed level or script is fatal here so nothing broken reaches a
// visitor.
func StartApp(addr string, cfg AppConfig) {
	params := resolveKioskParams(cfg)

	var fsys fs.FS = content.FS()
	if cfg.ContentDir != "" {
		fsys = os.DirFS(cfg.ContentDir)
		log.Printf("using content dir %s", cfg.ContentDir)
	}

	levels, err := game.LoadLevels(fsys, "levels")
	if err != nil {
		log.Fatalf("failed to load levels: %v", err)
	}
	scripts, err := dialogue.LoadScripts(fsys, "scripts")
	if err != nil {
		log.Fatalf("failed to load dialogue scripts: %v", err)
	}
	for _, id := range levels.IDs() {
		lvl, _ := levels.Get(id)
		for _, zone := range lvl.Zones {
			if !scripts.Has(dialogue.GraphID(zone.GraphID)) {
				log.Fatalf("level %s zone %s binds missing dialogue graph %s",
					lvl.ID, zone.ID, zone.GraphID)
			}
		}
	}
	log.Printf("loaded %d levels, %d dialogue graphs", len(levels.IDs()), len(scripts.IDs()))

	if params.Authoring && cfg.ContentDir != "" {
		startScriptWatcher(scripts, cfg.ContentDir)
	}

	tracer := telemetry.NoopTracer()
	if telemetry.Enabled() {
		tracer = telemetry.Tracer("server")
	}

	kiosk := &Kiosk{
		Params:  params,
		Levels:  levels,
		Scripts: scripts,
		Tracer:  tracer,
	}

	log.Printf("starting kiosk %q on %s (replay=%v authoring=%v)",
		params.Title, addr, params.AllowReplay, params.Authoring)
	startServer(kiosk, addr)
}

// startScriptWatcher hot-reloads dialogue scripts while authors edit them.
// A reload that fails validation keeps the previously loaded graphs.
func startScriptWatcher(scripts *dialogue.Library, contentDir string) {
	dir := contentDir + "/scripts"
	watcher, err := dialogue.NewWatcher(dir)
	if err != nil {
		log.Printf("script watcher: %v (hot reload disabled)", err)
		return
	}
	go func() {
		for {
			select {
			case name, ok := <-watcher.Events:
				if !ok {
					return
				}
				if err := dialogue.Reload(scripts, dir); err != nil {
					log.Printf("script reload after %s: %v", name, err)
				} else {
					log.Printf("scripts reloaded after %s", name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("script watcher: %v", err)
			}
		}
	}()
}
