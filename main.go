package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"PierToThePast/internal/server"
	"PierToThePast/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	configPath := flag.String("config", "configs/kiosk.yaml", "path to kiosk settings YAML")
	contentDir := flag.String("content", "", "serve levels/scripts from this directory instead of the embedded set")
	title := flag.String("title", "", "override the kiosk title")
	allowReplay := flag.Bool("allow-replay", false, "override whether completed vignettes can be replayed")
	authoring := flag.Bool("authoring", false, "override authoring mode (hot-reload scripts from -content)")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath
	cfg.ContentDir = *contentDir

	var overrides server.KioskParamOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			overrides.Title = title
		case "allow-replay":
			overrides.AllowReplay = allowReplay
		case "authoring":
			overrides.Authoring = authoring
		}
	})
	cfg.Overrides = overrides

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(context.Background())
		if err != nil {
			log.Printf("telemetry setup: %v (continuing without traces)", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	server.StartApp(*addr, cfg)
}
