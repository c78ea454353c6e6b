// Command webbuild bundles the kiosk's browser client from web/src/main.ts
// into web/client.js, which http.go embeds. Run from internal/server via
// go:generate.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

func main() {
	root, err := os.Getwd()
	if err != nil {
		log.Fatalf("webbuild: %v", err)
	}
	entry := filepath.Join(root, "web", "src", "main.ts")
	if _, err := os.Stat(entry); err != nil {
		log.Fatalf("webbuild: client entry point: %v", err)
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{entry},
		Outfile:       filepath.Join(root, "web", "client.js"),
		AbsWorkingDir: root,
		Bundle:        true,
		Format:        api.FormatIIFE,
		Target:        api.ES2018,
		Platform:      api.PlatformBrowser,
		LogLevel:      api.LogLevelInfo,
		Sourcemap:     api.SourceMapInline,
		Write:         true,
		Loader:        map[string]api.Loader{".ts": api.LoaderTS},
	})
	for _, msg := range result.Errors {
		log.Printf("webbuild: %s", msg.Text)
	}
	if len(result.Errors) > 0 {
		log.Fatal("webbuild: kiosk client bundle failed")
	}
}
