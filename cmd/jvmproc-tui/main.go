package main

import (
	"flag"
	"log"

	"jvmproc/internal/app"
	"jvmproc/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON or YAML config file")
	flag.Parse()

	controller := app.New(app.Options{ConfigPath: *configPath})
	if err := tui.Run(controller); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
