package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/glaciersat/snowline/internal/app"
	"github.com/glaciersat/snowline/internal/log"
	"github.com/glaciersat/snowline/internal/orchestrator"
	"github.com/glaciersat/snowline/internal/types"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	unitsFile := flag.String("units", "units.csv", "Batch definition: CSV with one rgi_id,yyyy-mm-dd record per line")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("snowline %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := types.NewConfig(filename)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Load the batch definition
	units, err := orchestrator.LoadUnits(*unitsFile)
	if err != nil {
		log.Errorf("Failed to load batch definition: %v", err)
		os.Exit(1)
	}
	if len(units) == 0 {
		log.Errorf("Batch definition %s contains no units", *unitsFile)
		os.Exit(1)
	}

	// Create and run the application
	application := app.New(&cfg, units, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
