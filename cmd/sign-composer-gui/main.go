// Command sign-composer-gui is the desktop editor for placing signatures on
// documents.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"

	signcomposer "github.com/menta2k/sign-composer"
	"github.com/menta2k/sign-composer/internal/config"
	"github.com/menta2k/sign-composer/internal/logging"
	"github.com/menta2k/sign-composer/internal/utils"
	"github.com/menta2k/sign-composer/pkg/processing"
	"github.com/menta2k/sign-composer/ui/mainwindow"
)

const appID = "com.github.menta2k.sign-composer"

func main() {
	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "config file (JSON or YAML); defaults to "+config.GetConfigPath()+" if present")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	if cfgPath == "" && utils.FileExists(config.GetConfigPath()) {
		cfgPath = config.GetConfigPath()
	}
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewLogger(level, "text")
	slog.SetDefault(logger)

	ed, err := signcomposer.NewFromConfig(cfg, true, signcomposer.WithLogger(logger))
	if ed == nil {
		logger.Error("sign-composer-gui failed", "error", err)
		os.Exit(1)
	}
	defer ed.Close()
	if err != nil {
		logger.Warn("analysis unavailable", "backend", cfg.Analysis.Backend, "error", err)
	}

	a := app.NewWithID(appID)
	win := mainwindow.New(a, ed, cfg, logger)
	win.SetMaster()

	if path := flag.Arg(0); path != "" {
		if err := ed.LoadBaseDocument(path, 0, processing.DefaultPDFDPI); err != nil {
			logger.Error("failed to load document", "path", path, "error", err)
		}
	}

	win.ShowAndRun()
}
