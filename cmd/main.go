package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/chenBenjamin97/hoopevents/pkg/api"
	"github.com/chenBenjamin97/hoopevents/pkg/config"
	"github.com/chenBenjamin97/hoopevents/pkg/pipeline"
	"github.com/chenBenjamin97/hoopevents/pkg/stub"
	"github.com/chenBenjamin97/hoopevents/pkg/tracking"
	"github.com/chenBenjamin97/hoopevents/pkg/utils"
	"github.com/cyclopcam/logs"
	"github.com/spf13/viper"
)

func main() {
	parser := argparse.NewParser("hoopevents", "Basketball event detection from tracking data")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Configuration file (default: ./config.yaml if present)", Default: ""})
	inputFile := parser.String("i", "input", &argparse.Options{Help: "Tracking data JSON file. Runs a single analysis instead of serving", Default: ""})
	outputFile := parser.String("o", "output", &argparse.Options{Help: "Where to write the events JSON (default: stdout)", Default: ""})
	maxFrames := parser.Int("", "max-frames", &argparse.Options{Help: "Analyze only the first N frames (0 = all)", Default: 0})
	useStubs := parser.Flag("", "stubs", &argparse.Options{Help: "Reuse cached intermediate results from directory.stubs", Default: false})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if found, err := config.Load(*configFile); err != nil {
		logger.Errorf("Error: %v", err)
		os.Exit(1)
	} else if !found {
		logger.Warnf("No config file found, using defaults")
	}

	if err := config.Detection().Validate(); err != nil {
		logger.Errorf("Error: %v", err)
		os.Exit(1)
	}

	//create missing directories from config file
	for _, dir := range viper.GetStringMapString("directory") {
		if err := utils.EnsureDir(dir); err != nil {
			logger.Errorf("Error Creating '%s' directory, got '%v'", dir, err)
		}
	}

	if *inputFile != "" {
		if err := analyzeFile(logger, *inputFile, *outputFile, *maxFrames, *useStubs); err != nil {
			logger.Errorf("Error: %v", err)
			os.Exit(1)
		}
		return
	}

	r := api.SetRouter(logger)
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		logger.Errorf("Error: Got '%v'", err)
		os.Exit(1)
	}
}

//analyzeFile runs a single batch analysis over a tracking data file and writes the aggregate events record
func analyzeFile(logger logs.Log, inputPath, outputPath string, maxFrames int, useStubs bool) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("analyzeFile: Could not open '%s', got '%w'", inputPath, err)
	}
	defer f.Close()

	in, err := tracking.ReadInput(f)
	if err != nil {
		return err
	}

	cfg := config.Detection()
	if maxFrames > 0 {
		cfg.MaxFrames = maxFrames
	}
	cfg.ReadFromStub = cfg.ReadFromStub || useStubs

	res, err := pipeline.NewRun(logger, cfg, stub.NewStore(logger, viper.GetString("directory.stubs"))).Analyze(in)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		if out, err = os.Create(outputPath); err != nil {
			return fmt.Errorf("analyzeFile: Could not create '%s', got '%w'", outputPath, err)
		}
		defer out.Close()
	}

	return res.Events.ExportJSON(out)
}
