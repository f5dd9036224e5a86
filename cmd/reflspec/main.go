package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/z-vig/reflspeckit/pkg/config"
	"github.com/z-vig/reflspeckit/pkg/filtering"
	"github.com/z-vig/reflspeckit/pkg/pipeline"
	"github.com/z-vig/reflspeckit/pkg/spectral"
	"github.com/z-vig/reflspeckit/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "CSV file with wavelength,reflectance rows")
	unitName := flag.String("unit", "nm", "Wavelength unit of the input data (nm, um, m)")
	configPath := flag.String("config", "reflspec.yaml", "Path to YAML configuration file")
	lowWvl := flag.Float64("low", 789, "Lower bound of the absorption feature to fit")
	highWvl := flag.Float64("high", 1309, "Upper bound of the absorption feature to fit")
	plotPath := flag.String("plot", "", "Optional path to save a spectrum/continuum plot")
	flag.Parse()

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	unit, err := spectral.ParseUnit(*unitName)
	if err != nil {
		log.Fatalf("Invalid unit: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	wvlValues, reflectance, err := readSpectrumCSV(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read spectrum: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("REFLECTANCE SPECTRUM PROCESSING")
	fmt.Println("================================")
	fmt.Printf("Loaded %d samples from %s (%s)\n", len(reflectance), *inputFile, unit)

	wvl := spectral.NewWavelength(wvlValues, unit)
	spec, err := pipeline.NewSpectrum(reflectance, wvl)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	spec.SetVerbose(cfg.Output.Verbose)
	spec.SetFitOrder(cfg.Pipeline.FitOrder)

	// Run the processing stages
	if err := spec.RemoveOutliers(cfg.Pipeline.SigmaThreshold); err != nil {
		log.Fatalf("Outlier removal failed: %v", err)
	}
	if err := spec.ReduceNoise(filtering.BoxFilter{Width: cfg.Pipeline.FilterWidth}); err != nil {
		log.Fatalf("Noise reduction failed: %v", err)
	}
	if err := spec.RemoveContinuum(cfg.ContinuumStrategy()); err != nil {
		log.Fatalf("Continuum removal failed: %v", err)
	}

	// Characterize the requested absorption feature
	feature, err := spec.FitAbsorption(*lowWvl, *highWvl, unit)
	if err != nil {
		log.Fatalf("Absorption fit failed: %v", err)
	}

	centers, depths := feature.BandCenter()
	ibd := feature.IntegratedBandDepth()

	fmt.Printf("\nAbsorption feature %g-%g %s:\n", *lowWvl, *highWvl, unit)
	fmt.Printf("  Band center:           %.2f %s\n", centers.At(0, 0), unit)
	fmt.Printf("  Band depth:            %.4f\n", depths.At(0, 0))
	fmt.Printf("  Integrated band depth: %.4f\n", ibd.At(0, 0))
	fmt.Printf("  Fit r-squared:         %.4f\n", feature.Fit.RSquared().At(0, 0))

	if *plotPath != "" {
		raw, _ := spec.ValuesAt(pipeline.StageRaw)
		filtered, _ := spec.ValuesAt(pipeline.StageFiltered)
		series := []visualization.Series{
			{Name: "raw", Values: raw},
			{Name: "filtered", Values: filtered},
			{Name: "continuum", Values: spec.Continuum()},
		}
		if err := visualization.SpectrumPlot(wvl, series, "Reflectance spectrum", *plotPath); err != nil {
			log.Fatalf("Failed to save plot: %v", err)
		}
		fmt.Printf("\nPlot saved to: %s\n", *plotPath)
	}
}

// readSpectrumCSV reads wavelength,reflectance rows, skipping a header row
// if the first field does not parse as a number.
func readSpectrumCSV(path string) (wvl, reflectance []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d has %d fields, want 2", i+1, len(row))
		}
		w, werr := strconv.ParseFloat(row[0], 64)
		r, rerr := strconv.ParseFloat(row[1], 64)
		if werr != nil || rerr != nil {
			if i == 0 {
				continue // header
			}
			return nil, nil, fmt.Errorf("row %d is not numeric", i+1)
		}
		wvl = append(wvl, w)
		reflectance = append(reflectance, r)
	}
	if len(wvl) == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return wvl, reflectance, nil
}
