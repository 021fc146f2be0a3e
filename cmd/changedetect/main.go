package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"log"
	"os"
	"time"

	"changedetect/internal/models"
	"changedetect/pkg/config"
	"changedetect/pkg/detect"
)

func main() {
	// Parse command line arguments
	preFile := flag.String("pre", "", "Earlier raster of the scene (PNG or JPEG)")
	postFile := flag.String("post", "", "Later raster of the scene (PNG or JPEG)")
	outputFile := flag.String("output", "mask.png", "Output mask filename (PNG)")
	configFile := flag.String("config", "changedetect.yaml", "Configuration file path")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configFile); err != nil {
			log.Fatalf("Failed to write config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configFile)
		return
	}

	// Validate inputs
	if *preFile == "" || *postFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pre, err := loadImage(*preFile)
	if err != nil {
		log.Fatalf("Failed to load pre image: %v", err)
	}
	post, err := loadImage(*postFile)
	if err != nil {
		log.Fatalf("Failed to load post image: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Println("Starting change detection...")
	}

	// Run the detection pipeline
	detector := detect.NewDetector(cfg.DetectionParams())
	startTime := time.Now()
	mask, err := detector.Detect(pre, post)
	if err != nil {
		log.Fatalf("Change detection failed: %v", err)
	}

	report := buildReport(*preFile, *postFile, mask, time.Since(startTime))

	// Save the mask
	if err := saveImage(*outputFile, mask); err != nil {
		log.Fatalf("Failed to save mask: %v", err)
	}

	fmt.Printf("Change detection completed in %.2f seconds\n", report.Elapsed.Seconds())
	fmt.Printf("Mask saved to: %s\n", *outputFile)
	if cfg.Output.Verbose {
		fmt.Printf("Mask size: %dx%d\n", report.Width, report.Height)
		fmt.Printf("Changed pixels: %d (%.2f%% of the scene)\n",
			report.ChangedPixels, report.ChangedFraction()*100)
	}
}

// buildReport collects the run summary from the produced mask.
func buildReport(preFile, postFile string, mask *image.Gray, elapsed time.Duration) *models.Report {
	bounds := mask.Bounds()
	report := &models.Report{
		PreFile:  preFile,
		PostFile: postFile,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Elapsed:  elapsed,
	}
	for _, v := range mask.Pix {
		if v != 0 {
			report.ChangedPixels++
		}
	}
	return report
}

// loadImage decodes a raster from a file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v", path, err)
	}

	return img, nil
}

// saveImage writes the mask as a PNG file
func saveImage(path string, mask *image.Gray) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, mask)
}
