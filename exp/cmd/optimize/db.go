package main

import (
	"exp/internal/db"
	"log"
	"path/filepath"
)

// Global database instance
var database *db.DB

// Database configuration
const dbFilename = "optimize_results.db"

var (
	EccNone  = "none"
	EccGolay = "golay"
)

var (
	defaultImageSizes = [][]int{
		{1920, 1080},
		{1280, 720},
		{854, 480},
		{640, 360},
		{426, 240},
		{256, 144},
	}
	defaultTexts     = []string{"AIGC", "AIGC:model-x:2025-01-01T00:00:00Z"}
	defaultChannels  = []string{"luma", "blue"}
	defaultLevels    = []int{1, 2, 3}
	defaultStrengths = []float64{0.02, 0.05, 0.1, 0.2, 0.3}
	// defaultQualities are applied after embedding; 0 keeps the image lossless.
	defaultQualities = []int{0, 95, 85, 75, 60}
)

// openDatabase opens the result database in dir and registers the default
// sweep dimensions.
func openDatabase(dir string, urls []string) {
	dbPath := filepath.Join(dir, dbFilename)
	var err error
	database, err = db.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	log.Printf("Database initialized: %s\n", dbPath)

	for _, url := range urls {
		if _, err := database.InsertImage(url); err != nil {
			log.Printf("Failed to insert image %s: %v", url, err)
		}
	}
	for _, size := range defaultImageSizes {
		if _, err := database.InsertImageSize(size[0], size[1]); err != nil {
			log.Printf("Failed to insert image size %dx%d: %v", size[0], size[1], err)
		}
	}
	for _, text := range defaultTexts {
		for _, ecc := range []string{EccNone, EccGolay} {
			if _, err := database.InsertMark(text, ecc); err != nil {
				log.Printf("Failed to insert mark %q/%s: %v", text, ecc, err)
			}
		}
	}
	for _, ch := range defaultChannels {
		for _, l := range defaultLevels {
			for _, s := range defaultStrengths {
				if _, err := database.InsertMarkParam(ch, l, s); err != nil {
					log.Printf("Failed to insert mark param (%s L%d s=%.2f): %v", ch, l, s, err)
				}
			}
		}
	}
}

// closeDatabase should be called on program exit
func closeDatabase() {
	if database != nil {
		if err := database.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
