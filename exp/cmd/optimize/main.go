package main

import (
	"bufio"
	"exp/internal/images"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

var (
	// TmpOptimizeDir is the base directory for visualizations
	TmpOptimizeDir = "/tmp/aigc-optimize"
	// TmpOptimizeDBDir is the directory holding the result database
	TmpOptimizeDBDir = "/tmp/aigc-optimize-db"
)

func main() {
	urlFile := flag.String("urls", "image_urls.txt", "file listing one image URL per line")
	dbDir := flag.String("db", TmpOptimizeDBDir, "directory of the result database")
	addr := flag.String("addr", "localhost:8080", "listen address of the visualization server")
	flag.Parse()

	urls, err := images.ParseURLs(*urlFile)
	if err != nil {
		log.Printf("No image URLs loaded: %v", err)
	}
	openDatabase(*dbDir, urls)
	defer closeDatabase()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\n=== Watermark Optimization Tool ===")
		fmt.Println("1. Run strength/level sweep (save to database)")
		fmt.Println("2. Visualize results from database")
		fmt.Println("3. Start HTTP server to view visualizations")
		fmt.Println("4. Exit")
		fmt.Print("\nSelect an option (1-4): ")

		input, _ := reader.ReadString('\n')
		switch strings.TrimSpace(input) {
		case "1":
			fmt.Println("\n--- Running Sweep ---")
			if len(urls) == 0 {
				fmt.Printf("Error: no image URLs in %s\n", *urlFile)
				continue
			}
			numImages := promptInt(reader, "Number of images to test (default: 10): ", 10)
			offset := promptInt(reader, "Offset to start from (default: 0): ", 0)

			fmt.Printf("\nStarting with: numImages=%d, offset=%d\n\n", numImages, offset)
			runMain(urls, numImages, offset)
		case "2":
			fmt.Println("\n--- Visualizing Results ---")
			fmt.Printf("Output directory for visualizations (default: %s): ", TmpOptimizeDir)
			outputDir, _ := reader.ReadString('\n')
			outputDir = strings.TrimSpace(outputDir)
			if outputDir == "" {
				outputDir = TmpOptimizeDir
			}
			visualizeMain(outputDir)
		case "3":
			fmt.Println("\n--- Starting HTTP Server ---")
			fmt.Printf("Directory to serve (default: %s): ", TmpOptimizeDir)
			serverDir, _ := reader.ReadString('\n')
			serverDir = strings.TrimSpace(serverDir)
			if serverDir == "" {
				serverDir = TmpOptimizeDir
			}
			startHTTPServer(serverDir, *addr)
		case "4":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid option. Please select 1-4.")
		}
	}
}

func promptInt(reader *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	s, _ := reader.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
