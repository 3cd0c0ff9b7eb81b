package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func startHTTPServer(serverDir, addr string) {
	if _, err := os.Stat(serverDir); os.IsNotExist(err) {
		log.Printf("Directory %s does not exist. Creating it...\n", serverDir)
		if err := os.MkdirAll(serverDir, 0755); err != nil {
			log.Fatalf("Failed to create directory: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           http.FileServer(http.Dir(serverDir)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	fmt.Printf("HTTP server started on http://%s\n", addr)
	fmt.Printf("Serving files from: %s\n", serverDir)
	fmt.Println("Press Ctrl+C to stop the server...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	fmt.Println("\n\nShutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	fmt.Println("Server stopped.")
}
