package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskmanager/internal/config"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	err = run(app, cfg.Server.Port, quit)
	app.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Println("Server gracefully stopped")
}

// run serves HTTP on addr until a signal arrives on quit or the listener
// fails. It does not release the app's resources.
func run(app *App, addr string, quit <-chan os.Signal) error {
	log.Printf("Starting server on port %s", addr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Fiber.Listen(addr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
		log.Println("Shutting down server...")
		if err := app.Fiber.Shutdown(); err != nil {
			return fmt.Errorf("error during Fiber shutdown: %w", err)
		}
		return nil
	}
}
