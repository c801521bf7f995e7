package main

import (
	"os"
	"os/signal"
	"syscall"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

// The allocation core exposes function-level contracts only; the transport
// layer that serializes them lives in a separate deployment. This binary
// boots the wired container so that layer has something to mount on.
func main() {
	c, err := container.NewContainer()
	if err != nil {
		logger.Error("failed to initialize container", err)
		os.Exit(1)
	}
	defer c.Cleanup()

	logger.Info("library core ready", map[string]interface{}{
		"app":     c.Config.App.Name,
		"version": c.Config.App.Version,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", map[string]interface{}{
		"signal": sig.String(),
	})
}
