package main

import (
	"MoodMate/internal/config"
	"MoodMate/pkg/detector"
	"MoodMate/pkg/log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	logger := log.NewLogger()
	if envErr != nil {
		log.Warn(log.Fields{"error": envErr.Error()}, "No .env file loaded, using process environment")
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	emotionDetector, err := detector.New(logger)
	if err != nil {
		logger.Fatalf("Emotion detector unavailable: %v", err)
	}

	options := []config.ServerOption{
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithDetector(emotionDetector),
		config.WithCatalog(),
		config.WithSessionStore(),
		config.WithExporter(),
		config.WithUtils(),
	}
	if upload, _ := strconv.ParseBool(os.Getenv("REPORT_S3_UPLOAD")); upload {
		options = append(options, config.WithS3Client())
	}

	server, err := config.NewServer(options...)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
