package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examshield/proctor-agent/internal/api"
	"github.com/examshield/proctor-agent/internal/capture"
	"github.com/examshield/proctor-agent/internal/config"
	"github.com/examshield/proctor-agent/internal/detector"
	"github.com/examshield/proctor-agent/internal/detector/mock"
	"github.com/examshield/proctor-agent/internal/detector/rekognition"
	"github.com/examshield/proctor-agent/internal/domain"
	"github.com/examshield/proctor-agent/internal/session"
	"github.com/examshield/proctor-agent/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting proctor agent",
		slog.String("environment", cfg.Environment),
		slog.String("session_id", cfg.SessionID),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Detector initializes in the background; the session runs regardless
	// and simply produces no violations until it is ready.
	detHandle := detector.Init(ctx, detectorFactory(cfg), logger)

	// The capture handle is owned by the acquisition layer; the agent only
	// reads track status from it and never releases it.
	handle := acquireHandle(cfg)

	sess := session.New(session.Params{
		SessionID: cfg.SessionID,
		UserID:    cfg.UserID,
		Requirement: domain.DeviceRequirement{
			Camera:     cfg.RequireCamera,
			Microphone: cfg.RequireMicrophone,
		},
		Handle:        handle,
		Endpoint:      cfg.MonitorURL,
		ReportURL:     cfg.ReportURL,
		QueueCapacity: cfg.QueueCapacity,
		PollInterval:  cfg.DevicePollInterval,
		CoolingWindow: cfg.CoolingWindow,
		TransportOpts: transport.Options{
			InitialReconnectDelay: cfg.ReconnectInitialDelay,
			MaxReconnectDelay:     cfg.ReconnectMaxDelay,
			Multiplier:            cfg.ReconnectMultiplier,
			FlushInterval:         cfg.FlushInterval,
		},
		Detector: detHandle,
		Logger:   logger,
	})

	if err := sess.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	// Local read API for the UI
	router := api.NewRouter(logger, sess)
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("local api listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		sess.Stop()
		return fmt.Errorf("local api error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("stopping session...")
	sess.Stop()

	if err := router.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("agent stopped")

	return nil
}

func detectorFactory(cfg *config.Config) detector.Factory {
	switch cfg.DetectorProvider {
	case "rekognition":
		return func(ctx context.Context) (detector.Detector, error) {
			rcfg := rekognition.DefaultConfig()
			rcfg.Region = cfg.AWSRegion
			return rekognition.NewProvider(ctx, rcfg)
		}
	default:
		return func(ctx context.Context) (detector.Detector, error) {
			return mock.New(), nil
		}
	}
}

// acquireHandle stands in for the external acquisition layer: it reports the
// required devices as live and enabled, and the acquisition layer mutates the
// track list as device state changes.
func acquireHandle(cfg *config.Config) *capture.StaticHandle {
	var tracks []capture.Track
	if cfg.RequireCamera {
		tracks = append(tracks, capture.Track{Kind: domain.DeviceCamera, Live: true, Enabled: true})
	}
	if cfg.RequireMicrophone {
		tracks = append(tracks, capture.Track{Kind: domain.DeviceMicrophone, Live: true, Enabled: true})
	}
	return capture.NewStaticHandle(tracks...)
}
