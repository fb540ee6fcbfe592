package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/superfeelapi/goRaphael/business/analysis"
	"github.com/superfeelapi/goRaphael/business/listen"
	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/business/worker"
	"github.com/superfeelapi/goRaphael/foundation/config"
	"github.com/superfeelapi/goRaphael/foundation/display"
	"github.com/superfeelapi/goRaphael/foundation/external/brain"
	"github.com/superfeelapi/goRaphael/foundation/external/google"
	"github.com/superfeelapi/goRaphael/foundation/external/microphone"
	"github.com/superfeelapi/goRaphael/foundation/external/speaker"
	"github.com/superfeelapi/goRaphael/foundation/external/visualizer"
	"github.com/superfeelapi/goRaphael/foundation/logger"
	"github.com/superfeelapi/goRaphael/foundation/redis"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	version   = "develop"
	buildTime string
)

const service = "raphael"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run() error {
	// =================================================================================================================
	// Environment

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	// =================================================================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Display struct {
			Mode string `conf:"default:tui,help:tui or log"`
		}
		Conversation struct {
			ListenDuration   time.Duration `conf:"default:5s"`
			AnalysisDeadline time.Duration `conf:"default:5s"`
			ObserverInterval time.Duration `conf:"default:100ms"`
			PolicyFile       string
		}
		Audio struct {
			InputSampleRate  int `conf:"default:16000"`
			OutputSampleRate int `conf:"default:44100"`
		}
		Google struct {
			CredentialsFile string `conf:"noprint"`
			ProfileFile     string
			Profile         string `conf:"default:default"`
		}
		OpenAI struct {
			APIKey      string        `conf:"mask"`
			BaseURL     string
			Model       string        `conf:"default:gpt-4o-mini"`
			Temperature float32       `conf:"default:0.3"`
			MaxTokens   int           `conf:"default:512"`
			Timeout     time.Duration `conf:"default:15s"`
		}
		Redis struct {
			Address        string
			Password       string `conf:"mask"`
			JournalChannel string `conf:"default:raphael:journal"`
		}
		Visualizer struct {
			Scheme string `conf:"default:ws"`
			Host   string
			Path   string `conf:"default:/activity"`
			ApiKey string `conf:"mask"`
		}
		Web struct {
			DebugHost string `conf:"default:0.0.0.0:4000"`
		}
		Logger struct {
			LogDirectory string `conf:"default:./logs,noprint"`
			Level        string `conf:"default:info"`
		}
	}{
		Version: conf.Version{
			Build: version,
			Desc:  buildTime,
		},
	}

	help, err := conf.Parse("RAPHAEL", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =================================================================================================================
	// Application Logger

	log, err := logger.New(cfg.Logger.LogDirectory, service, cfg.Logger.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	// =================================================================================================================
	// Configuration Stringify

	out, err := conf.String(&cfg)
	if err != nil {
		log.Errorw("startup", "ERROR", err)
	}
	log.Infow("startup", "version", version, "config", out)

	// =================================================================================================================
	// Policy And Voice Profile

	table, err := policy.Load(cfg.Conversation.PolicyFile)
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}

	profile, err := config.GetProfile(cfg.Google.ProfileFile, cfg.Google.Profile)
	if err != nil {
		return fmt.Errorf("loading voice profile: %w", err)
	}
	log.Infow("startup", "profile", profile.Name, "language", profile.LanguageCode, "voice", profile.VoiceName)

	// =================================================================================================================
	// Closers

	var closers []func() error
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			log.Errorw("shutdown", "ERROR", errs)
		}
	}()

	// =================================================================================================================
	// Speech2Text

	ctx := context.Background()

	recognizer, err := google.NewRecognizer(ctx, cfg.Google.CredentialsFile, profile.LanguageCode, cfg.Audio.InputSampleRate, config.GetSpeechContext(profile))
	if err != nil {
		return err
	}
	closers = append(closers, recognizer.Close)

	mic, err := microphone.New(cfg.Audio.InputSampleRate)
	if err != nil {
		return err
	}
	closers = append(closers, mic.Close)

	// =================================================================================================================
	// Text2Speech

	tts, err := google.NewTextToSpeech(ctx, cfg.Google.CredentialsFile, profile.LanguageCode, profile.VoiceName, profile.SpeakingRate)
	if err != nil {
		return err
	}
	closers = append(closers, tts.Close)

	spk := speaker.New(tts, cfg.Audio.OutputSampleRate)
	closers = append(closers, spk.Close)

	// =================================================================================================================
	// Brain

	brn, err := brain.New(brain.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		Temperature:    cfg.OpenAI.Temperature,
		MaxTokens:      cfg.OpenAI.MaxTokens,
		RequestTimeout: cfg.OpenAI.Timeout,
	})
	if err != nil {
		return err
	}

	// =================================================================================================================
	// Redis

	var journal worker.Journal
	if cfg.Redis.Address != "" {
		redisClient, err := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.JournalChannel, log)
		if err != nil {
			log.Errorw("startup", "ERROR", err)
		} else {
			journal = redisClient
			closers = append(closers, redisClient.Close)
		}
	}

	// =================================================================================================================
	// Display

	var face worker.FaceRenderer
	var visualizers []worker.Visualizer
	var tui *display.TUI

	switch cfg.Display.Mode {
	case "tui":
		tui = display.New()
		face = tui
		visualizers = append(visualizers, tui)

	case "log":
		l := display.NewLog(log)
		face = l
		visualizers = append(visualizers, l)

	default:
		return fmt.Errorf("unknown display mode %q", cfg.Display.Mode)
	}

	if cfg.Visualizer.Host != "" {
		v := visualizer.New(cfg.Visualizer.Scheme, cfg.Visualizer.Host, cfg.Visualizer.Path, cfg.Visualizer.ApiKey, log)
		visualizers = append(visualizers, v)
		closers = append(closers, v.Close)
	}

	// =================================================================================================================
	// Debug Server

	debug := debugServer(cfg.Web.DebugHost, log)
	closers = append(closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return debug.Shutdown(ctx)
	})

	// =================================================================================================================
	// Run Worker

	w := worker.Run(worker.Settings{
		Logger:      log,
		Listener:    listen.New(mic, recognizer, log),
		Analyzer:    analysis.NewAnalyzer(brn, cfg.Conversation.AnalysisDeadline, log),
		Synthesizer: spk,
		Policy:      table,
		Face:        face,
		Visualizers: visualizers,
		Journal:     journal,
		Config: worker.Config{
			ListenDuration:   cfg.Conversation.ListenDuration,
			ObserverInterval: cfg.Conversation.ObserverInterval,
		},
	})

	// Blocking main until the user quits or a signal arrives.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tui != nil {
		if err := tui.Run(sigCtx); err != nil {
			log.Errorw("display", "ERROR", err)
		}
	} else {
		<-sigCtx.Done()
	}

	log.Infow("shutdown", "status", "shutdown started")

	w.Shutdown()

	log.Infow("shutdown", "status", "worker stopped")
	return nil
}

func debugServer(host string, log *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := http.Server{
		Addr:              host,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("startup", "status", "debug router started", "host", host)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("debug", "ERROR", err)
		}
	}()

	return &srv
}
