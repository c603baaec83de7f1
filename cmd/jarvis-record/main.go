package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"time"

	cli "github.com/spf13/pflag"

	"jarvis/internal/audio"
	"jarvis/internal/audio/pamic"
	"jarvis/internal/config"
	"jarvis/internal/logging"
	"jarvis/pkg/audioconv"
	"jarvis/pkg/stt"
	"jarvis/pkg/stt/whispercpp"
)

func main() {
	flags := config.RegisterFlags(cli.CommandLine)
	seconds := cli.Float64P("seconds", "n", 5, "Seconds to record")
	file := cli.StringP("file", "f", "", "Transcribe this wav, mp3 or ogg file instead of recording")
	cli.Parse()

	cfg, err := config.Load(*flags.Config, *flags.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg.ApplyFlags(cli.CommandLine, flags)
	logger := logging.New(os.Stdout, cfg.LogLevel)
	log.SetDefault(logger)

	samples, rate, err := input(cfg, *file, *seconds)
	if err != nil {
		log.Error("No audio", "err", err)
		os.Exit(1)
	}

	tr := stt.New(whispercpp.Loader(cfg.Whisper.Model, whispercpp.Options{
		Language:      cfg.Whisper.Language,
		Threads:       cfg.Whisper.Threads,
		InitialPrompt: cfg.Whisper.Prompt,
	}), logger)
	defer tr.Close()

	if _, err := tr.Engine(); err != nil {
		log.Error("Failed to load whisper", "model", cfg.Whisper.Model, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	text := tr.Transcribe(ctx, samples, rate)
	log.Info("Transcribed", "took", time.Since(start))
	fmt.Printf("%q\n", text)
}

func input(cfg *config.Config, file string, seconds float64) ([]float32, int, error) {
	if file != "" {
		samples, err := audioconv.DecodeFile(file)
		if err != nil {
			return nil, 0, err
		}
		log.Info("Decoded", "file", file, "samples", len(samples))
		return samples, audioconv.TargetRate, nil
	}

	if err := cfg.EnsureWorkspace(); err != nil {
		return nil, 0, err
	}

	mic := pamic.New(cfg.Audio.Device)
	if err := mic.Init(); err != nil {
		return nil, 0, fmt.Errorf("init audio: %w", err)
	}
	defer mic.Close()

	rate := cfg.Audio.SampleRate
	log.Info("Recording", "seconds", seconds, "rate", rate)
	samples, err := audio.RecordFor(mic, rate, seconds)
	if err != nil {
		return nil, 0, err
	}

	out := filepath.Join(cfg.Workspace, "debug.wav")
	if err := audioconv.WriteWAVFile(out, samples, rate); err != nil {
		log.Warn("Failed to save recording", "path", out, "err", err)
	} else {
		log.Info("Saved", "path", out, "rms", audio.FrameRMS(samples))
	}
	return samples, rate, nil
}
