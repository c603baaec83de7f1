package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cli "github.com/spf13/pflag"

	"jarvis/internal/actions"
	"jarvis/internal/audio"
	"jarvis/internal/audio/pamic"
	"jarvis/internal/bus"
	"jarvis/internal/config"
	"jarvis/internal/fsm"
	"jarvis/internal/ipc"
	"jarvis/internal/logging"
	"jarvis/internal/nlu"
	"jarvis/internal/notify"
	"jarvis/internal/pipeline"
	"jarvis/internal/proxy"
	"jarvis/internal/router"
	"jarvis/internal/trigger"
	"jarvis/internal/tts"
	"jarvis/internal/tts/espeak"
	"jarvis/internal/wake"
	"jarvis/pkg/stt"
	"jarvis/pkg/stt/whispercpp"
)

func main() {
	flags := config.RegisterFlags(cli.CommandLine)
	cli.Parse()

	cfg, err := config.Load(*flags.Config, *flags.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg.ApplyFlags(cli.CommandLine, flags)

	logger := logging.New(os.Stdout, cfg.LogLevel)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid config", "err", err)
		os.Exit(1)
	}
	if err := cfg.EnsureWorkspace(); err != nil {
		log.Error("Failed to prepare workspace", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Error("Fatal", "err", err)
		os.Exit(1)
	}
	log.Info("Shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	log.Info("Booting up")

	gate, err := wake.New(cfg.Wake)
	if err != nil {
		return fmt.Errorf("wake phrase: %w", err)
	}

	httpClient, err := proxy.NewClient(cfg.Proxy, proxy.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("proxy %s: %w", cfg.Proxy, err)
	}

	backends := nlu.Order(cfg.AI.Primary,
		nlu.NewGroq(cfg.AI.GroqKey, cfg.AI.GroqModel, httpClient),
		nlu.NewOpenRouter(cfg.AI.OpenRouterKey, cfg.AI.OpenRouterModel, httpClient),
	)
	dispatcher := nlu.NewDispatcher(backends, cfg.AI.Timeout, logger)

	workspace, err := actions.NewWorkspace(cfg.Workspace)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}

	keys, err := actions.NewKeys()
	if err != nil {
		return fmt.Errorf("keyboard: %w", err)
	}
	clip := actions.SystemClipboard{}
	keyboard := actions.NewKeyboard(keys, clip)

	var wg sync.WaitGroup
	goRun := func(f func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(ctx)
		}()
	}

	var voice *tts.Speaker
	if cfg.Speech.Enabled {
		voice = tts.NewSpeaker(espeak.New(cfg.Speech.Voice, cfg.Speech.Rate), tts.DefaultQueueSize, logger)
		goRun(voice.Run)
	}

	var overlay *notify.Overlay
	if cfg.Notify {
		overlay = notify.NewOverlay(notify.DefaultTitle, logger)
		goRun(overlay.Run)
	}

	var publisher *bus.Publisher
	if cfg.BusURL != "" {
		publisher, err = bus.NewPublisher(cfg.BusURL, bus.DefaultReconnect, logger)
		if err != nil {
			return fmt.Errorf("bus: %w", err)
		}
		goRun(publisher.Run)
	}

	rt := router.New(keyboard, announcer(voice), dispatcher,
		router.NewDebouncer(cfg.Debounce, router.DefaultMaxEntries), logger)

	executor := actions.NewExecutor(actions.Effectors{
		Keyboard:  keyboard,
		Files:     workspace,
		Shell:     actions.NewShell(cfg.Shell.Allowed, cfg.Shell.Timeout, workspace.Root()),
		Clipboard: clip,
		System:    actions.NewSystemInfo(),
		Search:    actions.NewSearcher(httpClient, ""),
		Video:     actions.NewVideo(),
		Apps:      actions.NewApps(cfg.Apps),
	}, logger)

	transcriber := stt.New(whispercpp.Loader(cfg.Whisper.Model, whispercpp.Options{
		Language:      cfg.Whisper.Language,
		Threads:       cfg.Whisper.Threads,
		InitialPrompt: cfg.Whisper.Prompt,
	}), logger)
	defer transcriber.Close()

	pipe := &pipeline.Pipeline{
		Transcriber:  transcriber,
		Gate:         gate,
		Router:       rt,
		Executor:     executor,
		SpeakAnswers: cfg.Speech.Enabled && cfg.Speech.Answers,
		Timeout:      cfg.PipelineTimeout,
		Logger:       logger,
	}
	if voice != nil {
		pipe.Voice = voice
	}
	if overlay != nil {
		pipe.Display = overlay
	}
	if publisher != nil {
		pipe.Publisher = publisher
	}

	mic := pamic.New(cfg.Audio.Device)
	if err := mic.Init(); err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer mic.Close()

	capture := audio.NewCapture(audio.CaptureConfig{
		SampleRate:  cfg.Audio.SampleRate,
		FrameSize:   cfg.Audio.FrameSize,
		MaxDuration: cfg.Audio.MaxDuration,
	}, mic, func(rec audio.Recording) {
		pipe.HandleRecording(ctx, rec)
	}, hooks(ctx, cfg, logger), logger)
	defer capture.Shutdown()

	src, err := trigger.New(cfg.Trigger.Kind, cfg.Trigger.Button, cfg.Trigger.Hotkey, logger)
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}

	socket := cfg.Socket
	if socket == "" {
		socket = ipc.DefaultSocketPath()
	}
	srv, err := ipc.Listen(socket, control(capture, pipe), logger)
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	goRun(func(ctx context.Context) {
		if err := srv.Serve(ctx); err != nil {
			log.Error("Control socket stopped", "err", err)
		}
	})

	log.Info("Boot up - successful",
		"wake", gate.Phrase(),
		"model", cfg.Whisper.Model,
		"backends", backendNames(backends),
		"workspace", workspace.Root(),
		"trigger", cfg.Trigger.Kind,
		"socket", socket,
	)
	if !cfg.HasAIKey() {
		log.Warn("No AI API key set, only built-in commands will work", "keys", "GROQ_API_KEY, OPENROUTER_API_KEY")
	}

	errc := make(chan error, 1)
	if src != nil {
		go func() {
			errc <- src.Run(ctx, capture.Press, capture.Release)
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
		<-ctx.Done()
	}

	log.Info("Shutting down")
	wg.Wait()
	return nil
}

func announcer(voice *tts.Speaker) router.Announcer {
	if voice == nil {
		return nil
	}
	return voice
}

func hooks(ctx context.Context, cfg *config.Config, logger *log.Logger) audio.Hooks {
	var cue *notify.Cue
	if cfg.Audio.Cue != "" {
		var err error
		if cue, err = notify.LoadCue(cfg.Audio.Cue); err != nil {
			logger.Warn("Recording cue disabled", "err", err)
		}
	}

	var ducker *audio.Ducker
	if cfg.Audio.Duck {
		ducker = audio.NewDucker(cfg.Audio.DuckKeep, cfg.Audio.DuckFactor, cfg.Audio.DuckFloor, cfg.Audio.DuckFade)
	}

	return audio.Hooks{
		OnStart: func() {
			cue.Play()
			if ducker != nil {
				if err := ducker.Duck(ctx); err != nil {
					logger.Debug("Duck failed", "err", err)
				}
			}
		},
		OnStop: func() {
			if ducker != nil {
				if err := ducker.Restore(context.WithoutCancel(ctx)); err != nil {
					logger.Debug("Restore volume failed", "err", err)
				}
			}
		},
	}
}

func control(capture *audio.Capture, pipe *pipeline.Pipeline) ipc.Handler {
	return func(ctx context.Context, msg ipc.ControlMessage) ipc.Reply {
		switch msg.Cmd {
		case ipc.CmdPress:
			capture.Press()
		case ipc.CmdRelease:
			capture.Release()
		case ipc.CmdToggle:
			if capture.State() == fsm.StateRecording {
				capture.Release()
			} else {
				capture.Press()
			}
		case ipc.CmdSay:
			if msg.Text == "" {
				return ipc.Reply{Error: "say needs text"}
			}
			go pipe.HandleTranscript(ctx, "", msg.Text)
		case ipc.CmdStatus:
		default:
			return ipc.Reply{Error: fmt.Sprintf("unknown command %q", msg.Cmd)}
		}
		return ipc.Reply{OK: true, State: string(capture.State())}
	}
}

func backendNames(bs []nlu.Backend) []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name()
	}
	return names
}
