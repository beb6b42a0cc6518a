package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/audio"
	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/game"
	"chosenoffset.com/roam/internal/logging"
	"chosenoffset.com/roam/internal/net/ws"
	"chosenoffset.com/roam/internal/overlay"
	ebitenrender "chosenoffset.com/roam/internal/render/ebiten"
	"chosenoffset.com/roam/internal/render/terminal"
	"chosenoffset.com/roam/internal/scene"
)

const (
	screenWidth  = 1280
	screenHeight = 800
)

func main() {
	configPath := flag.String("config", "scene.json", "scene config file (JSON or YAML)")
	mode := flag.String("mode", "window", "host: window, terminal or headless")
	listen := flag.String("listen", "", "websocket feed address, overrides feed.addr")
	debug := flag.Bool("debug", false, "development logging")
	schema := flag.Bool("schema", false, "print the config JSON schema and exit")
	mute := flag.Bool("mute", false, "disable the enter chime")
	flag.Parse()

	if *schema {
		data, err := scene.SchemaJSON()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := scene.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.String("path", *configPath), zap.Error(err))
	}
	if *listen != "" {
		cfg.Feed.Addr = *listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := controller.New(cfg, nil, logger)
	if err != nil {
		logger.Fatal("Failed to build scene", zap.Error(err))
	}

	handlers := &eventFanout{}
	driver.Overlay().OnEvent = handlers.Emit

	if cfg.Audio.Enabled && !*mute && *mode != "headless" {
		out, err := audio.OpenSpeaker()
		if err != nil {
			logger.Warn("Audio unavailable, continuing without chime", zap.Error(err))
		} else {
			defer audio.CloseSpeaker()
			chime := audio.NewChime(cfg.Audio, out, logger.Named("audio"))
			handlers.Add(chime.HandleEvent)
		}
	}

	var frameObservers []func(controller.Frame)
	driver.OnFrame = func(f controller.Frame) {
		for _, o := range frameObservers {
			o(f)
		}
	}

	serverErr := make(chan error, 1)
	if cfg.Feed.Addr != "" {
		hub := ws.NewHub(logger.Named("hub"))
		server := ws.NewServer(driver, hub, logger.Named("ws"))
		if cfg.Feed.SendInterval > 0 {
			server.SendInterval = uint64(cfg.Feed.SendInterval)
		}
		handlers.Add(hub.BroadcastEvent)
		frameObservers = append(frameObservers, server.ObserveFrame)
		go func() {
			err := server.ListenAndServe(ctx, cfg.Feed.Addr)
			if err != nil {
				logger.Error("Feed server stopped", zap.Error(err))
			}
			serverErr <- err
		}()
	}

	switch *mode {
	case "window":
		err = runWindow(ctx, driver, handlers, logger)
	case "terminal":
		err = runTerminal(ctx, driver, handlers, cfg.Feed.TickRate, logger)
	case "headless":
		err = runHeadless(ctx, driver, cfg.Feed.TickRate, serverErr, logger)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Fatal("Host stopped", zap.String("mode", *mode), zap.Error(err))
	}
	logger.Info("Shut down")
}

func runWindow(ctx context.Context, driver *controller.Driver, handlers *eventFanout, logger *zap.Logger) error {
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	g := game.NewGame(ctx, driver, renderer, inputMgr, screenWidth, screenHeight, logger.Named("game"))
	defer g.Close()
	handlers.Add(g.HandleEvent)

	engine.SetWindowSize(screenWidth, screenHeight)
	engine.SetWindowTitle("Roam")
	engine.SetWindowResizable(true)
	engine.SetTPS(60)

	logger.Info("Starting window")
	return engine.RunGame(g)
}

func runTerminal(ctx context.Context, driver *controller.Driver, handlers *eventFanout, tickRate int, logger *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	v := terminal.NewViewer(screen, driver, terminal.DefaultHoldTimeout, logger.Named("terminal"))
	defer v.Close()
	handlers.Add(v.HandleEvent)

	return v.Run(ctx, tickRate)
}

// runHeadless ticks the scene with no local view, for the websocket feed.
func runHeadless(ctx context.Context, driver *controller.Driver, tickRate int, serverErr <-chan error, logger *zap.Logger) error {
	if tickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", tickRate)
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	logger.Info("Running headless", zap.Int("tps", tickRate))
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serverErr:
			return err
		case <-ticker.C:
			driver.Tick()
		}
	}
}

// eventFanout passes overlay events to every host that registered.
type eventFanout struct {
	mu       sync.RWMutex
	handlers []func(overlay.Event)
}

func (f *eventFanout) Add(h func(overlay.Event)) {
	f.mu.Lock()
	f.handlers = append(f.handlers, h)
	f.mu.Unlock()
}

func (f *eventFanout) Emit(ev overlay.Event) {
	f.mu.RLock()
	handlers := f.handlers
	f.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}
