// main.go
//
// Simon panel controller.
// Startup order:
//   - config + logging
//   - panel (buttons/LEDs) and audio link; failure here stops the process
//   - score ledger, login sessions, web server
//   - score service connectivity (bounded retries, then offline)
//   - optional "Login via Web?" gate
//   - game loop until SIGINT/SIGTERM (or q in the terminal panel)

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/catalog"
	"github.com/robalobadob/simon/internal/clock"
	"github.com/robalobadob/simon/internal/console"
	"github.com/robalobadob/simon/internal/dfplayer"
	"github.com/robalobadob/simon/internal/display"
	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/httpserver"
	"github.com/robalobadob/simon/internal/panel"
	"github.com/robalobadob/simon/internal/remote"
	"github.com/robalobadob/simon/internal/session"
	"github.com/robalobadob/simon/internal/store"
	"github.com/robalobadob/simon/internal/termui"
)

func main() {
	_ = godotenv.Load()
	cfg, cfgErr := loadConfig()
	closeLog := setupLogging(cfg)
	defer closeLog()
	if cfgErr != nil {
		log.Fatal().Err(cfgErr).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("panel stopped")
	}
	log.Info().Msg("bye")
}

// setupLogging configures the global zerolog logger. The terminal panel owns
// the screen, so its logs go to a file.
func setupLogging(cfg config) func() {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	var out io.Writer = os.Stderr
	closer := func() {}
	path := cfg.LogFile
	if path == "" && cfg.PanelDriver == driverTerm {
		path = "simon.log"
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("log file unavailable, using stderr")
		} else {
			out = f
			closer = func() { _ = f.Close() }
		}
	}
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: out != os.Stderr}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer
}

func run(ctx context.Context, cfg config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	clk := clock.Real{}

	// --- hardware ---
	board, screen, err := openPanel(cfg)
	if err != nil {
		return err
	}
	defer board.Close()
	var disp display.Display = &display.Log{}
	if screen != nil {
		defer screen.Close()
		disp = screen
	}
	ui := display.Observer{D: disp}

	link, err := openAudio(cfg)
	if err != nil {
		return err
	}
	defer link.Close()
	player := dfplayer.New(link, clk, dfplayer.DefaultSettle)
	if err := player.SetVolume(ctx, cfg.AudioVolume); err != nil {
		log.Warn().Err(err).Msg("audio: initial volume")
	}

	// --- game ---
	cat, err := catalog.Load(cfg.SoundFoldersFile)
	if err != nil {
		return err
	}
	engine, err := game.New(cfg.Game, game.Deps{
		Audio:   player,
		Lights:  panel.Lights{Board: board},
		Input:   panel.NewSampler(board, clk, cfg.Debounce),
		Clock:   clk,
		Catalog: cat,
	})
	if err != nil {
		return err
	}
	engine.Subscribe(ui)

	// --- ledger, sessions, web ---
	ledger, closeLedger, err := openLedger(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer closeLedger()

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	sessions.OnLogin(ui.LoggedIn)

	srv := httpserver.New(httpserver.Deps{Game: engine, Sessions: sessions, Volume: player, Store: ledger})
	go func() {
		if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	// --- score service ---
	var submit remote.Submitter
	if cfg.ScoreURL != "" {
		ui.Prompt("Connecting...", "")
		client := remote.NewClient(cfg.ScoreURL, 10*time.Second)
		if client.Connect(ctx, clk, cfg.NetRetries, cfg.NetRetryInterval) {
			submit = client
		} else {
			ui.Prompt("Playing Offline", "")
		}
	}
	reporter := remote.NewReporter(submit, sessions, ledger)
	engine.Subscribe(reporter)
	go reporter.Run(ctx)

	// --- operator inputs ---
	if screen != nil {
		go func() {
			if err := screen.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("terminal panel")
			}
			cancel()
		}()
	} else {
		con := console.New(engine, os.Stdin, os.Stdout, cfg.Game.MinFolder, cfg.Game.MaxFolder)
		go func() {
			if err := con.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("console closed")
			}
		}()
	}

	if cfg.LoginPrompt && submit != nil {
		if err := loginGate(ctx, engine, sessions, ui); err != nil {
			return err
		}
	}
	return engine.Run(ctx)
}

// openPanel returns the board for the configured driver. The terminal
// driver also returns the screen that emulates the display.
func openPanel(cfg config) (panel.Board, *termui.Screen, error) {
	switch cfg.PanelDriver {
	case driverPeriph:
		b, err := panel.OpenPeriph(cfg.ButtonPins, cfg.LEDPins)
		return b, nil, err
	case driverGpiod:
		buttons, err := lineOffsets(cfg.ButtonPins)
		if err != nil {
			return nil, nil, err
		}
		leds, err := lineOffsets(cfg.LEDPins)
		if err != nil {
			return nil, nil, err
		}
		b, err := panel.OpenGpiod(cfg.GPIOChip, buttons, leds)
		return b, nil, err
	case driverTerm:
		b := panel.NewSimBoard()
		s, err := termui.Open(b)
		if err != nil {
			return nil, nil, err
		}
		return b, s, nil
	default:
		log.Warn().Msg("panel: simulated board, no buttons will be pressed")
		return panel.NewSimBoard(), nil, nil
	}
}

// openLedger returns the score ledger for dsn. "memory" selects the plain
// in-process store; anything else is a SQLite DSN (empty = in-memory SQLite).
func openLedger(dsn string) (store.Store, func(), error) {
	if strings.EqualFold(dsn, dsnMemory) {
		log.Info().Msg("store: in-process ledger")
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := store.OpenDB(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewSQLiteStore(db), func() { _ = db.Close() }, nil
}

func openAudio(cfg config) (io.WriteCloser, error) {
	if cfg.AudioPort == "" {
		log.Warn().Msg("audio: no AUDIO_PORT, frames are only logged")
		return dfplayer.LogLink{}, nil
	}
	return dfplayer.OpenSerial(cfg.AudioPort, cfg.AudioBaud)
}

// loginGate asks whether to wait for a web login before the first game.
func loginGate(ctx context.Context, e *game.Engine, sessions *session.Manager, ui display.Observer) error {
	if _, ok := sessions.Current(); ok {
		return nil
	}
	ui.Prompt("Login via Web?", "Yes:Ylw  No:Red")
	yes, err := e.AskYesNo(ctx)
	if err != nil {
		return err
	}
	if !yes {
		ui.Prompt("Playing Offline", "")
		return nil
	}
	ui.Prompt("Waiting for", "web login...")
	_, err = sessions.Wait(ctx)
	return err
}
