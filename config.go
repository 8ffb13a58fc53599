// config.go
//
// Environment configuration for the panel binary. Values come from the
// process environment, optionally seeded from a .env file (godotenv).
// Durations are given in milliseconds.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/simon/internal/dfplayer"
	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/panel"
)

// Panel drivers.
const (
	driverPeriph = "periph"
	driverGpiod  = "gpiod"
	driverTerm   = "term"
	driverSim    = "sim"
)

// dsnMemory as DB_DSN keeps the ledger in a plain in-process store.
const dsnMemory = "memory"

type config struct {
	LogLevel  string
	LogFormat string
	LogFile   string

	PanelDriver string
	ButtonPins  []string
	LEDPins     []string
	GPIOChip    string
	Debounce    time.Duration

	AudioPort   string // empty: frames are only logged
	AudioBaud   int
	AudioVolume int

	SoundFoldersFile string
	Game             game.Config

	Port          string
	DBDSN         string
	SessionSecret string
	SessionTTL    time.Duration

	ScoreURL         string
	LoginPrompt      bool
	NetRetries       int
	NetRetryInterval time.Duration
}

func loadConfig() (config, error) {
	var errs []string
	num := func(k string, def int) int {
		n, err := envInt(k, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}
	ms := func(k string, def time.Duration) time.Duration {
		return time.Duration(num(k, int(def/time.Millisecond))) * time.Millisecond
	}

	c := config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogFile:     os.Getenv("LOG_FILE"),
		PanelDriver: strings.ToLower(getEnv("PANEL_DRIVER", driverPeriph)),
		ButtonPins:  splitList(getEnv("BUTTON_PINS", "GPIO5,GPIO6,GPIO13,GPIO19,GPIO26")),
		LEDPins:     splitList(getEnv("LED_PINS", "GPIO17,GPIO27,GPIO22,GPIO23,GPIO24")),
		GPIOChip:    getEnv("GPIO_CHIP", "gpiochip0"),
		Debounce:    ms("DEBOUNCE_MS", panel.DefaultDebounce),

		AudioBaud:   num("AUDIO_BAUD", dfplayer.DefaultBaud),
		AudioVolume: num("AUDIO_VOLUME", 25),

		SoundFoldersFile: os.Getenv("SOUND_FOLDERS_FILE"),

		Port:          getEnv("PORT", "80"),
		DBDSN:         getEnv("DB_DSN", ""),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    12 * time.Hour,

		ScoreURL:         strings.TrimRight(os.Getenv("SCORE_URL"), "/"),
		LoginPrompt:      envBool("LOGIN_PROMPT", true),
		NetRetries:       num("NET_RETRIES", 10),
		NetRetryInterval: ms("NET_RETRY_INTERVAL_MS", time.Second),
	}

	// A real panel talks to a real audio module unless told otherwise.
	switch c.PanelDriver {
	case driverPeriph, driverGpiod:
		c.AudioPort = getEnv("AUDIO_PORT", "/dev/serial0")
	case driverTerm, driverSim:
		c.AudioPort = os.Getenv("AUDIO_PORT")
	default:
		errs = append(errs, fmt.Sprintf("PANEL_DRIVER: unknown driver %q", c.PanelDriver))
	}
	if c.AudioVolume < 0 || c.AudioVolume > dfplayer.MaxVolume {
		errs = append(errs, fmt.Sprintf("AUDIO_VOLUME: %d outside 0..%d", c.AudioVolume, dfplayer.MaxVolume))
	}
	if len(c.ButtonPins) != panel.Size || len(c.LEDPins) != panel.Size {
		errs = append(errs, fmt.Sprintf("BUTTON_PINS and LED_PINS need %d entries each", panel.Size))
	}

	g := game.DefaultConfig()
	g.MinFolder = num("FOLDER_MIN", g.MinFolder)
	g.MaxFolder = num("FOLDER_MAX", g.MaxFolder)
	g.DefaultFolder = num("DEFAULT_FOLDER", g.DefaultFolder)
	g.StepDelay = ms("STEP_DELAY_MS", g.StepDelay)
	g.MinStepDelay = ms("STEP_DELAY_MIN_MS", g.MinStepDelay)
	g.StepRamp = ms("STEP_DELAY_RAMP_MS", g.StepRamp)
	g.ScoreAward = num("SCORE_AWARD", g.ScoreAward)
	g.AskChangeSound = envBool("CHANGE_SOUND_PROMPT", g.AskChangeSound)
	if err := g.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	c.Game = g

	if len(errs) > 0 {
		return c, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a number", k, v)
	}
	return n, nil
}

// envBool treats 1/true/yes/on as true and 0/false/no/off as false.
func envBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// lineOffsets turns pin names like "GPIO17" or "17" into gpiod line offsets.
func lineOffsets(pins []string) ([]int, error) {
	out := make([]int, len(pins))
	for i, p := range pins {
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(p), "GPIO"))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad gpio line %q", p)
		}
		out[i] = n
	}
	return out, nil
}
