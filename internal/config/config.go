package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "visor.db"
	DefaultLogName        = "visor.log"

	// EnvConfig overrides the config file location.
	EnvConfig = "VISOR_CONFIG"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Back     string `toml:"back"`
	Open     string `toml:"open"`
	Subtask  string `toml:"subtask"`
	Cycle    string `toml:"cycle"`
	Complete string `toml:"complete"`
	Archive  string `toml:"archive"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
	Notes    string `toml:"notes"`
	Undo     string `toml:"undo"`
	Redo     string `toml:"redo"`
	Insert   string `toml:"insert"`
	Command  string `toml:"command"`
	Search   string `toml:"search"`
	Journal  string `toml:"journal"`
	MoveUp   string `toml:"move_up"`
	MoveDown string `toml:"move_down"`
	Indent   string `toml:"indent"`
	Outdent  string `toml:"outdent"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
}

type Autosave struct {
	DebounceMS      int `toml:"debounce_ms"`
	ExternalQuietMS int `toml:"external_quiet_ms"`
}

type UI struct {
	ToastSeconds int `toml:"toast_seconds"`
	FocusMinutes int `toml:"focus_minutes"`
}

type Config struct {
	DBPath   string   `toml:"db_path"`
	LogPath  string   `toml:"log_path"`
	Autosave Autosave `toml:"autosave"`
	UI       UI       `toml:"ui"`
	Keys     Keymap   `toml:"keys"`
}

// ResolveConfigPath returns $VISOR_CONFIG, or config.toml under the user
// config dir.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "visor", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist. Relative paths in the file are resolved
// against its directory and missing values fall back to defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg.resolve(filepath.Dir(path)), nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.Autosave.DebounceMS <= 0 {
		c.Autosave.DebounceMS = def.Autosave.DebounceMS
	}
	if c.Autosave.ExternalQuietMS <= 0 {
		c.Autosave.ExternalQuietMS = def.Autosave.ExternalQuietMS
	}
	if c.UI.ToastSeconds <= 0 {
		c.UI.ToastSeconds = def.UI.ToastSeconds
	}
	if c.UI.FocusMinutes <= 0 {
		c.UI.FocusMinutes = def.UI.FocusMinutes
	}
	keys := []struct {
		got  *string
		want string
	}{
		{&c.Keys.Quit, def.Keys.Quit},
		{&c.Keys.Up, def.Keys.Up},
		{&c.Keys.Down, def.Keys.Down},
		{&c.Keys.Back, def.Keys.Back},
		{&c.Keys.Open, def.Keys.Open},
		{&c.Keys.Subtask, def.Keys.Subtask},
		{&c.Keys.Cycle, def.Keys.Cycle},
		{&c.Keys.Complete, def.Keys.Complete},
		{&c.Keys.Archive, def.Keys.Archive},
		{&c.Keys.Delete, def.Keys.Delete},
		{&c.Keys.Edit, def.Keys.Edit},
		{&c.Keys.Notes, def.Keys.Notes},
		{&c.Keys.Undo, def.Keys.Undo},
		{&c.Keys.Redo, def.Keys.Redo},
		{&c.Keys.Insert, def.Keys.Insert},
		{&c.Keys.Command, def.Keys.Command},
		{&c.Keys.Search, def.Keys.Search},
		{&c.Keys.Journal, def.Keys.Journal},
		{&c.Keys.MoveUp, def.Keys.MoveUp},
		{&c.Keys.MoveDown, def.Keys.MoveDown},
		{&c.Keys.Indent, def.Keys.Indent},
		{&c.Keys.Outdent, def.Keys.Outdent},
		{&c.Keys.Confirm, def.Keys.Confirm},
		{&c.Keys.Cancel, def.Keys.Cancel},
	}
	for _, k := range keys {
		if *k.got == "" {
			*k.got = k.want
		}
	}
}

func (c Config) resolve(dir string) Config {
	if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	return c
}

func (c Config) DebounceDelay() time.Duration {
	return time.Duration(c.Autosave.DebounceMS) * time.Millisecond
}

func (c Config) ExternalQuiet() time.Duration {
	return time.Duration(c.Autosave.ExternalQuietMS) * time.Millisecond
}

func (c Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		DBPath:  DefaultDBName,
		LogPath: DefaultLogName,
		Autosave: Autosave{
			DebounceMS:      500,
			ExternalQuietMS: 1000,
		},
		UI: UI{
			ToastSeconds: 3,
			FocusMinutes: 25,
		},
		Keys: Keymap{
			Quit:     "q",
			Up:       "k",
			Down:     "j",
			Back:     "esc",
			Open:     "enter",
			Subtask:  "l",
			Cycle:    " ",
			Complete: "x",
			Archive:  "a",
			Delete:   "d",
			Edit:     "e",
			Notes:    "n",
			Undo:     "u",
			Redo:     "ctrl+r",
			Insert:   "i",
			Command:  ">",
			Search:   "?",
			Journal:  ":",
			MoveUp:   "K",
			MoveDown: "J",
			Indent:   "tab",
			Outdent:  "shift+tab",
			Confirm:  "enter",
			Cancel:   "esc",
		},
	}
}
