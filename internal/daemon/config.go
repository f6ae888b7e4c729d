package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/scheduler"
)

const (
	// DefaultServerURL is where a locally hosted download server listens.
	DefaultServerURL = "http://127.0.0.1:8080"

	// DefaultWebPort serves JSON-RPC, the websocket bridge and metrics.
	DefaultWebPort = 3849

	dbFileName  = "grabtube.db"
	logFileName = "grabtubed.log"
	envFileName = ".env"
)

// Config carries everything the daemon needs to run. Values come from the
// config dir's .env file and the process environment, the environment
// winning.
type Config struct {
	ConfigDir  string
	SocketPath string
	Port       int // TCP fallback port for the socket server
	WebPort    int
	ListenAll  bool
	RPCSecret  string

	ServerURL   string
	ServerToken string

	DBPath  string
	LogPath string

	CleanupSpec   string
	Retention     time.Duration
	TickInterval  time.Duration
	CatchUpMissed bool

	Version string
}

// DefaultConfigDir resolves the per-user config directory, creating it if
// needed.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	dir := filepath.Join(base, "grabtube")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// LoadConfig reads configuration for the daemon. fsys abstracts the
// filesystem so tests run against an in-memory one.
func LoadConfig(fsys afero.Fs, configDir string) (*Config, error) {
	env := map[string]string{}
	envFile := filepath.Join(configDir, envFileName)
	if ok, _ := afero.Exists(fsys, envFile); ok {
		data, err := afero.ReadFile(fsys, envFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		env, err = godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", envFile, err)
		}
	}
	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return env[key]
	}

	cfg := &Config{
		ConfigDir:   configDir,
		SocketPath:  get(common.SocketPathEnv),
		ServerURL:   get(common.ServerURLEnv),
		ServerToken: get(common.ServerTokenEnv),
		RPCSecret:   get(common.RPCSecretEnv),
		DBPath:      get(common.DBPathEnv),
		LogPath:     get(common.LogPathEnv),
		CleanupSpec: get(common.CleanupCronEnv),
	}

	var err error
	if cfg.Port, err = parsePort(get(common.TCPPortEnv)); err != nil {
		return nil, fmt.Errorf("%s: %w", common.TCPPortEnv, err)
	}
	if cfg.WebPort, err = parsePort(get(common.WebPortEnv)); err != nil {
		return nil, fmt.Errorf("%s: %w", common.WebPortEnv, err)
	}
	if days := get(common.RetentionDaysEnv); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: invalid day count %q", common.RetentionDaysEnv, days)
		}
		cfg.Retention = time.Duration(n) * 24 * time.Hour
	}
	cfg.ListenAll = isTruthy(get(common.ListenAllEnv))
	cfg.CatchUpMissed = isTruthy(get(common.CatchUpEnv))

	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Port == 0 {
		cfg.Port = common.DefaultTCPPort
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = DefaultWebPort
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.ConfigDir, dbFileName)
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.ConfigDir, logFileName)
	}
	if cfg.CleanupSpec == "" {
		cfg.CleanupSpec = scheduler.DefaultCleanupSpec
	}
	if cfg.Retention == 0 {
		cfg.Retention = scheduler.DefaultRetention
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = scheduler.DefaultTickInterval
	}
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return n, nil
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
