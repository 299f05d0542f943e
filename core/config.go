package core

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the top-level configuration for an oonfwd process, decoded
// from a YAML file the way the teacher's fw/cmd/cmd.go decodes its own
// config (core.DefaultConfig() + toolutils.ReadYaml).
type Config struct {
	Core   CoreConfig   `yaml:"core"`
	Tables TablesConfig `yaml:"tables"`
	Fw     FwConfig     `yaml:"fw"`
	Faces  FacesConfig  `yaml:"faces"`
}

// CoreConfig holds process-wide ambient settings.
type CoreConfig struct {
	BaseDir  string `yaml:"-"` // set from the config file's directory, not from YAML
	LogLevel string `yaml:"log_level"`
}

// TablesConfig holds the forwarding-table tunables enumerated in spec.md §6.
type TablesConfig struct {
	CsMaxSize      int           `yaml:"cs_max_size"`
	OpMIPS         int           `yaml:"op_mips"`
	DnlLifetime    time.Duration `yaml:"dnl_lifetime"`
	StragglerTime  time.Duration `yaml:"straggler_time"` // decoded only; the forwarder uses a fixed 100 ms
	BitrateLadder  []string      `yaml:"bitrate_ladder"`
	MovieToken     string        `yaml:"movie_token"`
}

// FwConfig holds strategy-dispatch defaults.
type FwConfig struct {
	DefaultStrategy string `yaml:"default_strategy"`
}

// FacesConfig holds listen-socket settings for the face layer.
type FacesConfig struct {
	UnixSocket   string `yaml:"unix_socket"`
	WebSocketBind string `yaml:"websocket_bind"`
}

// defaultBitrateLadder is the spec.md §4.3.3 ladder, smallest bitrate first.
var defaultBitrateLadder = []string{
	"_50", "_100", "_150", "_200", "_250", "_300", "_400", "_500",
	"_600", "_700", "_900", "_1200", "_1500", "_2000", "_2500",
	"_3000", "_4000", "_5000", "_6000", "_8000",
}

// DefaultConfig returns a Config populated with spec.md §6's documented
// defaults, mirroring the teacher's core.DefaultConfig().
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{LogLevel: "INFO"},
		Tables: TablesConfig{
			CsMaxSize:     1024,
			OpMIPS:        1_000_000,
			DnlLifetime:   6 * time.Second,
			StragglerTime: 100 * time.Millisecond,
			BitrateLadder: append([]string(nil), defaultBitrateLadder...),
			MovieToken:    "bunny_2s",
		},
		Fw: FwConfig{DefaultStrategy: "best-route"},
	}
}

// LoadConfig reads and decodes a YAML config file into cfg, the way the
// teacher's toolutils.ReadYaml does (github.com/goccy/go-yaml, the
// teacher's own choice, not gopkg.in/yaml.v3).
func LoadConfig(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Tables.BitrateLadder) == 0 {
		cfg.Tables.BitrateLadder = append([]string(nil), defaultBitrateLadder...)
	}
	if cfg.Tables.MovieToken == "" {
		cfg.Tables.MovieToken = "bunny_2s"
	}
	return nil
}
