package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/pkg/cache"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/pipeline"
	"github.com/matzehuels/archdraw/pkg/storage"
)

const configFile = "config.toml"

// Config is the contents of the CLI config file.
//
//	[canvas]
//	width = 1600
//	margin_left = 3
//
//	[cache]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Server ServerConfig `toml:"server"`
}

// CanvasConfig holds layout defaults. Unset fields fall through to the
// record set's config and the pipeline defaults.
type CanvasConfig struct {
	Width       float64  `toml:"width"`
	Height      float64  `toml:"height"`
	MarginLeft  *float64 `toml:"margin_left"`
	MarginRight *float64 `toml:"margin_right"`
	Gap         *float64 `toml:"gap"`
	Compressed  bool     `toml:"compressed"`
}

// CacheConfig selects the cache backend: file (default), redis, or none.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

func (r RedisConfig) cacheConfig() cache.RedisConfig {
	return cache.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix}
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

func (m MongoConfig) storeConfig() storage.MongoConfig {
	return storage.MongoConfig{URI: m.URI, Database: m.Database, Collection: m.Collection}
}

type ServerConfig struct {
	Addr  string `toml:"addr"`
	Store string `toml:"store"`
}

// loadConfig reads the config file at path. With an empty path the default
// location is tried and a missing file yields the zero Config.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// =============================================================================
// Canvas Flags
// =============================================================================

// canvasFlags are the layout flags shared by render, layout, and serve.
type canvasFlags struct {
	width       float64
	height      float64
	marginLeft  float64
	marginRight float64
	gap         float64
	noCache     bool
	refresh     bool
}

func (f *canvasFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width (default: records config or 1400)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height (default: records config or 900)")
	cmd.Flags().Float64Var(&f.marginLeft, "margin-left", pipeline.DefaultMarginLeft, "left row margin in percent")
	cmd.Flags().Float64Var(&f.marginRight, "margin-right", pipeline.DefaultMarginRight, "right row margin in percent")
	cmd.Flags().Float64Var(&f.gap, "gap", pipeline.DefaultGap, "gap between row items in percent")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options merges config defaults with the flags that were set explicitly.
func (f *canvasFlags) options(cmd *cobra.Command, cfg CanvasConfig) pipeline.Options {
	opts := pipeline.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		MarginLeft:  cfg.MarginLeft,
		MarginRight: cfg.MarginRight,
		Gap:         cfg.Gap,
		Compressed:  cfg.Compressed,
		Refresh:     f.refresh,
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("margin-left") {
		opts.MarginLeft = &f.marginLeft
	}
	if flags.Changed("margin-right") {
		opts.MarginRight = &f.marginRight
	}
	if flags.Changed("gap") {
		opts.Gap = &f.gap
	}
	return opts
}

// configSummary describes where the active config came from, for debug logs.
func (c *CLI) configSummary() string {
	if c.configPath != "" {
		return c.configPath
	}
	dir, err := configDir()
	if err != nil {
		return "none"
	}
	return fmt.Sprintf("%s (if present)", filepath.Join(dir, configFile))
}
