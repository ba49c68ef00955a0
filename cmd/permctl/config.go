package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/halvarsson/permissions/pkg/permlog"
)

// config is permctl's own optional settings file -- separate from the
// registry save file it operates on. It exists mainly to give the CLI a
// place to default the save-file path and logging verbosity from, instead
// of requiring the save-file argument on every invocation.
type config struct {
	RegistryFile string `yaml:"registry_file"`
	Verbose      bool   `yaml:"verbose"`
}

func loadConfig(path string) (config, error) {
	cfg := config{RegistryFile: "permissions.txt"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// logger returns a stderr Logger at the level the config asks for: debug
// when verbose is set, warn otherwise so routine grants stay quiet.
func (cfg config) logger() *permlog.Logger {
	level := permlog.LevelWarn
	if cfg.Verbose {
		level = permlog.LevelDebug
	}
	return permlog.New(os.Stderr, level)
}
