package main

import (
	"os"

	"github.com/ericselin/header-lottery/headers"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port int `yaml:"port"`
	// DB is the classification cache file, "memory" for an in-memory db.
	DB string `yaml:"db"`
	// ArchivePrefix marks original headers replayed by a web archive.
	ArchivePrefix string `yaml:"archivePrefix"`
	// DefaultOrigin is used when a request names neither origin nor URL.
	DefaultOrigin string `yaml:"defaultOrigin"`
	LogFile       string `yaml:"logFile"`
}

func defaultConfig() Config {
	return Config{
		Port:          8080,
		DB:            "classifications.db",
		ArchivePrefix: headers.ArchivePrefix,
	}
}

// getConfig reads the YAML config file on top of the defaults.
func getConfig(filename string) (Config, error) {
	config := defaultConfig()
	if filename == "" {
		return config, nil
	}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

// dbFilename returns the sqlite file name to open.
func (c Config) dbFilename() string {
	if c.DB == "memory" {
		return ""
	}
	return c.DB
}
