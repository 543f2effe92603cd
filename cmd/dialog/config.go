// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

// Config is the config.yaml shape.
type Config struct {
	Server struct {
		// Addr is the listen address, e.g. ":8080".
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logging struct {
		Level   string `yaml:"level"`
		LogDir  string `yaml:"log_dir"`
		JSON    bool   `yaml:"json"`
		Service string `yaml:"service"`
	} `yaml:"logging"`

	Storage struct {
		// Path is the BadgerDB directory.
		Path string `yaml:"path"`
		// InMemory runs without persistence. Development only.
		InMemory bool `yaml:"in_memory"`
	} `yaml:"storage"`

	Intents struct {
		// Dir holds the YAML intent definition files.
		Dir string `yaml:"dir"`
		// Watch enables hot reload on directory changes.
		Watch bool `yaml:"watch"`
	} `yaml:"intents"`

	NLP struct {
		// Provider is "none", "external" or "openai".
		Provider string `yaml:"provider"`
		// BaseURL of the external classifier, provider "external" only.
		BaseURL string `yaml:"base_url"`
		// Model for provider "openai". Empty uses the default.
		Model string `yaml:"model"`
	} `yaml:"nlp"`

	Files struct {
		// Dir receives copied inbound files.
		Dir string `yaml:"dir"`
	} `yaml:"files"`

	// DefaultLocale applies when a channel payload has no locale.
	DefaultLocale string `yaml:"default_locale"`
}

// DefaultConfigFile returns the defaults config.yaml overlays.
func DefaultConfigFile() Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Logging.Level = "info"
	cfg.Logging.Service = "dialog"
	cfg.Storage.Path = "data/badger"
	cfg.Intents.Dir = "data/intents"
	cfg.Intents.Watch = true
	cfg.NLP.Provider = "none"
	cfg.Files.Dir = "data/files"
	cfg.DefaultLocale = "en-GB"
	return cfg
}
