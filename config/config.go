// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		// Log is the logging config
		Log Logger `yaml:"log"`

		// Scheduler is the config for the scheduler core
		Scheduler Scheduler `yaml:"scheduler"`

		// Database is the optional database used to persist scheduler state
		// between runs of the tick driver. When omitted the scheduler is
		// purely in-memory.
		Database *DatabaseConfig `yaml:"database"`
	}

	DatabaseConfig struct {
		// SQL is the SQL database config
		SQL *SQL `yaml:"sql"`
	}
)

// NewConfig returns a new decoded Config struct
func NewConfig(configPath string) (*Config, error) {
	log.Printf("Loading configFile=%v\n", configPath)

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) ValidateAndSetDefaults() error {
	if err := c.Scheduler.validateAndSetDefaults(); err != nil {
		return err
	}
	if c.Database != nil {
		if c.Database.SQL == nil {
			return fmt.Errorf("database config requires a sql section")
		}
		if c.Database.SQL.DBExtensionName == "" {
			return fmt.Errorf("sql config requires dbExtensionName")
		}
	}
	return nil
}

func (c *Config) String() string {
	out, err := json.Marshal(c)
	if err != nil {
		return "(config encoding error: " + err.Error() + ")"
	}
	return string(out)
}
