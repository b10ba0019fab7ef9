// Package config resolves database connection settings for the exec and run
// commands. Precedence is flags over environment variables over an optional
// TOML config file, mirroring how the tool is driven in scripted use.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"
)

// Database holds MySQL connection parameters.
type Database struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Charset  string `toml:"charset"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Config is the top-level TOML document.
type Config struct {
	Database Database `toml:"database"`
	Log      Log      `toml:"log"`
}

// Default returns the built-in connection defaults.
func Default() *Config {
	return &Config{
		Database: Database{
			Host:    "localhost",
			Port:    3306,
			User:    "root",
			Charset: "utf8mb4",
		},
	}
}

// Load reads path as a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays the DB_* environment variables onto the config. Unset
// variables leave the current values untouched.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid DB_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("DB_CHARSET"); v != "" {
		c.Database.Charset = v
	}
	return nil
}

// DSN assembles a go-sql-driver DSN from the database settings. The database
// name is required; everything else has a usable default.
func (d Database) DSN() (string, error) {
	if d.Name == "" {
		return "", fmt.Errorf("config: database name is required (set --database or DB_DATABASE)")
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	mc.User = d.User
	mc.Passwd = d.Password
	mc.DBName = d.Name
	mc.MultiStatements = false
	if d.Charset != "" {
		mc.Params = map[string]string{"charset": d.Charset}
	}
	return mc.FormatDSN(), nil
}
