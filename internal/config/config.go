package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "config.toml"

// AppConfig is the service configuration.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Workbook WorkbookConfig `toml:"workbook"`
	Export   ExportConfig   `toml:"export"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Mode string `toml:"mode"` // gin mode: debug, release or test
}

// WorkbookConfig locates the control workbook loaded at startup.
type WorkbookConfig struct {
	Path          string   `toml:"path"`
	SearchDirs    []string `toml:"search_dirs"`
	MaxUploadMB   int      `toml:"max_upload_mb"`
	LoadOnStartup bool     `toml:"load_on_startup"`
}

type ExportConfig struct {
	MaxRows     int    `toml:"max_rows"`
	CSVEncoding string `toml:"csv_encoding"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Format      string `toml:"format"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port: 8084,
			Mode: "release",
		},
		Workbook: WorkbookConfig{
			Path:          "SISTEMA_INTEGRAL_DE_CONTROL_DOCUMENTAL_2025.xlsx",
			SearchDirs:    []string{"/mnt/user-data/uploads", "data"},
			MaxUploadMB:   50,
			LoadOnStartup: true,
		},
		Export: ExportConfig{
			MaxRows:     30,
			CSVEncoding: "utf8",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error; an empty path reads DefaultConfigFile.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error al leer %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_PORT inválido %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DASHBOARD_WORKBOOK"); v != "" {
		c.Workbook.Path = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DASHBOARD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("puerto fuera de rango: %d", c.Server.Port)
	}
	if c.Export.MaxRows <= 0 {
		return fmt.Errorf("export.max_rows debe ser positivo: %d", c.Export.MaxRows)
	}
	if c.Workbook.MaxUploadMB <= 0 {
		return fmt.Errorf("workbook.max_upload_mb debe ser positivo: %d", c.Workbook.MaxUploadMB)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// MaxUploadBytes is the upload limit in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Workbook.MaxUploadMB) << 20
}

// WorkbookCandidates lists where the startup workbook is looked for, in order:
// the configured path, then its file name inside each search directory.
func (c *AppConfig) WorkbookCandidates() []string {
	if c.Workbook.Path == "" {
		return nil
	}
	out := []string{c.Workbook.Path}
	name := filepath.Base(c.Workbook.Path)
	for _, dir := range c.Workbook.SearchDirs {
		out = append(out, filepath.Join(dir, name))
	}
	return out
}
