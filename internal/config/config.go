// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for mailview.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration. It is built once at
// startup and treated as immutable by the pipeline.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Converter ConverterConfig `yaml:"converter"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BrowserConfig selects the browser and its two argument sets. FirstArgs is
// used for the first invocation of a run (new top-level window), TabArgs for
// every invocation after that (tab in the existing window).
type BrowserConfig struct {
	Command   string   `yaml:"command"`
	FirstArgs []string `yaml:"first_args"`
	TabArgs   []string `yaml:"tab_args"`
}

// ViewerConfig holds routing choices for non-HTML parts.
type ViewerConfig struct {
	ImageViewer      string `yaml:"image_viewer"`
	ConvertPDFToHTML bool   `yaml:"convert_pdf_to_html"`
}

// ConverterConfig tunes the external document converters.
type ConverterConfig struct {
	UseWvHTMLForDoc    bool   `yaml:"use_wvhtml_for_doc"`
	UnoconvStartupTime string `yaml:"unoconv_startup_time"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer, then
// overrides with environment variables. Returns an error if the specified
// file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// applyDefaults sets the default qutebrowser profile: a private window with
// DNS prefetch and JavaScript off, sharing one basedir so later messages open
// as tabs of the same window.
func (c *Config) applyDefaults() {
	c.Browser.Command = "qutebrowser"
	c.Browser.FirstArgs = []string{
		"--target", "private-window",
		"--basedir", "/tmp/mailattachments",
		"-s", "content.dns_prefetch", "false",
		"-s", "content.javascript.enabled", "false",
	}
	c.Browser.TabArgs = []string{
		"--target", "tab-bg",
		"--basedir", "/tmp/mailattachments",
	}
	c.Viewer.ConvertPDFToHTML = true
	// unoconv defaults to a 6 second listener startup; that is not nearly
	// enough on most machines.
	c.Converter.UnoconvStartupTime = "14"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("MAILVIEW_BROWSER"); v != "" {
		c.Browser.Command = v
	}
	if v := os.Getenv("MAILVIEW_BROWSER_FIRST_ARGS"); v != "" {
		c.Browser.FirstArgs = strings.Fields(v)
	}
	if v := os.Getenv("MAILVIEW_BROWSER_TAB_ARGS"); v != "" {
		c.Browser.TabArgs = strings.Fields(v)
	}
	if v := os.Getenv("MAILVIEW_IMAGE_VIEWER"); v != "" {
		c.Viewer.ImageViewer = v
	}
	if v := os.Getenv("MAILVIEW_CONVERT_PDF_TO_HTML"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Viewer.ConvertPDFToHTML = b
		}
	}
	if v := os.Getenv("MAILVIEW_USE_WVHTML"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Converter.UseWvHTMLForDoc = b
		}
	}
	if v := os.Getenv("MAILVIEW_UNOCONV_STARTUP_TIME"); v != "" {
		c.Converter.UnoconvStartupTime = v
	}
	if v := os.Getenv("MAILVIEW_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
