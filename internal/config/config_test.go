package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// clearEnv blanks every mailview variable so a test sees only its own values.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"MAILVIEW_BROWSER", "MAILVIEW_BROWSER_FIRST_ARGS", "MAILVIEW_BROWSER_TAB_ARGS",
		"MAILVIEW_IMAGE_VIEWER", "MAILVIEW_CONVERT_PDF_TO_HTML",
		"MAILVIEW_USE_WVHTML", "MAILVIEW_UNOCONV_STARTUP_TIME",
		"MAILVIEW_LOG_LEVEL",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Browser.Command != "qutebrowser" {
		t.Errorf("Browser.Command: got %q, want qutebrowser", cfg.Browser.Command)
	}
	if len(cfg.Browser.FirstArgs) == 0 {
		t.Error("Browser.FirstArgs: got empty, want private-window defaults")
	}
	if len(cfg.Browser.TabArgs) == 0 {
		t.Error("Browser.TabArgs: got empty, want tab defaults")
	}
	if cfg.Viewer.ImageViewer != "" {
		t.Errorf("Viewer.ImageViewer: got %q, want empty", cfg.Viewer.ImageViewer)
	}
	if !cfg.Viewer.ConvertPDFToHTML {
		t.Error("Viewer.ConvertPDFToHTML: got false, want true")
	}
	if cfg.Converter.UseWvHTMLForDoc {
		t.Error("Converter.UseWvHTMLForDoc: got true, want false")
	}
	if cfg.Converter.UnoconvStartupTime != "14" {
		t.Errorf("Converter.UnoconvStartupTime: got %q, want 14", cfg.Converter.UnoconvStartupTime)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	content := `
browser:
  command: firefox
  first_args: ["-P", "Default", "-private-window", "-new-instance"]
  tab_args: ["-P", "Default", "-private-window"]
viewer:
  image_viewer: feh
  convert_pdf_to_html: false
converter:
  use_wvhtml_for_doc: true
  unoconv_startup_time: "20"
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Browser.Command != "firefox" {
		t.Errorf("Browser.Command: got %q, want firefox", cfg.Browser.Command)
	}
	wantFirst := []string{"-P", "Default", "-private-window", "-new-instance"}
	if !reflect.DeepEqual(cfg.Browser.FirstArgs, wantFirst) {
		t.Errorf("Browser.FirstArgs: got %v, want %v", cfg.Browser.FirstArgs, wantFirst)
	}
	if cfg.Viewer.ImageViewer != "feh" {
		t.Errorf("Viewer.ImageViewer: got %q, want feh", cfg.Viewer.ImageViewer)
	}
	if cfg.Viewer.ConvertPDFToHTML {
		t.Error("Viewer.ConvertPDFToHTML: got true, want false")
	}
	if !cfg.Converter.UseWvHTMLForDoc {
		t.Error("Converter.UseWvHTMLForDoc: got false, want true")
	}
	if cfg.Converter.UnoconvStartupTime != "20" {
		t.Errorf("Converter.UnoconvStartupTime: got %q, want 20", cfg.Converter.UnoconvStartupTime)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILVIEW_BROWSER", "chromium")
	t.Setenv("MAILVIEW_BROWSER_FIRST_ARGS", "--incognito --new-window")
	t.Setenv("MAILVIEW_BROWSER_TAB_ARGS", "--incognito")
	t.Setenv("MAILVIEW_IMAGE_VIEWER", "pho")
	t.Setenv("MAILVIEW_CONVERT_PDF_TO_HTML", "false")
	t.Setenv("MAILVIEW_USE_WVHTML", "true")
	t.Setenv("MAILVIEW_UNOCONV_STARTUP_TIME", "30")
	t.Setenv("MAILVIEW_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Browser.Command != "chromium" {
		t.Errorf("Browser.Command: got %q, want chromium", cfg.Browser.Command)
	}
	wantFirst := []string{"--incognito", "--new-window"}
	if !reflect.DeepEqual(cfg.Browser.FirstArgs, wantFirst) {
		t.Errorf("Browser.FirstArgs: got %v, want %v", cfg.Browser.FirstArgs, wantFirst)
	}
	wantTab := []string{"--incognito"}
	if !reflect.DeepEqual(cfg.Browser.TabArgs, wantTab) {
		t.Errorf("Browser.TabArgs: got %v, want %v", cfg.Browser.TabArgs, wantTab)
	}
	if cfg.Viewer.ImageViewer != "pho" {
		t.Errorf("Viewer.ImageViewer: got %q, want pho", cfg.Viewer.ImageViewer)
	}
	if cfg.Viewer.ConvertPDFToHTML {
		t.Error("Viewer.ConvertPDFToHTML: got true, want false")
	}
	if !cfg.Converter.UseWvHTMLForDoc {
		t.Error("Converter.UseWvHTMLForDoc: got false, want true")
	}
	if cfg.Converter.UnoconvStartupTime != "30" {
		t.Errorf("Converter.UnoconvStartupTime: got %q, want 30", cfg.Converter.UnoconvStartupTime)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want debug (lowercased)", cfg.Logging.Level)
	}
}

func TestLoadFromFile_EnvWinsOverYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILVIEW_BROWSER", "chromium")

	content := "browser:\n  command: firefox\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Browser.Command != "chromium" {
		t.Errorf("Browser.Command: got %q, want env override chromium", cfg.Browser.Command)
	}
}
