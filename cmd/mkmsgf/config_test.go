package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`codepages: ["437", "850"]
language: "1,2"
include: "inc"
out_dir: "build"
extension: true
log_level: debug
log_format: json
server_address: "0.0.0.0:9000"
catalog_dir: "/srv/msg"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(cfg.Codepages, []string{"437", "850"}) {
		t.Fatalf("codepages: got %v", cfg.Codepages)
	}
	if cfg.Language != "1,2" || cfg.Include != "inc" || cfg.OutDir != "build" {
		t.Fatalf("unexpected compile defaults: %+v", cfg)
	}
	if cfg.Extension == nil || !*cfg.Extension {
		t.Fatalf("extension: got %v", cfg.Extension)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log settings: %+v", cfg)
	}
	if cfg.ServerAddress != "0.0.0.0:9000" || cfg.CatalogDir != "/srv/msg" {
		t.Fatalf("unexpected server settings: %+v", cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := LoadConfig()
	if cfg.Language != "" || cfg.Codepages != nil || cfg.Extension != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestApplyCompileConfigFlagsWin(t *testing.T) {
	t.Parallel()

	on := true
	cfg := Config{
		Codepages: []string{"850"},
		Language:  "7,1",
		Include:   "cfg-inc",
		OutDir:    "cfg-out",
		Extension: &on,
	}

	var got compileSettings
	cmd := &cli.Command{
		Name: "compile",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "codepage", Aliases: []string{"p"}, Destination: &got.codepages},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Destination: &got.language},
			&cli.StringFlag{Name: "include", Aliases: []string{"i"}, Destination: &got.include},
			&cli.BoolFlag{Name: "ext", Aliases: []string{"e"}, Destination: &got.extension},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCompileConfig(cmd, cfg, &got)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"compile", "-p", "437", "-l", "1,2"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !slices.Equal(got.codepages, []string{"437"}) {
		t.Fatalf("codepages: got %v want [437]", got.codepages)
	}
	if got.language != "1,2" {
		t.Fatalf("language: got %q want 1,2", got.language)
	}
	if got.include != "cfg-inc" || got.outDir != "cfg-out" || !got.extension {
		t.Fatalf("config defaults not applied: %+v", got)
	}
}
