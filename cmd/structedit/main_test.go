package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/structedit/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		Input:      writeFile(t, dir, "in.xml", "<doc><p>Hello</p><q/></doc>"),
		ScriptPath: writeFile(t, dir, "edit.lua", `doc.insert_text("0/0/0", 5, ", world")`),
		OutPath:    filepath.Join(dir, "out.xml"),
	}
	cfg := config.Default()
	logger := slog.New(slog.DiscardHandler)

	if err := process(context.Background(), cfg, opts, logger); err != nil {
		t.Fatalf("process: %v", err)
	}
	out, err := os.ReadFile(opts.OutPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := "<doc><p>Hello, world</p><q/></doc>"; string(out) != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestProcessReadOnly(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		Input:      writeFile(t, dir, "in.xml", "<p>x</p>"),
		ScriptPath: writeFile(t, dir, "edit.lua", `doc.delete_text("0/0", 0, 1)`),
		OutPath:    filepath.Join(dir, "out.xml"),
	}
	cfg := config.Default()
	cfg.Editor.ReadOnly = true

	err := process(context.Background(), cfg, opts, slog.New(slog.DiscardHandler))
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("expected read-only error, got %v", err)
	}
	if _, err := os.Stat(opts.OutPath); !os.IsNotExist(err) {
		t.Error("no output should be written when the script fails")
	}
}

func TestWatchLoopValidation(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.DiscardHandler)
	tests := []options{
		{ScriptPath: "s.lua", OutPath: "o.xml"},
		{Input: "in.xml", OutPath: "o.xml"},
		{Input: "in.xml", ScriptPath: "s.lua"},
		{Input: "in.xml", ScriptPath: "s.lua", OutPath: "in.xml"},
	}
	for _, opts := range tests {
		if err := watchLoop(context.Background(), cfg, opts, logger); err == nil {
			t.Errorf("watchLoop(%+v) should fail", opts)
		}
	}
}
