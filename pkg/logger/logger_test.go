package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("tapping %s", "OK")
	Warn("slow response")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "level=info") || !strings.Contains(out, `msg="tapping OK"`) {
		t.Errorf("missing info entry in %q", out)
	}
	if !strings.Contains(out, "level=warning") {
		t.Errorf("missing warning entry in %q", out)
	}
}

func TestInitInvalidPath(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "missing", "run.log")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()

	WithFields(Fields{"serial": "emulator-5554"}, "connected")
	Debug("key=%d", 66)

	out := buf.String()
	if !strings.Contains(out, "serial=emulator-5554") {
		t.Errorf("expected serial field in %q", out)
	}
	if !strings.Contains(out, "level=debug") || !strings.Contains(out, `msg="key=66"`) {
		t.Errorf("expected debug entry in %q", out)
	}
}

func TestNoopWhenClosed(t *testing.T) {
	Close()
	Error("dropped")

	if GetWriter() != io.Discard {
		t.Error("GetWriter() should be io.Discard without a logger")
	}
}
