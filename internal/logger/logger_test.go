package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" error ", zapcore.ErrorLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.WarnLevel},
		{"verbose", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) != FormatJSON")
	}
	if ParseFormat("pretty") != FormatConsole {
		t.Error("unknown format should fall back to console")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", FormatJSON, &buf).Named(ComponentValidate)
	l.Debug("hidden")
	l.Info("validated", zap.String("file", "arch.json"), zap.Int("errors", 2))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %s", out)
	}
	for _, want := range []string{`"msg":"validated"`, `"component":"validate"`, `"file":"arch.json"`, `"errors":2`, `"level":"INFO"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	New("warn", FormatConsole, &buf).Warn("watch failed")
	if !strings.Contains(buf.String(), " | WARN | watch failed") {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestInitialize_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	l := Initialize("error", "console")
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("CALMLINT_LOG_LEVEL did not override the configured level")
	}
	if For(ComponentWatch) == nil {
		t.Error("For() returned nil")
	}
}
