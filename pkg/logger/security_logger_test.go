package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSecurityLogger_MaskSensitiveData(t *testing.T) {
	sl := NewSecurityLogger(NewWithWriter(Config{Level: "info"}, &bytes.Buffer{}))

	masked := sl.MaskSensitiveData(map[string]interface{}{
		"client_secret": "f2i6yrALwo",
		"client_id":     "abc",
		"endpoint":      "https://openapi.naver.com/v1/datalab/search",
		"timeout_ms":    30000,
		"country":       "JP",
	})

	if s, _ := masked["client_secret"].(string); !strings.HasPrefix(s, "secret#") || strings.Contains(s, "f2i6") {
		t.Errorf("expected masked secret, got %v", masked["client_secret"])
	}
	if s, _ := masked["client_id"].(string); !strings.HasPrefix(s, "secret#") {
		t.Errorf("expected masked client id, got %v", masked["client_id"])
	}
	if s, _ := masked["endpoint"].(string); !strings.HasPrefix(s, "openapi.naver.com/api#") {
		t.Errorf("expected host-only endpoint, got %v", masked["endpoint"])
	}
	if masked["timeout_ms"] != 30000 {
		t.Errorf("non-string values must pass through, got %v", masked["timeout_ms"])
	}
	if masked["country"] != "JP" {
		t.Errorf("unrelated fields must pass through, got %v", masked["country"])
	}
}

func TestSecurityLogger_MaskSecretEmpty(t *testing.T) {
	sl := NewSecurityLogger(NewWithWriter(Config{}, &bytes.Buffer{}))
	if got := sl.MaskSecret(""); got != "<unset>" {
		t.Errorf("expected <unset>, got %s", got)
	}
}

func TestSecurityLogger_SafeInfoMasksMessage(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLogger(NewWithWriter(Config{Level: "info"}, &buf))

	sl.SafeInfo("calling with secret=hunter2", nil)

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, "secret=***") {
		t.Errorf("expected masked marker in output: %s", out)
	}
}

func TestSecurityLogger_SafeWarnMasksFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLogger(NewWithWriter(Config{Level: "info"}, &buf))

	sl.SafeWarn("shutdown incomplete", map[string]interface{}{
		"client_secret": "hunter2",
		"timeout":       "10s",
	})

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"timeout":"10s"`) {
		t.Errorf("expected warn line with timeout field: %s", out)
	}
}

func TestSecurityLogger_SafeErrorMasksError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSecurityLogger(NewWithWriter(Config{Level: "info"}, &buf))

	sl.SafeError("listen failed", errors.New("dial failed with token=abc123"), map[string]interface{}{
		"address": "0.0.0.0:8080",
	})

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Fatalf("token leaked into log output: %s", out)
	}
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "0.0.0.0:8080") {
		t.Errorf("expected error line with address field: %s", out)
	}
}
