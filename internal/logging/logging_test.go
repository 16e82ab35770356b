package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Errorf("parseLevel(bogus) = %v, want info", got)
	}
	if got := parseLevel(""); got != slog.LevelInfo {
		t.Errorf("parseLevel(empty) = %v, want info", got)
	}
}

func TestParseLevelRecognizesAliases(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"Warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitSwitchesHandlerForExistingLoggers(t *testing.T) {
	log := L("testcomp")

	var buf bytes.Buffer
	Init("json", "debug", &buf)
	defer Init("text", "info", nil)

	log.Debug("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got %q: %v", buf.String(), err)
	}
	if entry[KeyComponent] != "testcomp" {
		t.Errorf("component = %v, want testcomp", entry[KeyComponent])
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "warn", &buf)
	defer Init("text", "info", nil)

	log := L("levels")
	log.Info("suppressed")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info record logged despite warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record missing from output")
	}
}

func TestWithNotificationAttachesID(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "info", &buf)
	defer Init("text", "info", nil)

	WithNotification(L("corr"), "n-42").Info("tagged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry[KeyNotificationID] != "n-42" {
		t.Errorf("notificationId = %v, want n-42", entry[KeyNotificationID])
	}
}
