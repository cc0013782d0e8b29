package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := baseLogger
	savedLevel := GetLevel()
	baseLogger = log.New(&buf, "", 0)
	t.Cleanup(func() {
		baseLogger = saved
		SetLevel(savedLevel.String())
	})
	return &buf
}

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	buf := captureLogs(t)
	SetLevel("info")

	msg := "upload failed: {\"error\": \"Error processing file: 100% of rows empty\"}"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "100% of rows empty") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t)
	if !SetLevel("warn") {
		t.Fatalf("expected warn to be a known level")
	}
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") || !strings.Contains(out, "[ERROR] error 4") {
		t.Fatalf("expected warn and error lines: %s", out)
	}
}

func TestSetLevel_UnknownKeepsCurrent(t *testing.T) {
	captureLogs(t)
	SetLevel("error")
	if SetLevel("chatty") {
		t.Fatalf("unknown level reported as accepted")
	}
	if GetLevel() != LevelError {
		t.Fatalf("level changed on unknown input: %v", GetLevel())
	}
}
