package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_ParsesLevel(t *testing.T) {
	l := New("debug")
	if l.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", l.GetLevel())
	}

	l = New("error")
	if l.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %s", l.GetLevel())
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := New("chatty")
	if l.GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %s", l.GetLevel())
	}
}
