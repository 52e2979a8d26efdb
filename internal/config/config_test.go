package config

import (
	"log/slog"
	"testing"
)

// setRequired sets the two required keys so tests can focus on one knob.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OUTPUT_FILENAME", "/tmp/aprs.txt")
	t.Setenv("STATION_MODEL", "vantage-pro")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.IncludePosition {
		t.Error("IncludePosition = true, want false by default")
	}
	if got.SymbolTable != "/" {
		t.Errorf("SymbolTable = %q, want %q", got.SymbolTable, "/")
	}
	if got.SymbolCode != "_" {
		t.Errorf("SymbolCode = %q, want %q", got.SymbolCode, "_")
	}
	if got.Comment != "" {
		t.Errorf("Comment = %q, want empty", got.Comment)
	}
	if got.ReportLuminosity {
		t.Error("ReportLuminosity = true, want false by default")
	}
	if got.MQTTBroker != "localhost" || got.MQTTPort != 1883 {
		t.Errorf("MQTT defaults = %q:%d, want localhost:1883", got.MQTTBroker, got.MQTTPort)
	}
	if got.MQTTTopic != "weewx/archive" {
		t.Errorf("MQTTTopic = %q, want weewx/archive", got.MQTTTopic)
	}
}

func TestLoadFromEnv_RequiredKeys(t *testing.T) {
	t.Run("missing OUTPUT_FILENAME", func(t *testing.T) {
		t.Setenv("OUTPUT_FILENAME", "")
		t.Setenv("STATION_MODEL", "vantage-pro")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("missing STATION_MODEL", func(t *testing.T) {
		t.Setenv("OUTPUT_FILENAME", "/tmp/aprs.txt")
		t.Setenv("STATION_MODEL", "")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})
}

func TestLoadFromEnv_Position(t *testing.T) {
	t.Run("coordinates required when position enabled", func(t *testing.T) {
		setRequired(t)
		t.Setenv("INCLUDE_POSITION", "1")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil when coordinates missing")
		}
	})

	t.Run("valid coordinates accepted", func(t *testing.T) {
		setRequired(t)
		t.Setenv("INCLUDE_POSITION", "true")
		t.Setenv("STATION_LATITUDE", "49.0583")
		t.Setenv("STATION_LONGITUDE", "-72.0292")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if !got.IncludePosition {
			t.Error("IncludePosition = false, want true")
		}
		if got.Latitude != 49.0583 || got.Longitude != -72.0292 {
			t.Errorf("coordinates = %v,%v; want 49.0583,-72.0292", got.Latitude, got.Longitude)
		}
	})

	t.Run("latitude out of range rejected", func(t *testing.T) {
		setRequired(t)
		t.Setenv("INCLUDE_POSITION", "1")
		t.Setenv("STATION_LATITUDE", "91")
		t.Setenv("STATION_LONGITUDE", "0")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("coordinates not required when position disabled", func(t *testing.T) {
		setRequired(t)
		t.Setenv("INCLUDE_POSITION", "0")
		if _, err := LoadFromEnv(); err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
	})
}

func TestLoadFromEnv_Symbols(t *testing.T) {
	t.Run("multi-character symbol table rejected", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SYMBOL_TABLE", "//")
		if _, err := LoadFromEnv(); err == nil {
			t.Fatal("LoadFromEnv() error = nil, want non-nil")
		}
	})

	t.Run("custom symbols accepted", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SYMBOL_TABLE", "\\")
		t.Setenv("SYMBOL_CODE", "W")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.SymbolTable != "\\" || got.SymbolCode != "W" {
			t.Errorf("symbols = %q/%q; want \\ and W", got.SymbolTable, got.SymbolCode)
		}
	})
}

func TestLoadFromEnv_CommentRejectsNewlines(t *testing.T) {
	setRequired(t)
	t.Setenv("COMMENT", "line one\nline two")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() error = nil, want non-nil for newline in comment")
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad APP_ENV", "APP_ENV", "staging"},
		{"bad LOG_LEVEL", "LOG_LEVEL", "verbose"},
		{"bad MQTT_PORT", "MQTT_PORT", "not-a-port"},
		{"bad INCLUDE_POSITION", "INCLUDE_POSITION", "maybe"},
		{"bad REPORT_LUMINOSITY", "REPORT_LUMINOSITY", "yes please"},
		{"bad DB_MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS", "many"},
		{"bad DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_LIFETIME", "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil for %s=%q", tt.key, tt.value)
			}
		})
	}
}
