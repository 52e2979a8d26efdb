package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// Packet output
	OutputFilename string

	// Station / encoding
	StationModel     string
	IncludePosition  bool
	Latitude         float64
	Longitude        float64
	SymbolTable      string
	SymbolCode       string
	Comment          string
	ReportLuminosity bool

	// Inbound observation events
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string

	// Packet archive
	SQLitePath            string
	SQLiteDSN             string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	outputFilename := strings.TrimSpace(os.Getenv("OUTPUT_FILENAME"))
	if outputFilename == "" {
		return Config{}, fmt.Errorf("OUTPUT_FILENAME is required")
	}

	stationModel := strings.TrimSpace(os.Getenv("STATION_MODEL"))
	if stationModel == "" {
		return Config{}, fmt.Errorf("STATION_MODEL is required")
	}

	includePosition, err := parseBoolEnv("INCLUDE_POSITION", false)
	if err != nil {
		return Config{}, err
	}

	var latitude, longitude float64
	if includePosition {
		latitude, err = parseFloatEnv("STATION_LATITUDE")
		if err != nil {
			return Config{}, err
		}
		if latitude < -90 || latitude > 90 {
			return Config{}, fmt.Errorf("STATION_LATITUDE %v out of range [-90, 90]", latitude)
		}
		longitude, err = parseFloatEnv("STATION_LONGITUDE")
		if err != nil {
			return Config{}, err
		}
		if longitude < -180 || longitude > 180 {
			return Config{}, fmt.Errorf("STATION_LONGITUDE %v out of range [-180, 180]", longitude)
		}
	}

	symbolTable := strings.TrimSpace(os.Getenv("SYMBOL_TABLE"))
	if symbolTable == "" {
		symbolTable = "/"
	}
	if len(symbolTable) != 1 {
		return Config{}, fmt.Errorf("SYMBOL_TABLE %q must be a single character", symbolTable)
	}

	symbolCode := strings.TrimSpace(os.Getenv("SYMBOL_CODE"))
	if symbolCode == "" {
		symbolCode = "_"
	}
	if len(symbolCode) != 1 {
		return Config{}, fmt.Errorf("SYMBOL_CODE %q must be a single character", symbolCode)
	}

	// Comment is appended verbatim, so no TrimSpace here.
	comment := os.Getenv("COMMENT")
	if strings.ContainsAny(comment, "\r\n") {
		return Config{}, fmt.Errorf("COMMENT must not contain newlines")
	}

	reportLuminosity, err := parseBoolEnv("REPORT_LUMINOSITY", false)
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "weewx-aprs"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "weewx/archive"
	}

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "aprs-packets.db"
	}
	sqliteDSN := strings.TrimSpace(os.Getenv("SQLITE_DSN"))

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		OutputFilename:        outputFilename,
		StationModel:          stationModel,
		IncludePosition:       includePosition,
		Latitude:              latitude,
		Longitude:             longitude,
		SymbolTable:           symbolTable,
		SymbolCode:            symbolCode,
		Comment:               comment,
		ReportLuminosity:      reportLuminosity,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		MQTTTopic:             mqttTopic,
		SQLitePath:            sqlitePath,
		SQLiteDSN:             sqliteDSN,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
	}, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseFloatEnv(key string) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, fmt.Errorf("%s is required when INCLUDE_POSITION is set", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
