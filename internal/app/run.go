package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/savagebread/weewx-aprs/internal/config"
	"github.com/savagebread/weewx-aprs/internal/db"
	"github.com/savagebread/weewx-aprs/internal/httpapi"
	beacon "github.com/savagebread/weewx-aprs/internal/modules/beacon"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/encode"
	"github.com/savagebread/weewx-aprs/internal/mqtt"
	"github.com/savagebread/weewx-aprs/internal/packetfile"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"outputFilename", cfg.OutputFilename,
		"stationModel", cfg.StationModel,
		"includePosition", cfg.IncludePosition,
		"reportLuminosity", cfg.ReportLuminosity,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"sqlitePath", cfg.SQLitePath,
	)

	// The profile is resolved once; changing station configuration requires
	// a restart.
	profile := encode.ResolveProfile(encode.StationConfig{
		StationModel:     cfg.StationModel,
		IncludePosition:  cfg.IncludePosition,
		Latitude:         cfg.Latitude,
		Longitude:        cfg.Longitude,
		SymbolTable:      cfg.SymbolTable,
		SymbolCode:       cfg.SymbolCode,
		Comment:          cfg.Comment,
		ReportLuminosity: cfg.ReportLuminosity,
	})
	slog.Info("encoding profile resolved",
		"messageType", profile.MessageType,
		"includePosition", profile.IncludePosition,
		"quirkNoTimestamp", profile.QuirkNoTimestamp,
	)

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}

	writer := packetfile.NewWriter(cfg.OutputFilename)

	// Set the handler before Connect so OnConnectHandler can subscribe
	// immediately; the broker may send queued records right after CONNACK.
	subscriber := mqtt.NewSubscriber(cfg, slog.Default())
	mux := httpapi.NewMux(dbConn)
	beacon.RegisterFeature(mux, dbConn, subscriber, profile, writer)

	// Short timeout for the initial connect so startup is not blocked when
	// the broker is down; the client keeps retrying in the background.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err = subscriber.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Warn("mqtt connection failed (continuing, will retry)", "error", err)
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("mqtt disconnecting")
	subscriber.Disconnect()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
