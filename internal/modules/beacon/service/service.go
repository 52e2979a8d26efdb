// Package service owns the encode-and-persist operation: one observation in,
// one packet written for the transmitter and archived.
package service

import (
	"log/slog"
	"time"

	"github.com/savagebread/weewx-aprs/internal/modules/beacon/encode"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/repository"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/types"
)

// PacketWriter publishes the latest packet for the downstream transmitter.
type PacketWriter interface {
	Write(packet string) error
}

type Service struct {
	profile encode.Profile
	writer  PacketWriter
	repo    repository.PacketRepository
}

func New(profile encode.Profile, writer PacketWriter, repo repository.PacketRepository) *Service {
	return &Service{profile: profile, writer: writer, repo: repo}
}

// HandleObservation encodes one observation and persists the packet. A write
// failure is returned to the caller (the next observation's write is
// independent, not a retry); an archive failure is logged and does not block
// the published packet, which is the contract artifact.
func (s *Service) HandleObservation(rec types.Observation) error {
	packet := encode.Encode(s.profile, rec)

	if err := s.writer.Write(packet); err != nil {
		return err
	}
	slog.Info("packet written", "packet", packet)

	encodedAt := time.Now().UTC()
	if rec.DateTime != nil {
		encodedAt = time.Unix(*rec.DateTime, 0).UTC()
	}
	if err := s.repo.InsertPacket(encodedAt, packet); err != nil {
		slog.Error("packet archive insert failed", "error", err)
	}
	return nil
}
