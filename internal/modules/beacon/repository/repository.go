package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/savagebread/weewx-aprs/internal/modules/beacon/types"
)

//go:embed sql/insert-packet.sql
var insertPacketSQL string

//go:embed sql/get-latest-packets.sql
var getLatestPacketsSQL string

//go:embed sql/get-packets.sql
var getPacketsSQL string

//go:embed sql/get-packets-count.sql
var getPacketsCountSQL string

type PacketRepository interface {
	InsertPacket(encodedAt time.Time, packet string) error
	GetLatestPackets(limit int) ([]types.Packet, error)
	GetPackets(from time.Time, to time.Time, limit int, offset int) ([]types.Packet, error)
	GetPacketsCount(from time.Time, to time.Time) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) PacketRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertPacket(encodedAt time.Time, packet string) error {
	ts := encodedAt.UTC().Format(time.RFC3339Nano)
	_, err := r.db.Exec(insertPacketSQL, ts, packet)
	if err != nil {
		return fmt.Errorf("insert packet: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetLatestPackets(limit int) ([]types.Packet, error) {
	rows, err := r.db.Query(getLatestPacketsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close latest packets rows", "error", err)
		}
	}()
	return scanPackets(rows)
}

func (r *repositoryImpl) GetPackets(from time.Time, to time.Time, limit int, offset int) ([]types.Packet, error) {
	fromStr, toStr := rangeStrings(from, to)
	rows, err := r.db.Query(getPacketsSQL, fromStr, fromStr, toStr, toStr, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close packets rows", "error", err)
		}
	}()
	return scanPackets(rows)
}

func (r *repositoryImpl) GetPacketsCount(from time.Time, to time.Time) (int, error) {
	fromStr, toStr := rangeStrings(from, to)
	var n int
	err := r.db.QueryRow(getPacketsCountSQL, fromStr, fromStr, toStr, toStr).Scan(&n)
	return n, err
}

// rangeStrings renders the optional range bounds; zero times become empty
// strings, which the queries treat as unbounded.
func rangeStrings(from, to time.Time) (string, string) {
	var fromStr, toStr string
	if !from.IsZero() {
		fromStr = from.UTC().Format(time.RFC3339Nano)
	}
	if !to.IsZero() {
		toStr = to.UTC().Format(time.RFC3339Nano)
	}
	return fromStr, toStr
}

func scanPackets(rows *sql.Rows) ([]types.Packet, error) {
	var out []types.Packet
	for rows.Next() {
		var p types.Packet
		if err := rows.Scan(&p.ID, &p.EncodedAt, &p.PacketText); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
