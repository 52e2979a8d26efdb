package controller

import (
	"log/slog"
	"net/http"

	"github.com/savagebread/weewx-aprs/internal/httpapi"
)

func (c *packetControllerImpl) handleLatestPacket(w http.ResponseWriter, r *http.Request) {
	packets, err := c.repository.GetLatestPackets(1)
	if err != nil {
		slog.Error("latest packet lookup failed", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load latest packet")
		return
	}
	if len(packets) == 0 {
		httpapi.WriteError(w, http.StatusNotFound, "no packet encoded yet")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, packets[0])
}

func (c *packetControllerImpl) handlePackets(w http.ResponseWriter, r *http.Request) {
	from, to, limit, err := parsePacketsQuery(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	packets, err := c.repository.GetPackets(from, to, limit, 0)
	if err != nil {
		slog.Error("packet history lookup failed", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load packets")
		return
	}
	count, err := c.repository.GetPacketsCount(from, to)
	if err != nil {
		slog.Error("packet count failed", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to count packets")
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"total":   count,
		"packets": packets,
	})
}
