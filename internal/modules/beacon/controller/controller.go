package controller

import (
	"net/http"

	"github.com/savagebread/weewx-aprs/internal/modules/beacon/repository"
)

type PacketController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type packetControllerImpl struct {
	repository repository.PacketRepository
}

func NewPacketController(repository repository.PacketRepository) PacketController {
	return &packetControllerImpl{repository: repository}
}

func (c *packetControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/packet", c.handleLatestPacket)
	mux.HandleFunc("GET /api/v1/packets", c.handlePackets)
}
