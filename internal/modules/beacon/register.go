package beacon

import (
	"database/sql"
	"net/http"

	"github.com/savagebread/weewx-aprs/internal/modules/beacon/controller"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/encode"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/repository"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/service"
	"github.com/savagebread/weewx-aprs/internal/modules/beacon/types"
)

// ObservationSubscriber is the inbound-event source the feature attaches to.
type ObservationSubscriber interface {
	SetMessageHandler(handler func(rec types.Observation) error)
}

// RegisterFeature wires the beacon module: MQTT observations drive the
// encoder, the HTTP API exposes the packet archive.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, subscriber ObservationSubscriber, profile encode.Profile, writer service.PacketWriter) {
	repo := repository.NewRepository(db)
	svc := service.New(profile, writer, repo)
	subscriber.SetMessageHandler(svc.HandleObservation)

	ctrl := controller.NewPacketController(repo)
	ctrl.RegisterRoutes(mux)
}
