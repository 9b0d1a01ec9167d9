// Package remote streams map mutations over a WebSocket to a browser-side
// applier that mirrors them onto a real rendering surface. It implements
// engine.Engine.
package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/logging"
	"github.com/vivatulum/mapkit/internal/marker"
	"github.com/vivatulum/mapkit/internal/venue"

	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/pkg/streaming"
)

// Config holds remote engine settings.
type Config struct {
	URL    string
	Secret string

	// AckTimeout bounds the wait for the applier's hello acknowledgement.
	// Zero means a 5 second default.
	AckTimeout time.Duration
}

// Engine is the WebSocket-streaming rendering surface.
type Engine struct {
	conn     *connection
	cfg      Config
	clientID string
	log      logging.Logger
}

// New creates a remote engine. Nothing is dialed until Init.
func New(cfg Config, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		conn:     newConnection(log),
		cfg:      cfg,
		clientID: uuid.NewString(),
		log:      log,
	}
}

// Init dials the applier, announces the session, and waits for the applier
// to acknowledge it. A closed engine gets a fresh connection, so close and
// re-init is a supported cycle.
func (e *Engine) Init() error {
	if e.conn.isClosed() {
		e.conn = newConnection(e.log)
	}
	if e.cfg.AckTimeout > 0 {
		e.conn.ackWait = e.cfg.AckTimeout
	}
	if err := e.conn.dial(e.cfg.URL, e.cfg.Secret); err != nil {
		return err
	}

	hello, err := marshalEnvelope(streaming.TypeHello, streaming.HelloPayload{
		ClientID: e.clientID,
		Version:  "1",
	})
	if err != nil {
		return err
	}
	e.conn.mu.Lock()
	e.conn.cachedHello = hello
	e.conn.mu.Unlock()
	e.conn.send(hello)

	if err := e.conn.awaitAck(streaming.TypeHello); err != nil {
		_ = e.conn.close()
		return fmt.Errorf("session not acknowledged: %w", err)
	}
	return nil
}

// Close disconnects from the applier.
func (e *Engine) Close() error {
	return e.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it to the
// write loop (fire-and-forget).
func (e *Engine) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	e.conn.send(data)
	return nil
}

// SetBaseLayer streams a base imagery change.
func (e *Engine) SetBaseLayer(id layers.LayerID, urlTemplate string) error {
	return e.sendEnvelope(streaming.TypeSetBaseLayer, streaming.BaseLayerPayload{
		ID:          string(id),
		URLTemplate: urlTemplate,
	})
}

// SetOverlay streams an overlay attach/update.
func (e *Engine) SetOverlay(id layers.LayerID, urlTemplate string, visible bool) error {
	return e.sendEnvelope(streaming.TypeSetOverlay, streaming.OverlayPayload{
		ID:          string(id),
		URLTemplate: urlTemplate,
		Visible:     visible,
	})
}

// RemoveOverlay streams an overlay detach.
func (e *Engine) RemoveOverlay(id layers.LayerID) error {
	return e.sendEnvelope(streaming.TypeRemoveOverlay, streaming.RemoveOverlayPayload{
		ID: string(id),
	})
}

// UpsertMarker streams one marker.
func (e *Engine) UpsertMarker(m marker.Marker) error {
	return e.sendEnvelope(streaming.TypeUpsertMarker, streaming.MarkerPayload{
		ID:        m.ID,
		Lat:       m.Lat,
		Lng:       m.Lng,
		Icon:      string(m.Icon),
		Title:     m.Title,
		PopupHTML: m.PopupHTML,
	})
}

// ClearMarkers streams a marker group reset.
func (e *Engine) ClearMarkers() error {
	return e.sendEnvelope(streaming.TypeClearMarkers, struct{}{})
}

// SetUserMarker streams the user position and accuracy circle.
func (e *Engine) SetUserMarker(loc venue.UserLocation, radiusMeters float64) error {
	return e.sendEnvelope(streaming.TypeUserLocation, streaming.UserLocationPayload{
		Lat:          loc.Lat,
		Lng:          loc.Lng,
		RadiusMeters: radiusMeters,
	})
}

// RemoveUserMarker streams removal of the user marker.
func (e *Engine) RemoveUserMarker() error {
	return e.sendEnvelope(streaming.TypeClearUser, struct{}{})
}

// SetView streams an instant view change.
func (e *Engine) SetView(v engine.View) error {
	return e.sendEnvelope(streaming.TypeSetView, streaming.ViewPayload{
		Lat:  v.Center.Lat,
		Lng:  v.Center.Lng,
		Zoom: v.Zoom,
	})
}

// FlyTo streams an animated view change.
func (e *Engine) FlyTo(v engine.View) error {
	return e.sendEnvelope(streaming.TypeFlyTo, streaming.ViewPayload{
		Lat:  v.Center.Lat,
		Lng:  v.Center.Lng,
		Zoom: v.Zoom,
	})
}

// ZoomIn streams a +1 zoom step.
func (e *Engine) ZoomIn() error {
	return e.sendEnvelope(streaming.TypeZoom, streaming.ZoomPayload{Delta: 1})
}

// ZoomOut streams a -1 zoom step.
func (e *Engine) ZoomOut() error {
	return e.sendEnvelope(streaming.TypeZoom, streaming.ZoomPayload{Delta: -1})
}

// InvalidateSize streams a layout invalidation.
func (e *Engine) InvalidateSize() error {
	return e.sendEnvelope(streaming.TypeInvalidateSize, struct{}{})
}
