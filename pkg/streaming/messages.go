package streaming

import "encoding/json"

// Message type constants for the map streaming protocol. A browser-side
// applier receives these envelopes and mirrors each mutation onto its local
// rendering surface.
const (
	TypeHello          = "hello"
	TypeSetBaseLayer   = "set_base_layer"
	TypeSetOverlay     = "set_overlay"
	TypeRemoveOverlay  = "remove_overlay"
	TypeUpsertMarker   = "upsert_marker"
	TypeClearMarkers   = "clear_markers"
	TypeUserLocation   = "user_location"
	TypeClearUser      = "clear_user_location"
	TypeSetView        = "set_view"
	TypeFlyTo          = "fly_to"
	TypeZoom           = "zoom"
	TypeInvalidateSize = "invalidate_size"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the applier's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload identifies the streaming client session.
type HelloPayload struct {
	ClientID string `json:"clientId"`
	Version  string `json:"version"`
}

// BaseLayerPayload selects the active base imagery.
type BaseLayerPayload struct {
	ID          string `json:"id"`
	URLTemplate string `json:"urlTemplate"`
}

// OverlayPayload attaches or updates an overlay tile layer.
type OverlayPayload struct {
	ID          string `json:"id"`
	URLTemplate string `json:"urlTemplate"`
	Visible     bool   `json:"visible"`
}

// RemoveOverlayPayload detaches an overlay.
type RemoveOverlayPayload struct {
	ID string `json:"id"`
}

// MarkerPayload carries one venue pin.
type MarkerPayload struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Icon      string  `json:"icon"`
	Title     string  `json:"title"`
	PopupHTML string  `json:"popupHtml"`
}

// UserLocationPayload carries the user marker and its accuracy circle.
type UserLocationPayload struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// ViewPayload carries a view change (set_view or fly_to).
type ViewPayload struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom"`
}

// ZoomPayload carries a relative zoom step.
type ZoomPayload struct {
	Delta int `json:"delta"`
}
