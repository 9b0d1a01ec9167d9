package platform

import "strings"

// Platform identifies the host platform for deep-link selection.
type Platform string

const (
	IOS     Platform = "ios"
	Android Platform = "android"
	Other   Platform = "other"
)

// Detector reports the platform mapkit is rendering for. It is a small
// capability interface so tests can substitute a fixed platform instead of
// sniffing a real user agent.
type Detector interface {
	Platform() Platform
}

// Static is a Detector that always reports the same platform.
type Static struct {
	Value Platform
}

// Platform returns the fixed platform value.
func (s Static) Platform() Platform {
	return s.Value
}

// FromUserAgent classifies a browser user-agent string.
func FromUserAgent(ua string) Platform {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return IOS
	case strings.Contains(ua, "android"):
		return Android
	default:
		return Other
	}
}
