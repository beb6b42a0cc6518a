package ws

import (
	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/overlay"
	"chosenoffset.com/roam/internal/proximity"
)

// ProtocolVersion is stamped on every server message.
const ProtocolVersion = 1

// Server message types.
const (
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeEvent   = "event"
	TypeError   = "error"
)

// Client message types.
const (
	TypeKeyDown      = "keyDown"
	TypeKeyUp        = "keyUp"
	TypeShow         = "show"
	TypeClose        = "close"
	TypeOpenGallery  = "openGallery"
	TypeCloseGallery = "closeGallery"
)

type clientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
	ID   string `json:"id,omitempty"`
}

type landmarkView struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	Color         string     `json:"color,omitempty"`
	Position      [3]float64 `json:"position"`
	EnterRadius   float64    `json:"enterRadius"`
	FalloffRadius float64    `json:"falloffRadius"`
}

func viewLandmarks(landmarks []proximity.Landmark) []landmarkView {
	out := make([]landmarkView, 0, len(landmarks))
	for _, l := range landmarks {
		out = append(out, landmarkView{
			ID:            l.ID,
			Label:         l.Label,
			Color:         l.Color,
			Position:      [3]float64(l.Position),
			EnterRadius:   l.EnterRadius,
			FalloffRadius: l.FalloffRadius,
		})
	}
	return out
}

type welcomeMessage struct {
	Ver       int              `json:"ver"`
	Type      string           `json:"type"`
	ClientID  string           `json:"clientId"`
	Boundary  float64          `json:"boundary"`
	Landmarks []landmarkView   `json:"landmarks"`
	Frame     controller.Frame `json:"frame"`
}

type frameMessage struct {
	Ver   int              `json:"ver"`
	Type  string           `json:"type"`
	Frame controller.Frame `json:"frame"`
}

type eventMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	Event      string `json:"event"`
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body,omitempty"`
	IsFirst    bool   `json:"isFirst,omitempty"`
	VisitCount int    `json:"visitCount,omitempty"`
}

func newEventMessage(ev overlay.Event) eventMessage {
	return eventMessage{
		Ver:        ProtocolVersion,
		Type:       TypeEvent,
		Event:      ev.Type.String(),
		ID:         ev.ID,
		Title:      ev.Content.Title,
		Body:       ev.Content.Body,
		IsFirst:    ev.IsFirst,
		VisitCount: ev.VisitCount,
	}
}

type errorMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Message string `json:"message"`
}
