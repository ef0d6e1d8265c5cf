package socketapi

import "encoding/json"

// Client command events.
const (
	EventChatMessage  = "chat-message"
	EventMatchCreate  = "match-create"
	EventMatchJoin    = "match-join"
	EventMatchLeave   = "match-leave"
	EventMatchStart   = "match-start"
	EventMatchFinish  = "match-finish"
	EventPlayerUpdate = "player-update"
	EventPlayerKick   = "player-kick"
	EventTick         = "tick"
	EventTock         = "tock"
)

// Server events.
const (
	EventInit           = "init"
	EventError          = "error"
	EventPlayerJoined   = "player-joined"
	EventPlayerLeft     = "player-left"
	EventPlayerKicked   = "player-kicked"
	EventPlayerUpdated  = "player-updated"
	EventMatchUpdated   = "match-updated"
	EventMatchStarted   = "match-started"
	EventMatchFinished  = "match-finished"
	EventMatchCanceled  = "match-canceled"
	EventMatchesUpdated = "matches-updated"
)

// Envelope is the single frame type exchanged over a socket connection.
// Commands that expect an acknowledgement carry a non empty Cid and the
// server answers with the same Cid. Data of parse carrying commands is a
// JSON encoded string holding the payload document.
type Envelope struct {
	Cid   string          `json:"cid,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, data interface{}) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// UnwrapPayload extracts the opaque payload string commands carry in Data.
func UnwrapPayload(data json.RawMessage) (string, error) {
	var payload string
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	return payload, nil
}
