package socketapi

import "encoding/json"

// PlayerSummary is the roster entry other players are allowed to see.
type PlayerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerData is the full view a player has of themselves and of the
// members of their current match.
type PlayerData struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Data    map[string]interface{} `json:"data"`
	IsReady bool                   `json:"isReady"`
}

// MatchSummary is the lobby listing entry. It never exposes the roster,
// the password or the opaque match data.
type MatchSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsPrivate   bool   `json:"isPrivate"`
	IsProtected bool   `json:"isProtected"`
	NumPlayers  int    `json:"numPlayers"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// MatchData is the full view returned to match members.
type MatchData struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Data        map[string]interface{} `json:"data"`
	IsPrivate   bool                   `json:"isPrivate"`
	IsProtected bool                   `json:"isProtected"`
	NumPlayers  int                    `json:"numPlayers"`
	MaxPlayers  int                    `json:"maxPlayers"`
	Players     []PlayerData           `json:"players"`
}

// MatchCreate is the parsed payload of a match-create command.
type MatchCreate struct {
	Name       string                 `json:"name"`
	Password   string                 `json:"password"`
	IsPrivate  bool                   `json:"isPrivate"`
	MaxPlayers int                    `json:"maxPlayers"`
	Data       map[string]interface{} `json:"data"`
}

// MatchJoin is the parsed payload of a match-join command.
type MatchJoin struct {
	Match    string `json:"match"`
	Password string `json:"password"`
}

// PlayerUpdate is the parsed payload of a player-update command. Pointer
// fields distinguish "absent" from zero values.
type PlayerUpdate struct {
	Name    *string                `json:"name"`
	Data    map[string]interface{} `json:"data"`
	IsReady *bool                  `json:"isReady"`
}

// ChatMessage is broadcast to the sender's current room.
type ChatMessage struct {
	Message string        `json:"message"`
	Player  PlayerSummary `json:"player"`
}

// MatchList is the payload of matches-updated events.
type MatchList struct {
	Matches []MatchSummary `json:"matches"`
}

// Settings is handed to every client in the init event so it can validate
// input before sending commands.
type Settings struct {
	ChatMinLength          int `json:"chatMinLength"`
	ChatMaxLength          int `json:"chatMaxLength"`
	MatchNameMinLength     int `json:"matchNameMinLength"`
	MatchNameMaxLength     int `json:"matchNameMaxLength"`
	MatchPasswordMinLength int `json:"matchPasswordMinLength"`
	MatchPasswordMaxLength int `json:"matchPasswordMaxLength"`
	PlayerNameMinLength    int `json:"playerNameMinLength"`
	PlayerNameMaxLength    int `json:"playerNameMaxLength"`
	MaxPlayersPerMatch     int `json:"maxPlayersPerMatch"`
}

// Init is the first event a session receives after the connection was
// accepted.
type Init struct {
	Player   PlayerData     `json:"player"`
	Matches  []MatchSummary `json:"matches"`
	Settings Settings       `json:"settings"`
}

// Status is the admin view of the server, also exposed on the HTTP API.
type Status struct {
	NumPlayers int             `json:"numPlayers"`
	MaxPlayers int             `json:"maxPlayers"`
	NumMatches int             `json:"numMatches"`
	MaxMatches int             `json:"maxMatches"`
	Players    []PlayerSummary `json:"players"`
}

// Relay is the shape of tick and tock payloads after the server tagged
// them with the sender. The original document keys are preserved.
type Relay map[string]interface{}

// ParseRelay decodes a tick/tock payload document.
func ParseRelay(payload string) (Relay, error) {
	relay := Relay{}
	if err := json.Unmarshal([]byte(payload), &relay); err != nil {
		return nil, err
	}
	return relay, nil
}
