package model

import (
	"netlobby/socketapi"
)

// Match is the lifecycle state machine of one session: open until started,
// started until finished, removed when the owner leaves or after it was
// finished. The owner is fixed at construction and never changes.
type Match struct {
	ID         string
	Name       string
	Password   string
	Data       map[string]interface{}
	IsPrivate  bool
	MaxPlayers int
	Owner      string
	IsStarted  bool
	IsFinished bool

	Players        []*Player
	BlockedPlayers []string
}

// NewMatch builds a match already containing its owner. The match id equals
// the owner's player id, which guarantees a connection owns at most one
// match at a time. A match is never observable with an empty roster.
func NewMatch(owner *Player, name, password string, isPrivate bool, maxPlayers int, data map[string]interface{}) *Match {
	if data == nil {
		data = make(map[string]interface{})
	}

	return &Match{
		ID:         owner.ID,
		Name:       name,
		Password:   password,
		Data:       data,
		IsPrivate:  isPrivate,
		MaxPlayers: maxPlayers,
		Owner:      owner.ID,
		Players:    []*Player{owner},
	}
}

// Room is the transport group name all members of this match belong to.
func (m *Match) Room() string {
	return "match_" + m.ID
}

func (m *Match) NumPlayers() int {
	return len(m.Players)
}

func (m *Match) IsProtected() bool {
	return m.Password != ""
}

// IsVisible reports whether the match is listed in lobby discovery. Private,
// started and finished matches are not joinable and therefore hidden.
func (m *Match) IsVisible() bool {
	return !m.IsPrivate && !m.IsStarted && !m.IsFinished
}

func (m *Match) IsOwner(playerID string) bool {
	return m.Owner == playerID
}

func (m *Match) HasPlayer(playerID string) bool {
	for _, p := range m.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (m *Match) IsBlocked(playerID string) bool {
	for _, id := range m.BlockedPlayers {
		if id == playerID {
			return true
		}
	}
	return false
}

// AuthorizeJoin runs the join checks in their protocol order. The order is
// observable, each failure carries a distinct client message: password
// before capacity before block.
func (m *Match) AuthorizeJoin(password, playerID string) error {
	if m.Password != "" && m.Password != password {
		return ErrPasswordMismatch
	}

	if m.NumPlayers() >= m.MaxPlayers {
		return ErrMatchFull
	}

	if m.IsBlocked(playerID) {
		return ErrPlayerBlocked
	}

	return nil
}

// AddPlayer appends to the roster. The owner was added at construction, so
// join order is preserved with the owner always first.
func (m *Match) AddPlayer(p *Player) {
	m.Players = append(m.Players, p)
}

// RemovePlayer deletes from the roster only. It never touches the owner or
// the block list.
func (m *Match) RemovePlayer(playerID string) {
	for i, p := range m.Players {
		if p.ID == playerID {
			m.Players = append(m.Players[:i], m.Players[i+1:]...)
			return
		}
	}
}

// KickPlayer permanently bans the player from this match instance and
// removes it from the roster. There is no unblock.
func (m *Match) KickPlayer(playerID string) {
	if !m.IsBlocked(playerID) {
		m.BlockedPlayers = append(m.BlockedPlayers, playerID)
	}
	m.RemovePlayer(playerID)
}

// AllPlayersReady reports whether the match can be started.
func (m *Match) AllPlayersReady() bool {
	for _, p := range m.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (m *Match) Summary() socketapi.MatchSummary {
	return socketapi.MatchSummary{
		ID:          m.ID,
		Name:        m.Name,
		IsPrivate:   m.IsPrivate,
		IsProtected: m.IsProtected(),
		NumPlayers:  m.NumPlayers(),
		MaxPlayers:  m.MaxPlayers,
	}
}

func (m *Match) MapToData() socketapi.MatchData {
	players := make([]socketapi.PlayerData, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p.MapToData())
	}

	return socketapi.MatchData{
		ID:          m.ID,
		Name:        m.Name,
		Data:        m.Data,
		IsPrivate:   m.IsPrivate,
		IsProtected: m.IsProtected(),
		NumPlayers:  m.NumPlayers(),
		MaxPlayers:  m.MaxPlayers,
		Players:     players,
	}
}
