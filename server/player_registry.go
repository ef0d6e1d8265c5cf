package server

import (
	"sync"

	"netlobby/model"
	"netlobby/socketapi"
)

// PlayerRegistry maintains the set of connected players keyed by their
// session id. Capacity and name bounds come from configuration.
type PlayerRegistry struct {
	sync.RWMutex
	config  *Config
	players map[string]*model.Player
}

func NewPlayerRegistry(config *Config) *PlayerRegistry {
	return &PlayerRegistry{
		config:  config,
		players: make(map[string]*model.Player),
	}
}

func (r *PlayerRegistry) Add(id, name string) (*model.Player, error) {
	r.Lock()
	defer r.Unlock()

	if len(r.players) >= r.config.LobbyConfig.MaxPlayers {
		return nil, model.ErrMaxPlayersReached
	}

	min := r.config.LobbyConfig.PlayerNameMinLength
	max := r.config.LobbyConfig.PlayerNameMaxLength
	if len(name) < min || len(name) > max {
		return nil, model.ErrPlayerNameLength(min, max)
	}

	if _, ok := r.players[id]; ok {
		return nil, model.ErrPlayerExists
	}

	player := model.NewPlayer(id, name)
	r.players[id] = player

	return player, nil
}

// Remove is a no-op for unknown ids.
func (r *PlayerRegistry) Remove(id string) {
	r.Lock()
	delete(r.players, id)
	r.Unlock()
}

func (r *PlayerRegistry) Find(id string) *model.Player {
	r.RLock()
	p := r.players[id]
	r.RUnlock()
	return p
}

func (r *PlayerRegistry) Count() int {
	r.RLock()
	n := len(r.players)
	r.RUnlock()
	return n
}

// List returns player summaries, id and name only.
func (r *PlayerRegistry) List() []socketapi.PlayerSummary {
	r.RLock()
	defer r.RUnlock()

	list := make([]socketapi.PlayerSummary, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p.Summary())
	}
	return list
}
