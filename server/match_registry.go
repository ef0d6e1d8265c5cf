package server

import (
	"strings"
	"sync"

	"netlobby/model"
	"netlobby/socketapi"
)

// MatchRegistry maintains the live matches keyed by the owning player's id.
type MatchRegistry struct {
	sync.RWMutex
	config  *Config
	matches map[string]*model.Match
}

func NewMatchRegistry(config *Config) *MatchRegistry {
	return &MatchRegistry{
		config:  config,
		matches: make(map[string]*model.Match),
	}
}

// Add validates the create request, constructs the match with owner as its
// first member and registers it. The match id equals owner.ID, so a second
// create from the same connection fails with ErrMatchExists.
func (r *MatchRegistry) Add(request *socketapi.MatchCreate, owner *model.Player) (*model.Match, error) {
	r.Lock()
	defer r.Unlock()

	if len(r.matches) >= r.config.LobbyConfig.MaxMatches {
		return nil, model.ErrMaxMatchesReached
	}

	name := request.Name
	if name == "" {
		return nil, model.ErrMatchNameRequired
	}

	nameMin := r.config.LobbyConfig.MatchNameMinLength
	nameMax := r.config.LobbyConfig.MatchNameMaxLength
	if len(name) < nameMin || len(name) > nameMax {
		return nil, model.ErrMatchNameLength(nameMin, nameMax)
	}

	if request.Password != "" {
		passMin := r.config.LobbyConfig.MatchPasswordMinLength
		passMax := r.config.LobbyConfig.MatchPasswordMaxLength
		if len(request.Password) < passMin || len(request.Password) > passMax {
			return nil, model.ErrMatchPasswordLength(passMin, passMax)
		}
	}

	if r.findByNameLocked(name) != nil {
		return nil, model.ErrMatchNameTaken
	}

	maxPlayers := request.MaxPlayers
	ceiling := r.config.LobbyConfig.MaxPlayersPerMatch
	if maxPlayers < 1 || maxPlayers > ceiling {
		maxPlayers = ceiling
	}

	if _, ok := r.matches[owner.ID]; ok {
		return nil, model.ErrMatchExists
	}

	match := model.NewMatch(owner, name, request.Password, request.IsPrivate, maxPlayers, request.Data)
	r.matches[match.ID] = match

	return match, nil
}

// Remove is a no-op for unknown ids.
func (r *MatchRegistry) Remove(id string) {
	r.Lock()
	delete(r.matches, id)
	r.Unlock()
}

func (r *MatchRegistry) Find(id string) *model.Match {
	r.RLock()
	m := r.matches[id]
	r.RUnlock()
	return m
}

// FindByName matches case-insensitively.
func (r *MatchRegistry) FindByName(name string) *model.Match {
	r.RLock()
	m := r.findByNameLocked(name)
	r.RUnlock()
	return m
}

func (r *MatchRegistry) findByNameLocked(name string) *model.Match {
	for _, m := range r.matches {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

func (r *MatchRegistry) Count() int {
	r.RLock()
	n := len(r.matches)
	r.RUnlock()
	return n
}

// ListVisible returns the summaries of matches open for lobby discovery.
func (r *MatchRegistry) ListVisible() []socketapi.MatchSummary {
	r.RLock()
	defer r.RUnlock()

	list := make([]socketapi.MatchSummary, 0, len(r.matches))
	for _, m := range r.matches {
		if m.IsVisible() {
			list = append(list, m.Summary())
		}
	}
	return list
}
