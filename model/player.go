package model

import (
	"reflect"

	"netlobby/socketapi"
)

// Player is one connected client. Its ID equals the id of the socket
// session that created it, so a player lives exactly as long as its
// connection.
type Player struct {
	ID      string
	Name    string
	Data    map[string]interface{}
	IsReady bool
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Data: make(map[string]interface{}),
	}
}

// Update applies the fields present in a player-update payload and reports
// whether anything actually changed. Data keys are merged, never replaced
// wholesale.
func (p *Player) Update(update *socketapi.PlayerUpdate) bool {
	changed := false

	if update.Name != nil && *update.Name != "" && *update.Name != p.Name {
		p.Name = *update.Name
		changed = true
	}

	for k, v := range update.Data {
		if current, ok := p.Data[k]; !ok || !reflect.DeepEqual(current, v) {
			p.Data[k] = v
			changed = true
		}
	}

	if update.IsReady != nil && *update.IsReady != p.IsReady {
		p.IsReady = *update.IsReady
		changed = true
	}

	return changed
}

func (p *Player) Summary() socketapi.PlayerSummary {
	return socketapi.PlayerSummary{
		ID:   p.ID,
		Name: p.Name,
	}
}

func (p *Player) MapToData() socketapi.PlayerData {
	return socketapi.PlayerData{
		ID:      p.ID,
		Name:    p.Name,
		Data:    p.Data,
		IsReady: p.IsReady,
	}
}
