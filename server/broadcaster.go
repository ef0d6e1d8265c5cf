package server

import (
	"sync"

	"github.com/satori/go.uuid"

	"netlobby/socketapi"
)

// LobbyRoom is the group every session outside a match belongs to.
const LobbyRoom = "lobby"

// Broadcaster is the only component that pushes events to sessions. It owns
// the room membership (the lobby plus one room per live match) and exposes
// one emit per event kind, which keeps the command orchestrator transport
// agnostic. Sends are fire and forget, a slow client only ever kills its
// own connection.
type Broadcaster struct {
	sync.RWMutex
	rooms map[string]map[uuid.UUID]Session

	config        *Config
	sessionHolder *SessionHolder
	matches       *MatchRegistry
	logger        *Logger
}

func NewBroadcaster(config *Config, sessionHolder *SessionHolder, matches *MatchRegistry, logger *Logger) *Broadcaster {
	return &Broadcaster{
		rooms:         make(map[string]map[uuid.UUID]Session),
		config:        config,
		sessionHolder: sessionHolder,
		matches:       matches,
		logger:        logger,
	}
}

func (b *Broadcaster) Join(room string, s Session) {
	b.Lock()
	members, ok := b.rooms[room]
	if !ok {
		members = make(map[uuid.UUID]Session)
		b.rooms[room] = members
	}
	members[s.ID()] = s
	b.Unlock()
}

func (b *Broadcaster) Leave(room string, s Session) {
	b.Lock()
	if members, ok := b.rooms[room]; ok {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
	b.Unlock()
}

// LeaveAll drops a session from every room, used on disconnect.
func (b *Broadcaster) LeaveAll(s Session) {
	b.Lock()
	for room, members := range b.rooms {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
	b.Unlock()
}

// LocateSession resolves the live session of a player, nil when the player
// is not connected to this process.
func (b *Broadcaster) LocateSession(playerID string) Session {
	return b.sessionHolder.GetByPlayerID(playerID)
}

func (b *Broadcaster) broadcast(room string, event string, data interface{}) {
	envelope, err := socketapi.NewEnvelope(event, data)
	if err != nil {
		b.logger.Errorw("Could not marshal broadcast data", "event", event, "error", err)
		return
	}

	b.RLock()
	members := make([]Session, 0, len(b.rooms[room]))
	for _, s := range b.rooms[room] {
		members = append(members, s)
	}
	b.RUnlock()

	for _, s := range members {
		_ = s.Send(envelope)
	}
}

// SendTo delivers an event to exactly one session.
func (b *Broadcaster) SendTo(s Session, event string, data interface{}) {
	envelope, err := socketapi.NewEnvelope(event, data)
	if err != nil {
		b.logger.Errorw("Could not marshal unicast data", "event", event, "error", err)
		return
	}
	_ = s.Send(envelope)
}

// EmitChatMessage relays a chat message to a room. Messages at or under the
// configured minimum are dropped, messages over the maximum are truncated.
func (b *Broadcaster) EmitChatMessage(room string, message string, player socketapi.PlayerSummary) {
	if len(message) <= b.config.LobbyConfig.ChatMinLength {
		b.logger.Warnw("Player sent a chat message that is too short", "player", player.ID)
		return
	}

	if max := b.config.LobbyConfig.ChatMaxLength; max > 0 && len(message) > max {
		b.logger.Warnw("Player sent a chat message that is too long", "player", player.ID)
		message = message[:max-3] + "..."
	}

	b.broadcast(room, socketapi.EventChatMessage, socketapi.ChatMessage{
		Message: message,
		Player:  player,
	})
}

func (b *Broadcaster) EmitPlayerJoined(room string, player socketapi.PlayerData) {
	b.broadcast(room, socketapi.EventPlayerJoined, player)
}

func (b *Broadcaster) EmitPlayerLeft(room string, player socketapi.PlayerData) {
	b.broadcast(room, socketapi.EventPlayerLeft, player)
}

func (b *Broadcaster) EmitPlayerKicked(room string, player socketapi.PlayerData) {
	b.broadcast(room, socketapi.EventPlayerKicked, player)
}

func (b *Broadcaster) EmitPlayerUpdated(room string, player interface{}) {
	b.broadcast(room, socketapi.EventPlayerUpdated, player)
}

func (b *Broadcaster) EmitMatchUpdated(room string, match socketapi.MatchData) {
	b.broadcast(room, socketapi.EventMatchUpdated, match)
}

func (b *Broadcaster) EmitMatchStarted(room string) {
	b.broadcast(room, socketapi.EventMatchStarted, nil)
}

func (b *Broadcaster) EmitMatchFinished(room string, finishData socketapi.Relay) {
	b.broadcast(room, socketapi.EventMatchFinished, finishData)
}

func (b *Broadcaster) EmitMatchCanceled(room string) {
	b.broadcast(room, socketapi.EventMatchCanceled, nil)
}

func (b *Broadcaster) EmitTick(target Session, tickData socketapi.Relay) {
	b.SendTo(target, socketapi.EventTick, tickData)
}

func (b *Broadcaster) EmitTock(room string, tockData socketapi.Relay) {
	b.broadcast(room, socketapi.EventTock, tockData)
}

func (b *Broadcaster) EmitTockTo(target Session, tockData socketapi.Relay) {
	b.SendTo(target, socketapi.EventTock, tockData)
}

// EmitMatchesUpdated refreshes the lobby with the currently visible matches.
func (b *Broadcaster) EmitMatchesUpdated() {
	b.broadcast(LobbyRoom, socketapi.EventMatchesUpdated, socketapi.MatchList{
		Matches: b.matches.ListVisible(),
	})
}

// EmitMatchesUpdatedTo sends the visible match list to a single session,
// used when a session is evicted back to the lobby.
func (b *Broadcaster) EmitMatchesUpdatedTo(s Session) {
	b.SendTo(s, socketapi.EventMatchesUpdated, socketapi.MatchList{
		Matches: b.matches.ListVisible(),
	})
}

// ResetRooms moves a session back to the lobby group and out of a match
// room, then refreshes its match list privately.
func (b *Broadcaster) ResetRooms(s Session, matchRoom string) {
	b.Join(LobbyRoom, s)
	b.Leave(matchRoom, s)
	b.EmitMatchesUpdatedTo(s)
}
