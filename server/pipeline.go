package server

import (
	"sync"

	"github.com/satori/go.uuid"

	"netlobby/model"
	"netlobby/socketapi"
)

// Pipeline turns inbound envelopes into registry and match operations. A
// single mutex serializes every command handler, so a handler's lookups,
// validation, mutation and broadcast enqueues are atomic relative to all
// other commands. Broadcast sends are buffered channel writes and never
// block under the lock.
type Pipeline struct {
	sync.Mutex
	config      *Config
	logger      *Logger
	stats       *Stats
	players     *PlayerRegistry
	matches     *MatchRegistry
	broadcaster *Broadcaster

	connections map[uuid.UUID]*Connection
}

func NewPipeline(config *Config, logger *Logger, stats *Stats, players *PlayerRegistry, matches *MatchRegistry, broadcaster *Broadcaster) *Pipeline {
	return &Pipeline{
		config:      config,
		logger:      logger,
		stats:       stats,
		players:     players,
		matches:     matches,
		broadcaster: broadcaster,

		connections: make(map[uuid.UUID]*Connection),
	}
}

// Register binds an accepted session to its player, puts it in the lobby
// and sends the init event.
func (p *Pipeline) Register(session Session, player *model.Player) *Connection {
	p.Lock()
	defer p.Unlock()

	c := &Connection{
		pipeline: p,
		session:  session,
		player:   player,
	}
	p.connections[session.ID()] = c

	p.broadcaster.SendTo(session, socketapi.EventInit, socketapi.Init{
		Player:   player.MapToData(),
		Matches:  p.matches.ListVisible(),
		Settings: p.config.Settings(),
	})
	p.broadcaster.Join(LobbyRoom, session)

	return c
}

func (p *Pipeline) handleSocketRequests(session Session, envelope *socketapi.Envelope) bool {
	p.Lock()
	defer p.Unlock()

	c := p.connections[session.ID()]
	if c == nil {
		p.logger.Warnw("Received message from unregistered session", "sessionID", session.ID().String())
		return false
	}

	switch envelope.Event {
	case socketapi.EventChatMessage:
		c.chatMessage(envelope)
	case socketapi.EventMatchCreate:
		c.createMatch(envelope)
	case socketapi.EventMatchJoin:
		c.joinMatch(envelope)
	case socketapi.EventMatchLeave:
		c.leaveMatch()
	case socketapi.EventMatchStart:
		c.startMatch()
	case socketapi.EventMatchFinish:
		c.finishMatch(envelope)
	case socketapi.EventPlayerUpdate:
		c.updatePlayer(envelope)
	case socketapi.EventPlayerKick:
		c.kickPlayer(envelope)
	case socketapi.EventTick:
		c.tick(envelope)
	case socketapi.EventTock:
		c.tock(envelope)
	default:
		// The envelope was valid but the event is unknown. Usually caused by
		// a version mismatch, the command is dropped and the session kept.
		p.logger.Warnw("Unrecognizable payload received", "event", envelope.Event, "sessionID", session.ID().String())
		c.replyError(envelope.Cid, model.ErrInvalidPayload)
	}

	return true
}

// handleDisconnect runs the full leave cleanup before deregistering the
// player, so broadcasts referencing the departing player still see a
// consistent roster.
func (p *Pipeline) handleDisconnect(session Session) {
	p.Lock()
	defer p.Unlock()

	c := p.connections[session.ID()]
	if c == nil {
		return
	}

	c.disconnect()
	delete(p.connections, session.ID())
}

// cancelMatch announces the cancellation to the match room and removes the
// match. Used when the owner leaves before finishing.
func (p *Pipeline) cancelMatch(match *model.Match) {
	p.broadcaster.EmitMatchCanceled(match.Room())
	p.removeMatch(match)
}

// removeMatch evicts every member session back to the lobby and drops the
// match from the registry.
func (p *Pipeline) removeMatch(match *model.Match) {
	wasVisible := match.IsVisible()

	for _, member := range match.Players {
		s := p.broadcaster.LocateSession(member.ID)
		if s == nil {
			continue
		}
		if mc := p.connections[s.ID()]; mc != nil {
			p.resetConnection(mc)
		}
	}

	p.matches.Remove(match.ID)
	p.stats.DecrMatch()

	if wasVisible {
		p.broadcaster.EmitMatchesUpdated()
	}
}

// resetConnection forces a session back to the lobby: lobby group joined,
// match room left, current match cleared, readiness reset, and a private
// match list refresh sent.
func (p *Pipeline) resetConnection(c *Connection) {
	if c.match == nil {
		return
	}

	room := c.match.Room()
	c.match = nil
	c.player.IsReady = false
	p.broadcaster.ResetRooms(c.session, room)
}
