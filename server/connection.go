package server

import (
	"encoding/json"

	"netlobby/model"
	"netlobby/socketapi"
)

// Connection binds one live session to its player and, optionally, the
// match it currently belongs to. It is owned by the pipeline and only ever
// touched under the pipeline lock. The current match reference lives here,
// never on the transport session.
type Connection struct {
	pipeline *Pipeline
	session  Session
	player   *model.Player
	match    *model.Match
}

func (c *Connection) inMatch() bool {
	return c.match != nil
}

func (c *Connection) isOwner() bool {
	return c.inMatch() && c.match.IsOwner(c.player.ID)
}

func (c *Connection) isGuest() bool {
	return c.inMatch() && !c.match.IsOwner(c.player.ID)
}

// room is the session's current broadcast group.
func (c *Connection) room() string {
	if c.inMatch() {
		return c.match.Room()
	}
	return LobbyRoom
}

// reply answers a command that carried a correlation id. Commands without
// one have no reply channel and never learn about failures.
func (c *Connection) reply(cid string, event string, data interface{}) {
	if cid == "" {
		return
	}

	envelope, err := socketapi.NewEnvelope(event, data)
	if err != nil {
		c.pipeline.logger.Errorw("Could not marshal reply", "event", event, "error", err)
		return
	}
	envelope.Cid = cid

	_ = c.session.Send(envelope)
}

func (c *Connection) replyError(cid string, err error) {
	if cid == "" {
		c.pipeline.logger.Warnw("Command failed without reply channel", "player", c.player.ID, "error", err.Error())
		return
	}
	c.reply(cid, socketapi.EventError, "ERROR: "+err.Error())
}

func (c *Connection) chatMessage(envelope *socketapi.Envelope) {
	message, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	c.pipeline.broadcaster.EmitChatMessage(c.room(), message, c.player.Summary())
}

func (c *Connection) createMatch(envelope *socketapi.Envelope) {
	if c.inMatch() {
		c.replyError(envelope.Cid, model.ErrAlreadyInMatch)
		return
	}

	payload, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.replyError(envelope.Cid, model.ErrInvalidPayload)
		return
	}

	request := &socketapi.MatchCreate{}
	if err := json.Unmarshal([]byte(payload), request); err != nil {
		c.replyError(envelope.Cid, model.ErrInvalidPayload)
		return
	}

	match, err := c.pipeline.matches.Add(request, c.player)
	if err != nil {
		c.replyError(envelope.Cid, err)
		return
	}

	c.pipeline.stats.IncrMatch()

	c.match = match
	c.pipeline.broadcaster.Leave(LobbyRoom, c.session)
	c.pipeline.broadcaster.Join(match.Room(), c.session)

	if match.IsVisible() {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}

	c.reply(envelope.Cid, socketapi.EventMatchCreate, match.MapToData())

	c.pipeline.logger.Infow("Match was created", "match", match.ID, "name", match.Name, "owner", c.player.ID)
}

func (c *Connection) joinMatch(envelope *socketapi.Envelope) {
	if c.inMatch() {
		c.replyError(envelope.Cid, model.ErrAlreadyInMatch)
		return
	}

	payload, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.replyError(envelope.Cid, model.ErrInvalidPayload)
		return
	}

	request := &socketapi.MatchJoin{}
	if err := json.Unmarshal([]byte(payload), request); err != nil {
		c.replyError(envelope.Cid, model.ErrInvalidPayload)
		return
	}

	match := c.pipeline.matches.Find(request.Match)
	if match == nil {
		c.replyError(envelope.Cid, model.ErrMatchNotFound)
		return
	}

	if err := match.AuthorizeJoin(request.Password, c.player.ID); err != nil {
		c.replyError(envelope.Cid, err)
		return
	}

	match.AddPlayer(c.player)

	// Announced to the existing members first, the joiner receives the full
	// match view on the reply channel instead.
	c.pipeline.broadcaster.EmitPlayerJoined(match.Room(), c.player.MapToData())
	c.pipeline.broadcaster.EmitMatchUpdated(match.Room(), match.MapToData())

	c.match = match
	c.pipeline.broadcaster.Leave(LobbyRoom, c.session)
	c.pipeline.broadcaster.Join(match.Room(), c.session)

	if match.IsVisible() {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}

	c.reply(envelope.Cid, socketapi.EventMatchJoin, match.MapToData())
}

func (c *Connection) leaveMatch() {
	if !c.inMatch() {
		c.pipeline.logger.Infow("Player is not in a match", "player", c.player.ID)
		return
	}

	if c.isOwner() {
		// The owner's departure ends the match for everyone. A finished
		// match is removed quietly, anything earlier is a cancellation.
		if c.match.IsFinished {
			c.pipeline.removeMatch(c.match)
		} else {
			c.pipeline.cancelMatch(c.match)
		}
		return
	}

	match := c.match
	room := match.Room()
	wasVisible := match.IsVisible()
	playerData := c.player.MapToData()

	match.RemovePlayer(c.player.ID)
	c.pipeline.resetConnection(c)

	c.pipeline.broadcaster.EmitPlayerLeft(room, playerData)
	c.pipeline.broadcaster.EmitMatchUpdated(room, match.MapToData())

	if wasVisible {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}
}

func (c *Connection) startMatch() {
	if !c.isOwner() {
		c.pipeline.logger.Warnw("Player tried to start a match without permission", "player", c.player.ID)
		return
	}

	if c.match.IsStarted {
		c.pipeline.logger.Warnw("Match is already started", "match", c.match.ID)
		return
	}

	if !c.match.AllPlayersReady() {
		c.pipeline.logger.Warnw("Match cannot be started because not all players are ready", "match", c.match.ID)
		return
	}

	wasVisible := c.match.IsVisible()
	c.match.IsStarted = true

	c.pipeline.broadcaster.EmitMatchStarted(c.match.Room())
	if wasVisible {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}
}

func (c *Connection) finishMatch(envelope *socketapi.Envelope) {
	var finishData socketapi.Relay
	if len(envelope.Data) > 0 {
		payload, err := socketapi.UnwrapPayload(envelope.Data)
		if err != nil {
			c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
			return
		}
		if payload != "" {
			if finishData, err = socketapi.ParseRelay(payload); err != nil {
				c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
				return
			}
		}
	}

	if !c.isOwner() {
		c.pipeline.logger.Warnw("Player tried to finish a match without permission", "player", c.player.ID)
		return
	}

	if !c.match.IsStarted {
		c.pipeline.logger.Warnw("Match is not started", "match", c.match.ID)
		return
	}

	c.match.IsFinished = true

	c.pipeline.broadcaster.EmitMatchFinished(c.match.Room(), finishData)
	if c.match.IsVisible() {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}
}

func (c *Connection) kickPlayer(envelope *socketapi.Envelope) {
	targetID, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	if !c.isOwner() {
		c.pipeline.logger.Warnw("Player tried to kick without permission", "player", c.player.ID, "target", targetID)
		return
	}

	if !c.match.HasPlayer(targetID) {
		c.pipeline.logger.Warnw("Player is not in the match", "match", c.match.ID, "target", targetID)
		return
	}

	if targetID == c.player.ID {
		c.pipeline.logger.Warnw("Player cannot kick self", "player", c.player.ID)
		return
	}

	match := c.match
	room := match.Room()
	wasVisible := match.IsVisible()
	kicked := c.pipeline.players.Find(targetID)

	match.KickPlayer(targetID)

	if s := c.pipeline.broadcaster.LocateSession(targetID); s != nil {
		if tc := c.pipeline.connections[s.ID()]; tc != nil {
			c.pipeline.resetConnection(tc)
		}
		if kicked != nil {
			c.pipeline.broadcaster.SendTo(s, socketapi.EventPlayerKicked, kicked.Summary())
		}
	}

	if kicked != nil {
		c.pipeline.broadcaster.EmitPlayerKicked(room, kicked.MapToData())
	}
	c.pipeline.broadcaster.EmitMatchUpdated(room, match.MapToData())

	if wasVisible {
		c.pipeline.broadcaster.EmitMatchesUpdated()
	}
}

func (c *Connection) updatePlayer(envelope *socketapi.Envelope) {
	payload, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	update := &socketapi.PlayerUpdate{}
	if err := json.Unmarshal([]byte(payload), update); err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	if !c.player.Update(update) {
		return
	}

	if c.inMatch() {
		c.pipeline.broadcaster.EmitPlayerUpdated(c.room(), c.player.MapToData())
		c.pipeline.broadcaster.EmitMatchUpdated(c.room(), c.match.MapToData())
	} else {
		c.pipeline.broadcaster.EmitPlayerUpdated(c.room(), c.player.Summary())
	}
}

func (c *Connection) tick(envelope *socketapi.Envelope) {
	if !c.isGuest() {
		c.pipeline.logger.Warnw("Player tried to send tick without permission", "player", c.player.ID)
		return
	}

	payload, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	tickData, err := socketapi.ParseRelay(payload)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}
	tickData["player"] = c.player.ID

	owner := c.pipeline.broadcaster.LocateSession(c.match.Owner)
	if owner == nil {
		c.pipeline.logger.Warnw("Match owner has no live session", "match", c.match.ID)
		return
	}

	c.pipeline.broadcaster.EmitTick(owner, tickData)
}

func (c *Connection) tock(envelope *socketapi.Envelope) {
	if !c.isOwner() {
		c.pipeline.logger.Warnw("Player tried to send tock without permission", "player", c.player.ID)
		return
	}

	payload, err := socketapi.UnwrapPayload(envelope.Data)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}

	tockData, err := socketapi.ParseRelay(payload)
	if err != nil {
		c.pipeline.logger.Errorw("Invalid data received", "player", c.player.ID, "error", err)
		return
	}
	tockData["player"] = c.player.ID

	// A tock addressed to a single member is relayed unicast, everything
	// else goes to the whole match room.
	if to, ok := tockData["to"].(string); ok && to != "" {
		delete(tockData, "to")

		target := c.pipeline.broadcaster.LocateSession(to)
		if target == nil {
			c.pipeline.logger.Warnw("Tock recipient has no live session", "match", c.match.ID, "target", to)
			return
		}

		c.pipeline.broadcaster.EmitTockTo(target, tockData)
		return
	}

	c.pipeline.broadcaster.EmitTock(c.match.Room(), tockData)
}

// disconnect runs when the transport connection is gone. It behaves like a
// match-leave followed by deregistration.
func (c *Connection) disconnect() {
	c.leaveMatch()
	c.pipeline.players.Remove(c.player.ID)
	c.pipeline.broadcaster.LeaveAll(c.session)

	c.pipeline.logger.Infow("Player disconnected", "player", c.player.ID)
}
