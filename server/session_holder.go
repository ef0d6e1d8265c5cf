package server

import (
	"sync"

	"github.com/satori/go.uuid"

	"netlobby/socketapi"
)

// Session is the transport side of one connected client. The lobby core only
// ever talks to this interface, which keeps it testable without sockets.
type Session interface {
	ID() uuid.UUID
	PlayerID() string
	ClientIP() string
	ClientPort() string

	Consume(handlerFunc func(session Session, envelope *socketapi.Envelope) bool)
	Send(envelope *socketapi.Envelope) error
	SendBytes(payload []byte) error

	Close()
	IsClosed() bool
}

// SessionHolder maintains a thread-safe list of sessions to their IDs.
type SessionHolder struct {
	sync.RWMutex
	sessions map[uuid.UUID]Session
	config   *Config
}

func NewSessionHolder(config *Config) *SessionHolder {
	return &SessionHolder{
		sessions: make(map[uuid.UUID]Session),
		config:   config,
	}
}

func (r *SessionHolder) Get(sessionID uuid.UUID) Session {
	var s Session
	r.RLock()
	s = r.sessions[sessionID]
	r.RUnlock()
	return s
}

// GetByPlayerID resolves a session from a player id. Player ids are the
// string form of session ids, unknown or malformed ids yield nil.
func (r *SessionHolder) GetByPlayerID(playerID string) Session {
	sessionID, err := uuid.FromString(playerID)
	if err != nil {
		return nil
	}
	return r.Get(sessionID)
}

func (r *SessionHolder) add(s Session) {
	r.Lock()
	r.sessions[s.ID()] = s
	r.Unlock()
}

func (r *SessionHolder) remove(sessionID uuid.UUID) {
	r.Lock()
	delete(r.sessions, sessionID)
	r.Unlock()
}
