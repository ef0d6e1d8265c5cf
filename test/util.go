package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"netlobby/server"
	"netlobby/socketapi"
)

const testPort = 7950

// Stat views and the listener port are process wide, so every test shares
// one server instance.
var (
	serverOnce sync.Once
	testServer *server.Server
)

func StartTestServer(t *testing.T) {
	serverOnce.Do(func() {
		config, err := server.NewConfig()
		if err != nil {
			t.Fatal("Error while loading configurations", err)
		}
		config.Port = testPort

		logger := server.NewNopLogger()
		stats := server.NewStatsHolder()
		sessionHolder := server.NewSessionHolder(config)
		players := server.NewPlayerRegistry(config)
		matches := server.NewMatchRegistry(config)
		broadcaster := server.NewBroadcaster(config, sessionHolder, matches, logger)
		pipeline := server.NewPipeline(config, logger, stats, players, matches, broadcaster)

		testServer = server.StartServer(sessionHolder, pipeline, players, matches, config, stats, logger)

		waitForServer(t)
	})
}

func waitForServer(t *testing.T) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", testPort))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("Server did not become ready in time")
}

func CreateSocketConn(t *testing.T) (*websocket.Conn, chan []byte) {
	c, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://localhost:%d/ws", testPort), nil)
	if err != nil {
		t.Fatal(err)
	}

	onMessageChan := make(chan []byte, 16)

	go func() {
		defer close(onMessageChan)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				//Even if connection was closed or error occured we should break the loop
				break
			}
			onMessageChan <- message
		}
	}()

	return c, onMessageChan
}

func WriteMessage(t *testing.T, client *websocket.Conn, envelope *socketapi.Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatal("Could not marshal envelope", err)
	}

	if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatal(err)
	}
}

func ReadMessage(t *testing.T, onMessageChan chan []byte) socketapi.Envelope {
	var env socketapi.Envelope

	select {
	case payload, ok := <-onMessageChan:
		if !ok {
			t.Fatal("Connection was closed while waiting for a message")
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatal("Could not unmarshal envelope", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out while waiting for a message")
	}

	return env
}

// ReadUntil skips unrelated events until the wanted one arrives.
func ReadUntil(t *testing.T, onMessageChan chan []byte, event string) socketapi.Envelope {
	for {
		env := ReadMessage(t, onMessageChan)
		if env.Event == event {
			return env
		}
	}
}

// ReadReply skips broadcasts until the reply carrying the correlation id
// arrives.
func ReadReply(t *testing.T, onMessageChan chan []byte, cid string) socketapi.Envelope {
	for {
		env := ReadMessage(t, onMessageChan)
		if env.Cid == cid {
			return env
		}
	}
}

// WrapDoc encodes a payload document the way clients send it, as a JSON
// string inside the envelope data.
func WrapDoc(t *testing.T, doc interface{}) json.RawMessage {
	payload, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func DecodeData(t *testing.T, env socketapi.Envelope, out interface{}) {
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatal("Could not unmarshal event data", err)
	}
}

// Connect opens a socket and consumes the init event.
func Connect(t *testing.T) (*websocket.Conn, chan []byte, socketapi.Init) {
	conn, onMessageChan := CreateSocketConn(t)

	env := ReadUntil(t, onMessageChan, "init")
	var init socketapi.Init
	DecodeData(t, env, &init)

	return conn, onMessageChan, init
}
