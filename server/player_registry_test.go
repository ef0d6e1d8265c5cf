package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netlobby/model"
)

func newTestConfig(t *testing.T) *Config {
	config, err := NewConfig()
	require.NoError(t, err)
	return config
}

func TestPlayerRegistryAdd(t *testing.T) {
	r := NewPlayerRegistry(newTestConfig(t))

	p, err := r.Add("p1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, p, r.Find("p1"))
}

func TestPlayerRegistryDuplicateID(t *testing.T) {
	r := NewPlayerRegistry(newTestConfig(t))

	_, err := r.Add("p1", "alice")
	require.NoError(t, err)

	_, err = r.Add("p1", "bob")
	assert.Equal(t, model.ErrPlayerExists, err)
	assert.Equal(t, 1, r.Count())
}

func TestPlayerRegistryNameBounds(t *testing.T) {
	config := newTestConfig(t)
	r := NewPlayerRegistry(config)

	_, err := r.Add("p1", "ab")
	require.Error(t, err)
	assert.EqualError(t, err, "Player name must be between 3 and 32 characters.")

	long := make([]byte, config.LobbyConfig.PlayerNameMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = r.Add("p1", string(long))
	require.Error(t, err)
	assert.Equal(t, 0, r.Count())
}

func TestPlayerRegistryCapacity(t *testing.T) {
	config := newTestConfig(t)
	config.LobbyConfig.MaxPlayers = 2
	r := NewPlayerRegistry(config)

	_, err := r.Add("p1", "alice")
	require.NoError(t, err)
	_, err = r.Add("p2", "bobby")
	require.NoError(t, err)

	_, err = r.Add("p3", "carol")
	assert.Equal(t, model.ErrMaxPlayersReached, err)

	// Capacity is checked before anything else, a bad name at the limit
	// still reports the capacity failure.
	_, err = r.Add("p4", "x")
	assert.Equal(t, model.ErrMaxPlayersReached, err)
}

func TestPlayerRegistryRemoveUnknown(t *testing.T) {
	r := NewPlayerRegistry(newTestConfig(t))
	r.Remove("nope")
	assert.Equal(t, 0, r.Count())
}

func TestPlayerRegistryList(t *testing.T) {
	r := NewPlayerRegistry(newTestConfig(t))

	for i := 0; i < 3; i++ {
		_, err := r.Add(fmt.Sprintf("p%d", i), fmt.Sprintf("player-%d", i))
		require.NoError(t, err)
	}

	list := r.List()
	assert.Len(t, list, 3)
	seen := make(map[string]string)
	for _, s := range list {
		seen[s.ID] = s.Name
	}
	assert.Equal(t, "player-1", seen["p1"])
}
