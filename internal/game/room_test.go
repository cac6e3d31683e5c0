package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestions() []Question {
	return []Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, Correct: 0},
		{Text: "Q2", Options: []string{"a", "b", "c", "d"}, Correct: 2},
	}
}

func TestRoom_Join_CapacityAndIdempotence(t *testing.T) {
	r := NewRoom("AB12C", "host", twoQuestions(), Settings{})

	for i := 0; i < MaxPlayers; i++ {
		joined, err := r.Join(fmt.Sprintf("p%d", i), fmt.Sprintf("user%d", i))
		require.NoError(t, err)
		assert.True(t, joined)
	}
	require.Len(t, r.Players, MaxPlayers)

	// room is full for a new identity
	joined, err := r.Join("p5", "user5")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.False(t, joined)
	assert.Len(t, r.Players, MaxPlayers)

	// but a repeated join by a present identity is a success no-op,
	// even at capacity
	joined, err = r.Join("p0", "someone-else")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Equal(t, "user0", r.Players[0].Username, "re-join must not mutate")
}

func TestRoom_Join_RejectedOnceInProgress(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	_, err := r.Join("p0", "host")
	require.NoError(t, err)

	require.NoError(t, r.Start("p0"))
	_, err = r.Join("late", "late")
	require.NoError(t, err, "joining during countdown is allowed")

	r.BeginQuestions()
	_, err = r.Join("later", "later")
	assert.ErrorIs(t, err, ErrJoinClosed)
}

func TestRoom_Leave_HostMigration(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	for i := 0; i < 3; i++ {
		_, err := r.Join(fmt.Sprintf("p%d", i), fmt.Sprintf("user%d", i))
		require.NoError(t, err)
	}

	res := r.Leave("p0")
	require.True(t, res.Removed)
	assert.Equal(t, "user0", res.Username)
	require.True(t, res.HostChanged)
	assert.Equal(t, "p1", res.NewHostID, "oldest remaining player becomes host")
	assert.Equal(t, "p1", r.HostID)
	assert.False(t, res.Empty)
}

func TestRoom_Leave_NonHostKeepsHost(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	r.Join("p0", "a")
	r.Join("p1", "b")

	res := r.Leave("p1")
	require.True(t, res.Removed)
	assert.False(t, res.HostChanged)
	assert.Equal(t, "p0", r.HostID)
}

func TestRoom_Leave_LastPlayerEmptiesRoom(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	r.Join("p0", "a")

	res := r.Leave("p0")
	require.True(t, res.Removed)
	assert.True(t, res.Empty)
	assert.False(t, res.HostChanged)
}

func TestRoom_Leave_AbsentIsNoOp(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	r.Join("p0", "a")

	res := r.Leave("ghost")
	assert.False(t, res.Removed)
	assert.Len(t, r.Players, 1)
}

func TestRoom_AllReady(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	r.Join("p0", "host")

	// no non-host players: never "all ready"
	assert.False(t, r.AllReady())

	r.Join("p1", "b")
	assert.False(t, r.AllReady())

	require.True(t, r.SetReady("p1", true))
	assert.True(t, r.AllReady())

	// the host's own readiness is never considered
	r.Join("p2", "c")
	assert.False(t, r.AllReady())
	r.SetReady("p0", false)
	r.SetReady("p2", true)
	assert.True(t, r.AllReady())

	r.SetReady("p1", false)
	assert.False(t, r.AllReady())
}

func TestRoom_SetReady_UnknownPlayer(t *testing.T) {
	r := NewRoom("AB12C", "p0", twoQuestions(), Settings{})
	assert.False(t, r.SetReady("ghost", true))
}
