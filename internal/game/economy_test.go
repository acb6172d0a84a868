package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireDebitsShotCost(t *testing.T) {
	sim, rec, stats, syncs := newTestSimulator(FixedCount{Max: 25})
	sim.JoinRoom("room1", "u1", "Alice", 5)

	b, err := sim.Fire("room1", "u1", 700, 650)
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Equal(t, PlayfieldWidth/2, b.StartX)
	assert.Equal(t, PlayfieldHeight-1, b.StartY)
	assert.Equal(t, 500.0, b.Speed)
	assert.Contains(t, b.ID, "bullet_")
	assert.True(t, b.IsActive)

	r, _ := sim.Registry().Get("room1")
	r.mu.Lock()
	balance := r.Players["u1"].Balance
	r.mu.Unlock()
	assert.Equal(t, 4.0, balance)

	assert.Equal(t, 1, rec.count("bullet-fired"))
	assert.Equal(t, 1, rec.count("balance-updated"))

	shots, _, _, _ := stats.snapshot()
	assert.Equal(t, 1, shots)

	syncs.mu.Lock()
	balances := append([]balanceSync(nil), syncs.balances...)
	syncs.mu.Unlock()
	require.Len(t, balances, 1)
	assert.Equal(t, balanceSync{"u1", 4}, balances[0])
}

func TestFireRejectsEmptyBalance(t *testing.T) {
	sim, rec, stats, _ := newTestSimulator(FixedCount{Max: 25})
	sim.JoinRoom("room1", "u1", "Alice", 5)

	r, _ := sim.Registry().Get("room1")
	r.mu.Lock()
	r.Players["u1"].Balance = 0
	r.mu.Unlock()

	b, err := sim.Fire("room1", "u1", 700, 0)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Nil(t, b)

	r.mu.Lock()
	balance := r.Players["u1"].Balance
	bullets := len(r.Bullets)
	r.mu.Unlock()
	assert.Zero(t, balance, "a rejected fire mutates nothing")
	assert.Zero(t, bullets)

	assert.Equal(t, 1, rec.count("insufficient-balance"))
	assert.Zero(t, rec.count("bullet-fired"))
	shots, _, _, _ := stats.snapshot()
	assert.Zero(t, shots)
}

func TestFireRejectsUnknownPlayer(t *testing.T) {
	sim, rec, _, _ := newTestSimulator(FixedCount{Max: 25})

	b, err := sim.Fire("room1", "ghost", 700, 0)
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)
	assert.Nil(t, b)
	assert.Zero(t, rec.count("bullet-fired"))
}

func TestFireLastUnitAllowed(t *testing.T) {
	sim, _, _, _ := newTestSimulator(FixedCount{Max: 25})
	sim.JoinRoom("room1", "u1", "Alice", 1)

	_, err := sim.Fire("room1", "u1", 700, 650)
	require.NoError(t, err)

	r, _ := sim.Registry().Get("room1")
	r.mu.Lock()
	balance := r.Players["u1"].Balance
	r.mu.Unlock()
	assert.Zero(t, balance)

	// The next shot finds the balance exhausted.
	_, err = sim.Fire("room1", "u1", 700, 650)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
