package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanStart())
	assert.False(t, StatusInProgress.CanStart())
	assert.False(t, StatusCompleted.CanStart())
	assert.False(t, StatusTimedOut.CanStart())

	assert.True(t, StatusPending.CanSubmit())
	assert.True(t, StatusInProgress.CanSubmit())
	assert.False(t, StatusCompleted.CanSubmit())
	assert.False(t, StatusTimedOut.CanSubmit())

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusTimedOut.Terminal())
}

func TestDifficulty_Valid(t *testing.T) {
	assert.True(t, DifficultyEasy.Valid())
	assert.True(t, DifficultyMedium.Valid())
	assert.True(t, DifficultyHard.Valid())
	assert.False(t, Difficulty("extreme").Valid())
	assert.False(t, Difficulty("").Valid())
}
