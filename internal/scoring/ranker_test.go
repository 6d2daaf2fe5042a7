package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(name string, combined int, attendancePct float64) Scored {
	return Scored{
		Bundle:               Bundle{StudentID: "id-" + name, DisplayName: name},
		AttendancePercentage: attendancePct,
		CombinedScore:        combined,
	}
}

func TestRankDense(t *testing.T) {
	board := []Scored{
		scored("a", 90, 90),
		scored("b", 90, 80),
		scored("c", 85, 70),
		scored("d", 80, 60),
	}
	Rank(board)

	ranks := []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank}
	assert.Equal(t, []int{1, 1, 2, 3}, ranks)
}

func TestRankTieBreakAttendanceThenName(t *testing.T) {
	board := []Scored{
		scored("Zed", 70, 50),
		scored("amy", 70, 50),
		scored("Bea", 70, 80),
	}
	Rank(board)

	// Bea wins the attendance tie-break; amy beats Zed case-insensitively.
	assert.Equal(t, "Bea", board[0].DisplayName)
	assert.Equal(t, "amy", board[1].DisplayName)
	assert.Equal(t, "Zed", board[2].DisplayName)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 1, board[1].Rank)
	assert.Equal(t, 1, board[2].Rank)
}

func TestRankOrderIndependentOfInput(t *testing.T) {
	forward := []Scored{
		scored("amy", 70, 50),
		scored("bob", 70, 50),
		scored("cat", 70, 50),
	}
	reversed := []Scored{
		scored("cat", 70, 50),
		scored("bob", 70, 50),
		scored("amy", 70, 50),
	}
	Rank(forward)
	Rank(reversed)

	require.Len(t, reversed, 3)
	for i := range forward {
		assert.Equal(t, forward[i].DisplayName, reversed[i].DisplayName)
		assert.Equal(t, forward[i].Rank, reversed[i].Rank)
	}
}

func TestRankMedals(t *testing.T) {
	board := []Scored{
		scored("a", 95, 0),
		scored("b", 90, 0),
		scored("c", 85, 0),
		scored("d", 80, 0),
	}
	Rank(board)

	assert.Equal(t, MedalGold, board[0].Medal)
	assert.Equal(t, MedalSilver, board[1].Medal)
	assert.Equal(t, MedalBronze, board[2].Medal)
	assert.Empty(t, board[3].Medal)
}

func TestRankSharedGoldOnTie(t *testing.T) {
	board := []Scored{
		scored("a", 90, 90),
		scored("b", 90, 80),
		scored("c", 70, 70),
	}
	Rank(board)

	assert.Equal(t, MedalGold, board[0].Medal)
	assert.Equal(t, MedalGold, board[1].Medal)
	assert.Equal(t, MedalSilver, board[2].Medal)
}

func TestRankEmpty(t *testing.T) {
	var board []Scored
	Rank(board)
	assert.Empty(t, board)
}
