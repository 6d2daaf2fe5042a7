package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

func bundle(name string, present, total int, progress float64, points int) Bundle {
	return Bundle{
		StudentID:   "id-" + name,
		DisplayName: name,
		Email:       name + "@bytezen.dev",
		Attendance:  Attendance{Present: present, Total: total},
		Progress:    Progress{Percentage: progress},
		Points:      Points{Raw: points},
	}
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights.Validate())
	require.NoError(t, Weights{Attendance: 1.0 / 3, Progress: 1.0 / 3, Points: 1.0 / 3}.Validate())

	err := Weights{Attendance: 0.5, Progress: 0.5, Points: 0.5}.Validate()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)

	err = Weights{Attendance: 1.5, Progress: -0.25, Points: -0.25}.Validate()
	require.Error(t, err)
}

func TestAttendanceScoreZeroTotal(t *testing.T) {
	score := AttendanceScore(bundle("carol", 0, 0, 0, 0))
	assert.Equal(t, 0.0, score)
}

func TestAttendanceScoreRatio(t *testing.T) {
	assert.InDelta(t, 90.0, AttendanceScore(bundle("alice", 9, 10, 0, 0)), 1e-9)
	assert.InDelta(t, 50.0, AttendanceScore(bundle("bob", 5, 10, 0, 0)), 1e-9)
}

func TestProgressScoreClamps(t *testing.T) {
	assert.Equal(t, 100.0, ProgressScore(bundle("a", 0, 0, 104.2, 0)))
	assert.Equal(t, 0.0, ProgressScore(bundle("a", 0, 0, -3, 0)))
	assert.Equal(t, 80.0, ProgressScore(bundle("a", 0, 0, 80, 0)))
}

func TestNormalizedPointsZeroCohort(t *testing.T) {
	assert.Equal(t, 0.0, NormalizedPoints(0, 0))
}

func TestNormalizedPointsRange(t *testing.T) {
	assert.InDelta(t, 100.0, NormalizedPoints(50, 50), 1e-9)
	assert.InDelta(t, 50.0, NormalizedPoints(25, 50), 1e-9)
}

func TestCombinedScoreRoundsOnce(t *testing.T) {
	// 0.4*90 + 0.3*80 + 0.3*100 = 90
	assert.Equal(t, 90, CombinedScore(90, 80, 100, DefaultWeights))
	// sub-scores that would shift if rounded individually
	assert.Equal(t, 50, CombinedScore(49.6, 49.6, 49.6, Weights{Attendance: 0.5, Progress: 0.25, Points: 0.25}))
}

func TestValidateBundleRejectsNegatives(t *testing.T) {
	b := bundle("a", 3, 10, 50, 10)
	b.Points.Raw = -1
	err := ValidateBundle(b)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	b = bundle("a", -1, 10, 50, 10)
	require.Error(t, ValidateBundle(b))
}

func TestValidateBundleRejectsPresentAboveTotal(t *testing.T) {
	require.Error(t, ValidateBundle(bundle("a", 11, 10, 50, 10)))
}

func TestComputeLeaderboardEmptyInput(t *testing.T) {
	board, err := ComputeLeaderboard(nil, DefaultWeights)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestComputeLeaderboardInvalidWeightsBeforeScoring(t *testing.T) {
	_, err := ComputeLeaderboard([]Bundle{bundle("a", 1, 1, 100, 10)}, Weights{Attendance: 0.5, Progress: 0.5, Points: 0.5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}

func TestComputeLeaderboardScenario(t *testing.T) {
	board, err := ComputeLeaderboard([]Bundle{
		bundle("Alice", 9, 10, 80, 50),
		bundle("Bob", 5, 10, 60, 25),
		bundle("Carol", 0, 0, 0, 0),
	}, DefaultWeights)
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, "Alice", board[0].DisplayName)
	assert.Equal(t, 90, board[0].CombinedScore)
	assert.InDelta(t, 100.0, board[0].NormalizedPoints, 1e-9)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, MedalGold, board[0].Medal)

	assert.Equal(t, "Bob", board[1].DisplayName)
	assert.Equal(t, 53, board[1].CombinedScore)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, MedalSilver, board[1].Medal)

	assert.Equal(t, "Carol", board[2].DisplayName)
	assert.Equal(t, 0, board[2].CombinedScore)
	assert.Equal(t, 3, board[2].Rank)
	assert.Equal(t, MedalBronze, board[2].Medal)
}

func TestComputeLeaderboardSubScoreRange(t *testing.T) {
	board, err := ComputeLeaderboard([]Bundle{
		bundle("a", 10, 10, 100, 500),
		bundle("b", 0, 10, 0, 0),
		bundle("c", 4, 7, 33.3, 120),
	}, DefaultWeights)
	require.NoError(t, err)
	for _, s := range board {
		assert.GreaterOrEqual(t, s.AttendancePercentage, 0.0)
		assert.LessOrEqual(t, s.AttendancePercentage, 100.0)
		assert.GreaterOrEqual(t, s.ProgressPercentage, 0.0)
		assert.LessOrEqual(t, s.ProgressPercentage, 100.0)
		assert.GreaterOrEqual(t, s.NormalizedPoints, 0.0)
		assert.LessOrEqual(t, s.NormalizedPoints, 100.0)
		assert.GreaterOrEqual(t, s.CombinedScore, 0)
		assert.LessOrEqual(t, s.CombinedScore, 100)
	}
}

func TestComputeLeaderboardIdempotent(t *testing.T) {
	input := []Bundle{
		bundle("a", 10, 10, 100, 500),
		bundle("b", 0, 10, 0, 0),
		bundle("c", 4, 7, 33.3, 120),
	}
	first, err := ComputeLeaderboard(input, DefaultWeights)
	require.NoError(t, err)
	second, err := ComputeLeaderboard(input, DefaultWeights)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeLeaderboardDoesNotMutateInput(t *testing.T) {
	input := []Bundle{
		bundle("zoe", 2, 10, 20, 5),
		bundle("amy", 8, 10, 90, 40),
	}
	_, err := ComputeLeaderboard(input, DefaultWeights)
	require.NoError(t, err)
	assert.Equal(t, "zoe", input[0].DisplayName)
	assert.Equal(t, "amy", input[1].DisplayName)
}

func TestNewFormulaEchoesWeights(t *testing.T) {
	f := NewFormula(DefaultWeights)
	assert.Equal(t, 0.4, f.AttendanceWeight)
	assert.Equal(t, 0.3, f.ProgressWeight)
	assert.Equal(t, 0.3, f.PointsWeight)
	assert.NotEmpty(t, f.Description)
}
