package scoring

import (
	"sort"
	"strings"
)

// Medal tiers attached to the podium ranks. Medal is a pure function of
// rank, so every student tied at rank 1 wears gold.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
)

// Rank orders the scored students in place and assigns dense ranks.
//
// Ordering is combined score descending, then attendance percentage
// descending, then display name ascending (case-insensitive). The final
// name tie-break makes the output independent of input order, so repeated
// requests over identical data produce identical boards.
//
// Ranks are dense: students with equal combined scores share a rank and the
// next distinct score takes the previous rank plus one (90, 90, 85 ranks as
// 1, 1, 2).
func Rank(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CombinedScore != scored[j].CombinedScore {
			return scored[i].CombinedScore > scored[j].CombinedScore
		}
		if scored[i].AttendancePercentage != scored[j].AttendancePercentage {
			return scored[i].AttendancePercentage > scored[j].AttendancePercentage
		}
		return strings.ToLower(scored[i].DisplayName) < strings.ToLower(scored[j].DisplayName)
	})

	rank := 0
	prevScore := 0
	for i := range scored {
		if i == 0 || scored[i].CombinedScore != prevScore {
			rank++
			prevScore = scored[i].CombinedScore
		}
		scored[i].Rank = rank
		scored[i].Medal = medalFor(rank)
	}
}

func medalFor(rank int) string {
	switch rank {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	}
	return ""
}
