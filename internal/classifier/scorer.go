package classifier

import "github-achievement-miner/internal/domain"

// 基础分规则表：成就类型 -> 固定底分
var baseScores = map[domain.AchievementType]int{
	domain.TypeFirstContribution: 50,
	domain.TypePRMerged:          30,
	domain.TypeIssueResolved:     20,
	domain.TypePopularRepo:       40,
	domain.TypeMaintainer:        35,
}

// defaultBaseScore guards against future enum growth; unreachable with
// the current closed type set.
const defaultBaseScore = 10

// starBonusTiers is evaluated top-down; the first threshold met wins and
// tiers never stack.
var starBonusTiers = []struct {
	minStars int
	bonus    int
}{
	{10000, 30},
	{5000, 20},
	{1000, 15},
	{500, 10},
	{100, 5},
}

// Score computes the achievement score from its type and the repo's star
// count: base score plus at most one star bonus. Pure, no cap.
func Score(t domain.AchievementType, repoStars int) int {
	base, ok := baseScores[t]
	if !ok {
		base = defaultBaseScore
	}
	for _, tier := range starBonusTiers {
		if repoStars >= tier.minStars {
			return base + tier.bonus
		}
	}
	return base
}
