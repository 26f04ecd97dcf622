package classifier

import (
	"testing"

	"github-achievement-miner/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestScore_BaseTable(t *testing.T) {
	tests := []struct {
		achievementType domain.AchievementType
		want            int
	}{
		{domain.TypeFirstContribution, 50},
		{domain.TypePRMerged, 30},
		{domain.TypeIssueResolved, 20},
		{domain.TypePopularRepo, 40},
		{domain.TypeMaintainer, 35},
	}

	for _, tt := range tests {
		t.Run(string(tt.achievementType), func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.achievementType, 0))
		})
	}
}

func TestScore_UnknownTypeDefaults(t *testing.T) {
	// Defensive branch for future enum growth
	assert.Equal(t, 10, Score(domain.AchievementType("conference_talk"), 0))
	assert.Equal(t, 25, Score(domain.AchievementType("conference_talk"), 1000))
}

func TestScore_StarBonusTiers(t *testing.T) {
	tests := []struct {
		name  string
		stars int
		want  int // pr_merged base 30 + tier bonus
	}{
		{"below every tier", 99, 30},
		{"exactly 100", 100, 35},
		{"between 100 and 500", 200, 35},
		{"exactly 500", 500, 40},
		{"exactly 1000", 1000, 45},
		{"exactly 5000", 5000, 50},
		{"exactly 10000", 10000, 60},
		{"far above the top tier", 250000, 60},
		{"zero stars", 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(domain.TypePRMerged, tt.stars))
		})
	}
}

func TestScore_TiersNeverStack(t *testing.T) {
	// 30 base + 30 top tier, not 30+30+20+15+10+5
	assert.Equal(t, 60, Score(domain.TypePRMerged, 10000))
}
