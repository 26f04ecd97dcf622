package classifier

import (
	"testing"

	"github-achievement-miner/internal/domain"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestDeduplicate_FirstOccurrenceWins(t *testing.T) {
	first := &domain.Achievement{
		Type:      domain.TypePRMerged,
		RepoOwner: "octo",
		RepoName:  "hello",
		PRNumber:  intPtr(42),
		Score:     45,
	}
	// Same fact, different score and description: must be dropped, not merged
	later := &domain.Achievement{
		Type:      domain.TypePRMerged,
		RepoOwner: "octo",
		RepoName:  "hello",
		PRNumber:  intPtr(42),
		Score:     99,
	}

	out := Deduplicate([]*domain.Achievement{first, later})

	assert.Len(t, out, 1)
	assert.Same(t, first, out[0])
	assert.Equal(t, 45, out[0].Score)
}

func TestDeduplicate_DistinctFactsSurvive(t *testing.T) {
	in := []*domain.Achievement{
		{Type: domain.TypePRMerged, RepoOwner: "octo", RepoName: "hello", PRNumber: intPtr(1)},
		{Type: domain.TypePRMerged, RepoOwner: "octo", RepoName: "hello", PRNumber: intPtr(2)},
		// popular_repo bonuses for different PRs in the same repo stay distinct
		{Type: domain.TypePopularRepo, RepoOwner: "octo", RepoName: "hello", PRNumber: intPtr(1)},
		{Type: domain.TypePopularRepo, RepoOwner: "octo", RepoName: "hello", PRNumber: intPtr(2)},
		// Same number, different type
		{Type: domain.TypeIssueResolved, RepoOwner: "octo", RepoName: "hello", IssueNumber: intPtr(1)},
	}

	out := Deduplicate(in)
	assert.Len(t, out, 5)
}

func TestDeduplicate_PreservesOrder(t *testing.T) {
	in := []*domain.Achievement{
		{Type: domain.TypePRMerged, RepoOwner: "a", RepoName: "x", PRNumber: intPtr(1)},
		{Type: domain.TypeMaintainer, RepoOwner: "b", RepoName: "y", PRNumber: intPtr(2)},
		{Type: domain.TypePRMerged, RepoOwner: "a", RepoName: "x", PRNumber: intPtr(1)}, // dup
		{Type: domain.TypeIssueResolved, RepoOwner: "c", RepoName: "z", IssueNumber: intPtr(3)},
	}

	out := Deduplicate(in)

	assert.Len(t, out, 3)
	assert.Same(t, in[0], out[0])
	assert.Same(t, in[1], out[1])
	assert.Same(t, in[3], out[2])
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []*domain.Achievement{
		{Type: domain.TypePRMerged, RepoOwner: "a", RepoName: "x", PRNumber: intPtr(1)},
		{Type: domain.TypePRMerged, RepoOwner: "a", RepoName: "x", PRNumber: intPtr(1)},
		{Type: domain.TypeMaintainer, RepoOwner: "a", RepoName: "x"},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)

	assert.Equal(t, once, twice)
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
	assert.Empty(t, Deduplicate([]*domain.Achievement{}))
}
