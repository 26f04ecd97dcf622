// Package classifier turns raw GitHub activity events into scored,
// deduplicated achievements. Everything here is a pure function over its
// inputs: all I/O (event feed, star counts, first-contribution checks)
// happens upstream in the event source adapter.
package classifier

import (
	"fmt"
	"sort"

	"github-achievement-miner/internal/domain"
)

// popularRepoStars is the star count at which a merged PR additionally
// earns a popular_repo bonus achievement.
const popularRepoStars = 1000

const maintainerDescription = "Reviewed and approved changes as a project maintainer or trusted contributor."

// Classify maps one user's raw events plus the auxiliary lookups into a
// ranked achievement list. The username is stamped onto every record but
// never used for filtering: the feed is assumed pre-filtered to the user.
//
// Events the classifier doesn't understand are skipped, never errored on;
// the GitHub feed is a superset of the three kinds handled here.
func Classify(events []domain.RawEvent, username string, repoStars domain.RepoStarsMap, firstContrib domain.FirstContributionSet) []*domain.Achievement {
	// 先收集、再排序：两步分开，平分时保留事件顺序
	var out []*domain.Achievement

	// First dedup layer: the same PR's "closed" event can show up twice
	// across page boundaries of one fetch. The general Deduplicate pass
	// below still runs; it guards cross-type key collisions instead.
	seenPRs := make(map[string]struct{})

	for i := range events {
		ev := &events[i]
		switch ev.Kind {
		case domain.KindPullRequest:
			out = append(out, classifyPullRequest(ev, username, repoStars, firstContrib, seenPRs)...)
		case domain.KindIssues:
			if a := classifyIssue(ev, username, repoStars); a != nil {
				out = append(out, a)
			}
		case domain.KindPullRequestReview:
			if a := classifyReview(ev, username, repoStars); a != nil {
				out = append(out, a)
			}
		}
	}

	out = Deduplicate(out)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

func classifyPullRequest(ev *domain.RawEvent, username string, repoStars domain.RepoStarsMap, firstContrib domain.FirstContributionSet, seenPRs map[string]struct{}) []*domain.Achievement {
	pr := ev.PullRequest
	if pr == nil || pr.Action != "closed" || !pr.Merged {
		return nil
	}

	prKey := fmt.Sprintf("%s#%d", ev.RepoFullName, pr.Number)
	if _, dup := seenPRs[prKey]; dup {
		return nil
	}
	seenPRs[prKey] = struct{}{}

	owner, name := domain.SplitRepoFullName(ev.RepoFullName)
	stars := repoStars[ev.RepoFullName]
	prNumber := pr.Number
	impact := &domain.ImpactData{
		LinesAdded:   pr.Additions,
		LinesRemoved: pr.Deletions,
		FilesChanged: pr.ChangedFiles,
	}

	var achievements []*domain.Achievement

	if _, first := firstContrib[ev.RepoFullName]; first {
		title := pr.Title
		achievements = append(achievements, &domain.Achievement{
			UserID:      username,
			Type:        domain.TypeFirstContribution,
			Title:       fmt.Sprintf("First contribution to %s", ev.RepoFullName),
			Description: &title,
			RepoName:    name,
			RepoOwner:   owner,
			RepoURL:     domain.RepoURLFor(ev.RepoFullName),
			RepoStars:   stars,
			PRNumber:    &prNumber,
			Score:       Score(domain.TypeFirstContribution, stars),
			ImpactData:  impact,
			OccurredAt:  ev.OccurredAt,
		})
	} else {
		achievements = append(achievements, &domain.Achievement{
			UserID:      username,
			Type:        domain.TypePRMerged,
			Title:       pr.Title,
			Description: domain.TruncateBody(pr.Body),
			RepoName:    name,
			RepoOwner:   owner,
			RepoURL:     domain.RepoURLFor(ev.RepoFullName),
			RepoStars:   stars,
			PRNumber:    &prNumber,
			Score:       Score(domain.TypePRMerged, stars),
			ImpactData:  impact,
			OccurredAt:  ev.OccurredAt,
		})
	}

	// 热门仓库加成：同一个 PR 可以额外产出一条 popular_repo 成就
	if stars >= popularRepoStars {
		bonusNumber := pr.Number
		desc := fmt.Sprintf("Merged a pull request in a repository with %d stars.", stars)
		achievements = append(achievements, &domain.Achievement{
			UserID:      username,
			Type:        domain.TypePopularRepo,
			Title:       fmt.Sprintf("Contributed to popular repo %s", ev.RepoFullName),
			Description: &desc,
			RepoName:    name,
			RepoOwner:   owner,
			RepoURL:     domain.RepoURLFor(ev.RepoFullName),
			RepoStars:   stars,
			PRNumber:    &bonusNumber,
			Score:       Score(domain.TypePopularRepo, stars),
			OccurredAt:  ev.OccurredAt,
		})
	}

	return achievements
}

func classifyIssue(ev *domain.RawEvent, username string, repoStars domain.RepoStarsMap) *domain.Achievement {
	issue := ev.Issue
	if issue == nil || issue.Action != "closed" {
		return nil
	}

	owner, name := domain.SplitRepoFullName(ev.RepoFullName)
	stars := repoStars[ev.RepoFullName]
	issueNumber := issue.Number

	return &domain.Achievement{
		UserID:      username,
		Type:        domain.TypeIssueResolved,
		Title:       fmt.Sprintf("Resolved: %s", issue.Title),
		Description: domain.TruncateBody(issue.Body),
		RepoName:    name,
		RepoOwner:   owner,
		RepoURL:     domain.RepoURLFor(ev.RepoFullName),
		RepoStars:   stars,
		IssueNumber: &issueNumber,
		Score:       Score(domain.TypeIssueResolved, stars),
		OccurredAt:  ev.OccurredAt,
	}
}

func classifyReview(ev *domain.RawEvent, username string, repoStars domain.RepoStarsMap) *domain.Achievement {
	review := ev.Review
	if review == nil || review.Action != "submitted" {
		return nil
	}

	owner, name := domain.SplitRepoFullName(ev.RepoFullName)
	stars := repoStars[ev.RepoFullName]
	desc := maintainerDescription

	return &domain.Achievement{
		UserID:      username,
		Type:        domain.TypeMaintainer,
		Title:       fmt.Sprintf("Reviewed PR in %s", ev.RepoFullName),
		Description: &desc,
		RepoName:    name,
		RepoOwner:   owner,
		RepoURL:     domain.RepoURLFor(ev.RepoFullName),
		RepoStars:   stars,
		PRNumber:    review.PRNumber,
		Score:       Score(domain.TypeMaintainer, stars),
		OccurredAt:  ev.OccurredAt,
	}
}
