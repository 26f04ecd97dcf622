package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github-achievement-miner/internal/common"
	"github-achievement-miner/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// eventsPerPage is the max the events API allows.
const eventsPerPage = 100

// Fetcher 实现了 port.EventSource 接口
type Fetcher struct {
	client *github.Client
}

// NewFetcher 初始化 GitHub 客户端
func NewFetcher(token string) *Fetcher {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Fetcher{client: client}
}

// retryable rejects errors that a retry can't fix: missing resources and
// validation failures. Rate limits and transient 5xx are worth retrying.
func retryable(err error) bool {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return false
		}
	}
	return true
}

// FetchEvents returns the user's public activity since the cutoff, fully
// materialized. The feed is newest-first, so paging stops as soon as a
// page crosses the cutoff.
func (f *Fetcher) FetchEvents(ctx context.Context, username string, since time.Time) ([]domain.RawEvent, error) {
	var all []domain.RawEvent

	opts := &github.ListOptions{PerPage: eventsPerPage}
	for {
		var (
			events []*github.Event
			resp   *github.Response
		)
		err := common.Do(ctx, func() error {
			var apiErr error
			events, resp, apiErr = f.client.Activity.ListEventsPerformedByUser(ctx, username, false, opts)
			return apiErr
		},
			common.WithMaxRetries(3),
			common.WithInitialDelay(time.Second),
			common.WithRetryIf(retryable),
		)
		if err != nil {
			return nil, common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("listing events for %s", username), err)
		}

		pastCutoff := false
		for _, ev := range events {
			if ev.GetCreatedAt().Time.Before(since) {
				pastCutoff = true
				break
			}
			raw, ok := convertEvent(ev)
			if !ok {
				continue
			}
			all = append(all, raw)
		}

		if pastCutoff || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// convertEvent maps a GitHub feed event onto our RawEvent. Returns false
// for event types the classifier has no use for.
func convertEvent(ev *github.Event) (domain.RawEvent, bool) {
	raw := domain.RawEvent{
		Kind:         domain.KindOther,
		RepoFullName: ev.GetRepo().GetName(),
		OccurredAt:   ev.GetCreatedAt().Time,
	}

	payload, err := ev.ParsePayload()
	if err != nil {
		// 解析不了的事件直接忽略，不让单个坏事件拖垮整批
		return raw, false
	}

	switch p := payload.(type) {
	case *github.PullRequestEvent:
		pr := p.GetPullRequest()
		raw.Kind = domain.KindPullRequest
		raw.PullRequest = &domain.PullRequestPayload{
			Number:       pr.GetNumber(),
			Title:        pr.GetTitle(),
			Body:         pr.GetBody(),
			Merged:       pr.GetMerged(),
			Additions:    pr.GetAdditions(),
			Deletions:    pr.GetDeletions(),
			ChangedFiles: pr.GetChangedFiles(),
			Action:       p.GetAction(),
		}
	case *github.IssuesEvent:
		issue := p.GetIssue()
		raw.Kind = domain.KindIssues
		raw.Issue = &domain.IssuePayload{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			Body:   issue.GetBody(),
			Action: p.GetAction(),
		}
	case *github.PullRequestReviewEvent:
		raw.Kind = domain.KindPullRequestReview
		review := &domain.ReviewPayload{Action: p.GetAction()}
		if pr := p.GetPullRequest(); pr != nil && pr.Number != nil {
			n := pr.GetNumber()
			review.PRNumber = &n
		}
		raw.Review = review
	default:
		return raw, false
	}

	return raw, true
}

// FetchRepoStars resolves current star counts for each repo full name.
// Repos that fail to resolve are left out of the map (the classifier
// treats missing keys as 0 stars), the rest of the batch continues.
func (f *Fetcher) FetchRepoStars(ctx context.Context, repoFullNames []string) (domain.RepoStarsMap, error) {
	stars := make(domain.RepoStarsMap, len(repoFullNames))

	for _, full := range repoFullNames {
		owner, name := domain.SplitRepoFullName(full)
		if owner == "" {
			continue
		}

		var repo *github.Repository
		err := common.Do(ctx, func() error {
			var apiErr error
			repo, _, apiErr = f.client.Repositories.Get(ctx, owner, name)
			return apiErr
		},
			common.WithMaxRetries(2),
			common.WithInitialDelay(time.Second),
			common.WithRetryIf(retryable),
		)
		if err != nil {
			continue
		}
		stars[full] = repo.GetStargazersCount()
	}

	return stars, nil
}

// FetchFirstContributions checks, per repo, whether the user has exactly
// one merged PR there — in that case their latest merged PR is their
// first contribution to the repo.
func (f *Fetcher) FetchFirstContributions(ctx context.Context, username string, repoFullNames []string) (domain.FirstContributionSet, error) {
	first := make(domain.FirstContributionSet, len(repoFullNames))

	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	for _, full := range repoFullNames {
		query := fmt.Sprintf("repo:%s author:%s type:pr is:merged", full, username)

		var result *github.IssuesSearchResult
		err := common.Do(ctx, func() error {
			var apiErr error
			result, _, apiErr = f.client.Search.Issues(ctx, query, opts)
			return apiErr
		},
			common.WithMaxRetries(2),
			common.WithInitialDelay(time.Second),
			common.WithRetryIf(retryable),
		)
		if err != nil {
			// 查不到就当不是首次贡献，宁可少发成就也不要误报
			continue
		}
		if result.GetTotal() == 1 {
			first[full] = struct{}{}
		}
	}

	return first, nil
}
