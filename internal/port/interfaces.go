package port

import (
	"context"
	"time"

	"github-achievement-miner/internal/domain"
)

// ContentFormat selects what the generator should produce from an
// achievement.
type ContentFormat string

const (
	FormatResumeBullet  ContentFormat = "resume_bullet"
	FormatLinkedInPost  ContentFormat = "linkedin_post"
	FormatTwitterThread ContentFormat = "twitter_thread"
)

// EventSource (侦察兵): supplies the raw material for classification.
// Implemented against the GitHub REST/Search APIs; the classifier never
// talks to it directly, the pipeline service does.
type EventSource interface {
	// FetchEvents returns the user's activity events since the cutoff,
	// fully materialized (the classifier dedups over the whole list).
	FetchEvents(ctx context.Context, username string, since time.Time) ([]domain.RawEvent, error)

	// FetchRepoStars looks up current star counts for the given repo
	// full names. Repos it can't resolve are simply absent from the map.
	FetchRepoStars(ctx context.Context, repoFullNames []string) (domain.RepoStarsMap, error)

	// FetchFirstContributions reports which of the given repos the user's
	// latest merged PR is their first contribution to.
	FetchFirstContributions(ctx context.Context, username string, repoFullNames []string) (domain.FirstContributionSet, error)
}

// AchievementStore (仓库管理员): persistence for classified achievements.
type AchievementStore interface {
	// Upsert creates or updates an achievement keyed by
	// (user_id, type, repo_name, pr_number). On conflict only score,
	// repo_stars and impact_data change; identity fields, occurred_at
	// and the published flag are left alone.
	Upsert(ctx context.Context, a *domain.Achievement) error

	// ListTop returns the user's highest-scored achievements.
	ListTop(ctx context.Context, userID string, limit int) ([]*domain.Achievement, error)

	// ListUnpublished returns achievements not yet pushed to any channel,
	// highest score first.
	ListUnpublished(ctx context.Context, userID string) ([]*domain.Achievement, error)

	// GetByID fetches a single achievement.
	GetByID(ctx context.Context, id string) (*domain.Achievement, error)

	// MarkPublished flags an achievement as already posted.
	MarkPublished(ctx context.Context, id string) error
}

// ContentGenerator (鉴定师): wraps the generative-text service. Takes an
// achievement-shaped record and a format selector, returns generated text.
type ContentGenerator interface {
	Generate(ctx context.Context, a *domain.Achievement, format ContentFormat) (string, error)
}

// Publisher (信使): pushes generated content to a social channel.
type Publisher interface {
	Publish(ctx context.Context, content string) error
}
