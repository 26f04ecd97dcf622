package domain

import "time"

// EventKind tags a RawEvent with the GitHub activity type it came from.
// The feed is a superset of what we handle; anything we don't care about
// is mapped to KindOther and ignored downstream.
type EventKind string

const (
	KindPullRequest       EventKind = "pull_request"
	KindIssues            EventKind = "issues"
	KindPullRequestReview EventKind = "pull_request_review"
	KindOther             EventKind = "other"
)

// PullRequestPayload 合并类事件的详情 (只保留分类需要的字段)
type PullRequestPayload struct {
	Number       int
	Title        string
	Body         string
	Merged       bool
	Additions    int
	Deletions    int
	ChangedFiles int
	Action       string
}

// IssuePayload holds the issue detail of an issues event.
type IssuePayload struct {
	Number int
	Title  string
	Body   string
	Action string
}

// ReviewPayload holds the detail of a pull-request-review event.
// PRNumber is nil when the feed didn't include the reviewed PR.
type ReviewPayload struct {
	PRNumber *int
	Action   string
}

// RawEvent is one observed GitHub activity occurrence, produced by the
// event fetcher and consumed once by the classifier. Exactly one payload
// pointer is set, matching Kind.
type RawEvent struct {
	Kind         EventKind
	RepoFullName string
	OccurredAt   time.Time

	PullRequest *PullRequestPayload
	Issue       *IssuePayload
	Review      *ReviewPayload
}

// RepoStarsMap maps a repo full name to its current star count.
// Missing keys mean 0 stars, never an error.
type RepoStarsMap map[string]int

// FirstContributionSet holds the repo full names for which the user's
// latest merged PR is their first contribution to that repo.
type FirstContributionSet map[string]struct{}
