package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AchievementType is the closed set of contribution categories the
// classifier can emit.
type AchievementType string

const (
	TypeFirstContribution AchievementType = "first_contribution"
	TypePRMerged          AchievementType = "pr_merged"
	TypeIssueResolved     AchievementType = "issue_resolved"
	TypePopularRepo       AchievementType = "popular_repo"
	TypeMaintainer        AchievementType = "maintainer"
)

// MaxDescriptionLen is the hard cap applied to descriptions taken from
// PR/issue bodies. The cut is a plain rune slice, no ellipsis.
const MaxDescriptionLen = 200

// ImpactData carries the diff stats of a PR-derived achievement.
// Stored as a jsonb column.
type ImpactData struct {
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
	FilesChanged int `json:"files_changed"`
}

// Value implements driver.Valuer so GORM can write the struct as jsonb.
func (d ImpactData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (d *ImpactData) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		return nil
	default:
		return fmt.Errorf("impact data: unsupported scan type %T", src)
	}
}

// Achievement 是分类引擎的产出：一条可持久化、可生成文案的贡献记录
// The identity tuple for the upsert is (user_id, type, repo_name, pr_number);
// everything outside score/repo_stars/impact_data is immutable once written.
type Achievement struct {
	ID     string          `json:"id" gorm:"primaryKey"`
	UserID string          `json:"user_id" gorm:"uniqueIndex:idx_achievement_identity"`
	Type   AchievementType `json:"type" gorm:"uniqueIndex:idx_achievement_identity"`

	Title       string  `json:"title"`
	Description *string `json:"description"`

	RepoName  string `json:"repo_name" gorm:"uniqueIndex:idx_achievement_identity"`
	RepoOwner string `json:"repo_owner"`
	RepoURL   string `json:"repo_url"`
	RepoStars int    `json:"repo_stars"`

	PRNumber    *int `json:"pr_number" gorm:"uniqueIndex:idx_achievement_identity"`
	IssueNumber *int `json:"issue_number"`

	// Score 由规则表计算 (base + 星标加成)，重跑分类时允许更新
	Score      int         `json:"score"`
	ImpactData *ImpactData `json:"impact_data" gorm:"type:jsonb"`

	OccurredAt time.Time `json:"occurred_at"`
	Published  bool      `json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DedupKey identifies the underlying fact this achievement records: same
// type + repo + PR-or-issue number means the same fact.
func (a *Achievement) DedupKey() string {
	num := ""
	switch {
	case a.PRNumber != nil:
		num = fmt.Sprintf("%d", *a.PRNumber)
	case a.IssueNumber != nil:
		num = fmt.Sprintf("%d", *a.IssueNumber)
	}
	return fmt.Sprintf("%s:%s/%s:%s", a.Type, a.RepoOwner, a.RepoName, num)
}

// SplitRepoFullName 拆分 "owner/repo" 形式的仓库全名
// Splits on the first slash. A malformed name with no slash yields an
// empty owner and the whole string as the repo name; callers should build
// URLs from the raw full name, not from the parts.
func SplitRepoFullName(full string) (owner, name string) {
	if i := strings.Index(full, "/"); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

// RepoURLFor builds the canonical GitHub URL for a repo full name.
func RepoURLFor(full string) string {
	return "https://github.com/" + full
}

// TruncateBody cuts a PR/issue body down to MaxDescriptionLen characters
// (runes, not bytes). Returns nil for an empty body so the description
// column stays NULL instead of holding "".
func TruncateBody(body string) *string {
	if body == "" {
		return nil
	}
	r := []rune(body)
	if len(r) > MaxDescriptionLen {
		body = string(r[:MaxDescriptionLen])
	}
	return &body
}
