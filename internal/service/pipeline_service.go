package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github-achievement-miner/internal/classifier"
	"github-achievement-miner/internal/domain"
	"github-achievement-miner/internal/metrics"
	"github-achievement-miner/internal/port"
)

// publishDelay is the fixed pause between generative-text calls, to stay
// under the provider's rate limit.
const publishDelay = 3 * time.Second

// PipelineService 串起整条成就流水线：抓取 -> 分类 -> 入库 -> 生成/发布
type PipelineService struct {
	source    port.EventSource
	store     port.AchievementStore
	generator port.ContentGenerator
	publisher port.Publisher
}

// NewPipelineService 创建流水线服务
func NewPipelineService(
	source port.EventSource,
	store port.AchievementStore,
	generator port.ContentGenerator,
	publisher port.Publisher,
) *PipelineService {
	return &PipelineService{
		source:    source,
		store:     store,
		generator: generator,
		publisher: publisher,
	}
}

// Run executes one classification cycle for a user: fetch the event
// window, classify it, and upsert the results. Persistence failures are
// per-record — one bad row never aborts the batch. Returns how many
// achievements were stored.
func (s *PipelineService) Run(ctx context.Context, username string, since time.Time) (int, error) {
	fmt.Printf("🚀 [分类模式] 开始处理用户 %s 的贡献事件...\n", username)

	// 1. 拉取事件窗口
	events, err := s.source.FetchEvents(ctx, username, since)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("fetch_error").Inc()
		return 0, fmt.Errorf("fetching events: %w", err)
	}
	fmt.Printf("📥 成功获取 %d 个事件\n", len(events))

	// 2. 辅助查询：星标数 + 首次贡献
	repoNames := collectRepoNames(events)
	mergedRepos := collectMergedPRRepos(events)

	stars, err := s.source.FetchRepoStars(ctx, repoNames)
	if err != nil {
		// 星标查询挂了也能继续：缺失的 key 按 0 星处理
		log.Printf("⚠️ 获取星标数失败: %v", err)
		stars = domain.RepoStarsMap{}
	}

	firstContrib, err := s.source.FetchFirstContributions(ctx, username, mergedRepos)
	if err != nil {
		log.Printf("⚠️ 首次贡献检查失败: %v", err)
		firstContrib = domain.FirstContributionSet{}
	}

	// 3. 纯函数分类
	achievements := classifier.Classify(events, username, stars, firstContrib)
	fmt.Printf("🏆 分类出 %d 条成就\n", len(achievements))

	// 4. 幂等入库，单条失败只记日志
	stored := 0
	for _, a := range achievements {
		select {
		case <-ctx.Done():
			fmt.Println("⏰ 执行时间过长，提前结束入库阶段")
			metrics.PipelineRuns.WithLabelValues("timeout").Inc()
			return stored, ctx.Err()
		default:
		}

		if err := s.store.Upsert(ctx, a); err != nil {
			log.Printf("❌ 保存成就 %q 失败: %v", a.Title, err)
			continue
		}
		metrics.AchievementsClassified.WithLabelValues(string(a.Type)).Inc()
		stored++
	}

	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	fmt.Printf("🎉 本轮分类完成，共入库 %d 条成就\n", stored)
	return stored, nil
}

// GenerateAndPublish turns the user's unpublished achievements into
// content and pushes them out, one by one with a fixed delay between
// generative calls. Stops early on context cancellation.
func (s *PipelineService) GenerateAndPublish(ctx context.Context, userID string, format port.ContentFormat, limit int) (int, error) {
	achievements, err := s.store.ListUnpublished(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing unpublished achievements: %w", err)
	}
	if limit > 0 && len(achievements) > limit {
		achievements = achievements[:limit]
	}

	published := 0
	for i, a := range achievements {
		select {
		case <-ctx.Done():
			fmt.Println("⏰ 执行时间过长，提前结束生成和发布阶段")
			return published, ctx.Err()
		default:
		}

		content, err := s.generator.Generate(ctx, a, format)
		if err != nil {
			log.Printf("❌ 生成成就 %q 的文案失败: %v", a.Title, err)
			continue
		}
		metrics.ContentGenerated.WithLabelValues(string(format)).Inc()

		if s.publisher == nil {
			log.Printf("⚠️ 未配置发布通道，跳过发布成就 %q", a.Title)
			continue
		}

		if err := s.publisher.Publish(ctx, content); err != nil {
			log.Printf("❌ 发布成就 %q 失败: %v", a.Title, err)
			continue
		}

		if err := s.store.MarkPublished(ctx, a.ID); err != nil {
			log.Printf("⚠️ 标记成就 %q 为已发布失败: %v", a.Title, err)
			continue
		}
		fmt.Printf("📲 已发布成就 %q\n", a.Title)
		published++

		// 避免触发 API 限制
		if i < len(achievements)-1 {
			time.Sleep(publishDelay)
		}
	}

	fmt.Printf("🎉 本轮发布完成，共发布 %d 条\n", published)
	return published, nil
}

// GenerateContent produces content for a single stored achievement
// without publishing it; the HTTP API uses this for previews.
func (s *PipelineService) GenerateContent(ctx context.Context, achievementID string, format port.ContentFormat) (string, error) {
	a, err := s.store.GetByID(ctx, achievementID)
	if err != nil {
		return "", fmt.Errorf("loading achievement: %w", err)
	}

	content, err := s.generator.Generate(ctx, a, format)
	if err != nil {
		return "", err
	}
	metrics.ContentGenerated.WithLabelValues(string(format)).Inc()
	return content, nil
}

// collectRepoNames gathers the distinct repos of all recognized events,
// preserving first-seen order.
func collectRepoNames(events []domain.RawEvent) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, ev := range events {
		if ev.Kind == domain.KindOther || ev.RepoFullName == "" {
			continue
		}
		if _, ok := seen[ev.RepoFullName]; ok {
			continue
		}
		seen[ev.RepoFullName] = struct{}{}
		names = append(names, ev.RepoFullName)
	}
	return names
}

// collectMergedPRRepos gathers the repos that had a merged PR event —
// the only ones where the first-contribution check matters.
func collectMergedPRRepos(events []domain.RawEvent) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, ev := range events {
		pr := ev.PullRequest
		if ev.Kind != domain.KindPullRequest || pr == nil || pr.Action != "closed" || !pr.Merged {
			continue
		}
		if _, ok := seen[ev.RepoFullName]; ok {
			continue
		}
		seen[ev.RepoFullName] = struct{}{}
		names = append(names, ev.RepoFullName)
	}
	return names
}
