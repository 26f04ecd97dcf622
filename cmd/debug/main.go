package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github-achievement-miner/internal/adapter/github"
	"github-achievement-miner/internal/classifier"
)

// 调试入口：不连数据库，直接抓取 + 分类并打印结果
func main() {
	githubToken := os.Getenv("GITHUB_TOKEN")
	username := os.Getenv("DEBUG_USER")
	if username == "" {
		log.Fatal("❌ 请设置 DEBUG_USER=<github用户名>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	fetcher := github.NewFetcher(githubToken)

	fmt.Printf("🔍 调试模式：获取并分类 %s 的最近事件\n", username)

	since := time.Now().AddDate(0, 0, -30)
	events, err := fetcher.FetchEvents(ctx, username, since)
	if err != nil {
		log.Fatalf("❌ 获取事件失败: %v", err)
	}
	fmt.Printf("✅ 成功获取 %d 个事件\n", len(events))

	repos := make(map[string]struct{})
	var repoNames []string
	for _, ev := range events {
		if _, ok := repos[ev.RepoFullName]; !ok && ev.RepoFullName != "" {
			repos[ev.RepoFullName] = struct{}{}
			repoNames = append(repoNames, ev.RepoFullName)
		}
	}

	stars, err := fetcher.FetchRepoStars(ctx, repoNames)
	if err != nil {
		log.Printf("⚠️ 获取星标数失败: %v", err)
	}

	firstContrib, err := fetcher.FetchFirstContributions(ctx, username, repoNames)
	if err != nil {
		log.Printf("⚠️ 首次贡献检查失败: %v", err)
	}

	achievements := classifier.Classify(events, username, stars, firstContrib)

	fmt.Printf("\n🏆 共分类出 %d 条成就:\n", len(achievements))
	for _, a := range achievements {
		desc := ""
		if a.Description != nil {
			desc = *a.Description
		}
		fmt.Printf("  [%3d] %-20s %s/%s  %s\n        %s\n",
			a.Score, a.Type, a.RepoOwner, a.RepoName, a.Title, desc)
	}
}
