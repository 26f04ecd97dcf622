package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github-achievement-miner/internal/common"
	"github-achievement-miner/internal/domain"
	"github-achievement-miner/internal/port"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator 实现了 port.ContentGenerator 接口
type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// 定义一个内部结构体来接收 AI 返回的 JSON
type aiResponse struct {
	Content string `json:"content"`
}

func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash-lite")
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &Generator{
		client: client,
		model:  model,
	}, nil
}

// formatInstructions maps each content format to the shape we ask the
// model to produce.
var formatInstructions = map[port.ContentFormat]string{
	port.FormatResumeBullet:  "a single punchy resume bullet point, past tense, leading with the impact, under 40 words",
	port.FormatLinkedInPost:  "a LinkedIn post of 2-4 short paragraphs, first person, professional but not stiff, no hashtag spam (max 3 hashtags)",
	port.FormatTwitterThread: "a Twitter/X thread of 2-4 numbered tweets, each under 280 characters, conversational tone",
}

// Generate turns one achievement into share-ready text in the requested
// format.
func (g *Generator) Generate(ctx context.Context, a *domain.Achievement, format port.ContentFormat) (string, error) {
	instruction, ok := formatInstructions[format]
	if !ok {
		return "", common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("unknown content format %q", format))
	}

	prompt := buildPrompt(a, instruction)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "generating content", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, "empty response from model")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", common.NewError(common.ErrCodeAIProcessing, "unexpected response part type")
	}

	content, err := parseAIResponse(string(text))
	if err != nil {
		return "", err
	}
	return content, nil
}

// buildPrompt renders the achievement facts into the generation prompt.
// Only the fields the content stage is contracted to read go in.
func buildPrompt(a *domain.Achievement, instruction string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a developer-marketing copywriter. Write %s about the following GitHub contribution.\n\n", instruction)
	fmt.Fprintf(&b, "Contribution type: %s\n", a.Type)
	fmt.Fprintf(&b, "Title: %s\n", a.Title)
	if a.Description != nil {
		fmt.Fprintf(&b, "Details: %s\n", *a.Description)
	}
	fmt.Fprintf(&b, "Repository: %s/%s (%d stars)\n", a.RepoOwner, a.RepoName, a.RepoStars)
	if a.PRNumber != nil {
		fmt.Fprintf(&b, "Pull request: #%d\n", *a.PRNumber)
	}
	if a.ImpactData != nil {
		fmt.Fprintf(&b, "Diff stats: +%d/-%d lines across %d files\n",
			a.ImpactData.LinesAdded, a.ImpactData.LinesRemoved, a.ImpactData.FilesChanged)
	}
	b.WriteString("\nReturn strict JSON with a single field \"content\" holding the text. No Markdown fences.\n")

	return b.String()
}

// parseAIResponse pulls the JSON object out of the raw model output.
// 即使 AI 返回 "```json { ... } ```"，也能精准抠出中间的 { ... }
func parseAIResponse(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start == -1 || end == -1 || end <= start {
		return "", common.NewError(common.ErrCodeAIProcessing, fmt.Sprintf("no JSON in model output: %s", raw))
	}

	var res aiResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "decoding model output", err)
	}
	if res.Content == "" {
		return "", common.NewError(common.ErrCodeAIProcessing, "model output missing content field")
	}
	return res.Content, nil
}
