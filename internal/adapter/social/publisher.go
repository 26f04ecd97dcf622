package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github-achievement-miner/internal/common"
)

// Publisher 实现了 port.Publisher 接口
// It posts generated content to a social-posting API webhook; the wire
// format is the provider's generic text-message shape.
type Publisher struct {
	webhookURL string
	client     *http.Client
	retryOpts  []common.Option
}

func NewPublisher(webhook string) *Publisher {
	if webhook == "" {
		log.Println("⚠️ 警告: 社交发布 Webhook 为空，自动发布功能将无法工作！")
	}
	return &Publisher{
		webhookURL: webhook,
		client:     &http.Client{Timeout: 10 * time.Second},
		retryOpts: []common.Option{
			common.WithMaxRetries(3),
			common.WithInitialDelay(time.Second),
		},
	}
}

type publishRequest struct {
	Text string `json:"text"`
}

// Publish sends one piece of generated content to the channel. Transient
// failures are retried with backoff; a non-2xx response is an error.
func (p *Publisher) Publish(ctx context.Context, content string) error {
	if p.webhookURL == "" {
		return common.NewError(common.ErrCodePublish, "webhook URL is empty")
	}

	body, err := json.Marshal(publishRequest{Text: content})
	if err != nil {
		return common.WrapError(common.ErrCodePublish, "encoding publish request", err)
	}

	return common.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
		}
		return nil
	}, p.retryOpts...)
}
