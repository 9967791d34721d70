// Package notify pushes run summaries to a Lark group chat.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/bench"
)

// Config holds Lark messaging configuration.
type Config struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// LarkNotifier sends text messages to a fixed group chat.
type LarkNotifier struct {
	client *lark.Client
	chatID string
	logger *zap.Logger
}

// NewLarkNotifier creates a notifier for the configured chat.
func NewLarkNotifier(cfg Config, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
	return &LarkNotifier{
		client: client,
		chatID: cfg.ChatID,
		logger: logger,
	}
}

// RunCompleted announces a finished run with its headline metrics.
func (n *LarkNotifier) RunCompleted(ctx context.Context, run *bench.Run) error {
	content, err := json.Marshal(map[string]string{"text": summarize(run)})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send run notification",
			zap.String("run_id", run.ID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("API returned failure",
			zap.String("run_id", run.ID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Run notification sent", zap.String("run_id", run.ID))
	return nil
}

// summarize renders the run as a short plain-text report.
func summarize(run *bench.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice benchmark run %s finished\n", run.ID)
	fmt.Fprintf(&b, "Dataset: %s (%d samples, source %s)\n", run.Dataset, run.SampleCount, run.Source)
	fmt.Fprintf(&b, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))

	methods := make([]string, 0, len(run.Reports))
	for method := range run.Reports {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	for _, method := range methods {
		overall := run.Reports[method].Overall
		if overall.ExactMacro != nil {
			fmt.Fprintf(&b, "%s: exact %.3f", method, *overall.ExactMacro)
		} else {
			fmt.Fprintf(&b, "%s: no observed fields", method)
		}
		if overall.TokenF1Macro != nil {
			fmt.Fprintf(&b, ", token F1 %.3f", *overall.TokenF1Macro)
		}
		if overall.ItemF1 != nil {
			fmt.Fprintf(&b, ", item F1 %.3f", *overall.ItemF1)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
