package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

const narratorSystemPrompt = `你是一名谨慎的加密货币交易助手。` +
	`用不超过三句话点评给出的交易信号：说明多周期共振的含义与主要风险，` +
	`不要给出仓位建议，不要重复信号中的数字。`

// NarratorService 信号点评，调用LLM生成一句话解读
// 未配置API密钥时返回空串，信号流程不依赖该服务
type NarratorService struct {
	logger *zap.Logger

	client *openai.Client
	model  string
}

// NewNarratorService 创建点评服务
func NewNarratorService(client *openai.Client, model string, logger *zap.Logger) *NarratorService {
	return &NarratorService{
		logger: logger,
		client: client,
		model:  model,
	}
}

// Commentary 为一条分析结果生成点评，失败时降级为空串
func (s *NarratorService) Commentary(ctx context.Context, result *AnalysisResult) string {
	if s.client == nil || s.model == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "币种 %s，方向 %s，置信度 %d，盈亏比 %.2f。\n",
		result.Symbol, result.Direction, result.Confidence, result.RiskReward)
	for interval, analysis := range result.Timeframes {
		fmt.Fprintf(&sb, "周期 %s: 趋势 %s 强度 %.1f%% 连续性 %.0f，量能评分 %.0f\n",
			interval, analysis.Trend.Direction, analysis.Trend.Strength,
			analysis.Trend.Consistency, analysis.Volume.Score)
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(narratorSystemPrompt),
			openai.UserMessage(sb.String()),
		},
	})
	if err != nil {
		s.logger.Warn("failed to generate signal commentary", zap.Error(err))
		return ""
	}
	if len(completion.Choices) == 0 {
		return ""
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content)
}
