package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"predict-service/logger"
)

// promptTemplate 要求模型只返回一个 X-Y 格式的比分
const promptTemplate = `Predict the most likely correct score (CS) for this football match.
Only return one score in format X-Y.

Match: %s
`

// DefaultFallback 解析不出比分时的兜底值。
// 用 "N/A" 而不是某个真实比分，调用方能区分"没有预测"和"预测 1-1"。
const DefaultFallback = "N/A"

// ErrEmptyMatch 比赛描述为空，未发起任何外部调用
var ErrEmptyMatch = errors.New("match description is required")

// TextGenerator 文本生成服务的抽象，便于测试时替换
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Prediction 一次预测的结果
type Prediction struct {
	Match      string `json:"match"`
	Prediction string `json:"prediction"`
}

// Predictor 比分预测管线：构造提示词 → 调用推理服务 → 从自由文本里解析比分。
// 推理服务不可靠是常态，任何失败都降级为兜底值，不会向上抛错。
type Predictor struct {
	client   TextGenerator
	fallback string
	scoreRe  *regexp.Regexp
}

// NewPredictor 创建预测管线
func NewPredictor(client TextGenerator, fallback string) *Predictor {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Predictor{
		client:   client,
		fallback: fallback,
		scoreRe:  regexp.MustCompile(`\d-\d`),
	}
}

// Predict 为一场比赛生成比分预测。
// 只有输入为空才返回错误；推理失败、超时、响应解析不出比分都返回兜底值。
func (p *Predictor) Predict(ctx context.Context, match string) (Prediction, error) {
	if strings.TrimSpace(match) == "" {
		return Prediction{}, ErrEmptyMatch
	}

	raw, err := p.client.Generate(ctx, BuildPrompt(match))
	if err != nil {
		logger.Errorf("[Predictor] ❌ Inference call failed: %v", err)
		return Prediction{Match: match, Prediction: p.fallback}, nil
	}

	return Prediction{Match: match, Prediction: p.extractScore(extractGeneratedText(raw))}, nil
}

// Fallback 当前的兜底值
func (p *Predictor) Fallback() string {
	return p.fallback
}

// BuildPrompt 构造提示词，是比赛描述的纯函数
func BuildPrompt(match string) string {
	return fmt.Sprintf(promptTemplate, match)
}

// generatedText 推理服务响应里的文本字段
type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// extractGeneratedText 从不可信的响应体里尽力取出生成文本。
// 响应可能是对象数组、单个对象、错误对象或任意纯文本，依次尝试：
// 数组取第一个元素的 generated_text，对象直接取字段，
// 都不匹配时把原始内容当纯文本用。
func extractGeneratedText(raw []byte) string {
	var list []generatedText
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText
	}

	var single generatedText
	if err := json.Unmarshal(raw, &single); err == nil && single.GeneratedText != "" {
		return single.GeneratedText
	}

	// Hugging Face 模型加载中会返回 {"error": "..."}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		logger.Printf("[Predictor] ⚠️  Provider returned error payload: %s", apiErr.Error)
		return ""
	}

	return string(raw)
}

// extractScore 取文本里从左到右第一个"个位数-个位数"作为比分
func (p *Predictor) extractScore(text string) string {
	if score := p.scoreRe.FindString(text); score != "" {
		return score
	}
	return p.fallback
}
