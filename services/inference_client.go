package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"predict-service/logger"
)

const (
	// DefaultInferenceURL 默认的推理服务地址
	DefaultInferenceURL = "https://api-inference.huggingface.co/models/gpt2"

	// DefaultInferenceTimeout 默认的单次请求超时（模型冷启动可能很慢）
	DefaultInferenceTimeout = 10 * time.Second

	// retryDelay 重试前的等待时间
	retryDelay = 1 * time.Second
)

// InferenceClient 文本生成推理服务的客户端。
// 只负责发请求拿原始响应体，响应内容不可信，解析交给上层。
type InferenceClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// InferenceConfig 推理客户端配置
type InferenceConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewInferenceClient 用默认配置创建客户端
func NewInferenceClient(token string) *InferenceClient {
	return NewInferenceClientWithConfig(InferenceConfig{Token: token})
}

// NewInferenceClientWithConfig 用自定义配置创建客户端
func NewInferenceClientWithConfig(config InferenceConfig) *InferenceClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultInferenceURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultInferenceTimeout
	}

	return &InferenceClient{
		baseURL: config.BaseURL,
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// generateRequest 推理服务的请求体
type generateRequest struct {
	Inputs string `json:"inputs"`
}

// Generate 把提示词发给推理服务，返回原始响应体。
// 传输失败或非 2xx 时重试一次（推理服务不保证可用性）。
func (c *InferenceClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(generateRequest{Inputs: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var raw []byte
	err = retry(ctx, 2, retryDelay, func() error {
		data, err := c.doGenerate(ctx, body)
		if err != nil {
			return err
		}
		raw = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func (c *InferenceClient) doGenerate(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Code: resp.StatusCode, Message: string(data)}
	}

	return data, nil
}

// retry 简单重试：失败后等一拍再试，上下文取消时立刻放弃
func retry(ctx context.Context, attempts int, sleep time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		logger.Printf("[Inference] ⚠️  Attempt %d failed, retrying: %v", i+1, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(sleep):
		}
	}
	return err
}

// APIError 推理服务返回的非 2xx 响应
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inference API error %d: %s", e.Code, e.Message)
}
