package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubGenerator 测试用的文本生成器
type stubGenerator struct {
	response []byte
	err      error
	calls    int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func TestPredictObjectResponse(t *testing.T) {
	stub := &stubGenerator{response: []byte(`{"generated_text":"The score will be 2-1 probably"}`)}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "2-1" {
		t.Errorf("Expected prediction '2-1', got '%s'", result.Prediction)
	}
}

func TestPredictListResponse(t *testing.T) {
	stub := &stubGenerator{response: []byte(`[{"generated_text":"3-0 is likely"}]`)}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "3-0" {
		t.Errorf("Expected prediction '3-0', got '%s'", result.Prediction)
	}
}

func TestPredictPlainTextResponse(t *testing.T) {
	stub := &stubGenerator{response: []byte("1-1 seems right")}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "1-1" {
		t.Errorf("Expected prediction '1-1', got '%s'", result.Prediction)
	}
}

func TestPredictNoScoreFallsBack(t *testing.T) {
	stub := &stubGenerator{response: []byte("I cannot predict this")}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != DefaultFallback {
		t.Errorf("Expected fallback '%s', got '%s'", DefaultFallback, result.Prediction)
	}
}

func TestPredictErrorPayloadFallsBack(t *testing.T) {
	stub := &stubGenerator{response: []byte(`{"error":"Model gpt2 is currently loading"}`)}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != DefaultFallback {
		t.Errorf("Expected fallback '%s', got '%s'", DefaultFallback, result.Prediction)
	}
}

func TestPredictProviderErrorFallsBack(t *testing.T) {
	stub := &stubGenerator{err: errors.New("connection refused")}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Expected degraded result instead of error, got %v", err)
	}

	if result.Prediction != DefaultFallback {
		t.Errorf("Expected fallback '%s', got '%s'", DefaultFallback, result.Prediction)
	}
	if result.Match != "Team A vs Team B" {
		t.Errorf("Expected match to be echoed back, got '%s'", result.Match)
	}
}

func TestPredictEmptyMatch(t *testing.T) {
	stub := &stubGenerator{response: []byte("2-2")}
	predictor := NewPredictor(stub, "")

	for _, match := range []string{"", "   "} {
		if _, err := predictor.Predict(context.Background(), match); err != ErrEmptyMatch {
			t.Errorf("Expected ErrEmptyMatch for '%s', got %v", match, err)
		}
	}

	if stub.calls != 0 {
		t.Errorf("Expected no provider calls for empty input, got %d", stub.calls)
	}
}

func TestPredictFirstScoreWins(t *testing.T) {
	stub := &stubGenerator{response: []byte("Maybe 4-2, though 1-0 is also possible")}
	predictor := NewPredictor(stub, "")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "4-2" {
		t.Errorf("Expected first score '4-2', got '%s'", result.Prediction)
	}
}

func TestPredictCustomFallback(t *testing.T) {
	stub := &stubGenerator{response: []byte("no idea")}
	predictor := NewPredictor(stub, "Prediction unavailable")

	result, err := predictor.Predict(context.Background(), "Team A vs Team B")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "Prediction unavailable" {
		t.Errorf("Expected custom fallback, got '%s'", result.Prediction)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	first := BuildPrompt("Team A vs Team B")
	second := BuildPrompt("Team A vs Team B")

	if first != second {
		t.Error("Expected identical prompts for identical input")
	}

	if !strings.Contains(first, "Team A vs Team B") {
		t.Error("Expected prompt to embed the match description")
	}
	if !strings.Contains(first, "X-Y") {
		t.Error("Expected prompt to request the X-Y format")
	}
}
