package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"predict-service/logger"
	"predict-service/services"
)

// predictRequest 预测请求体
type predictRequest struct {
	Match string `json:"match"`
}

// handlePredict 为一场比赛生成比分预测。
// 只有缺少比赛描述才返回 400；推理服务失败一律降级为兜底值的 200 响应，
// 预测本来就是尽力而为，不值得让请求失败。
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Match is required")
		return
	}

	result, err := s.predictor.Predict(r.Context(), req.Match)
	if errors.Is(err, services.ErrEmptyMatch) {
		writeError(w, http.StatusBadRequest, "Match is required")
		return
	}
	if err != nil {
		// Predict 目前只会返回 ErrEmptyMatch，防御未来的实现变化
		logger.Errorf("[Predict] ❌ Unexpected error: %v", err)
		result = services.Prediction{Match: req.Match, Prediction: s.predictor.Fallback()}
	}

	logger.Printf("[Predict] %s -> %s", result.Match, result.Prediction)
	writeJSON(w, http.StatusOK, result)
}
