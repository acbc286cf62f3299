package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"predict-service/logger"
	"predict-service/services"
	"predict-service/storage"
)

// addMatchRequest 添加比赛的请求体
type addMatchRequest struct {
	Password   string `json:"password"`
	Match      string `json:"match"`
	Date       string `json:"date"`
	Prediction string `json:"prediction"`
	Odds       string `json:"odds"`
}

// resolveMatchRequest 结算比赛的请求体
type resolveMatchRequest struct {
	Password string `json:"password"`
	ID       int64  `json:"id"`
	Result   string `json:"result"`
}

// handleGetMatches 获取全部比赛列表(公开)
func (s *Server) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loadMatches())
}

// handleAdminMatches 获取全部比赛列表(管理员，密码走查询参数)
func (s *Server) handleAdminMatches(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("password") != s.config.AdminPassword {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, s.loadMatches())
}

// handleAddMatch 添加一场比赛(管理员)
func (s *Server) handleAddMatch(w http.ResponseWriter, r *http.Request) {
	var req addMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Password != s.config.AdminPassword {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if req.Match == "" || req.Date == "" {
		writeError(w, http.StatusBadRequest, "Match and date are required")
		return
	}

	record, err := s.store.Append(storage.MatchRecord{
		Match:      req.Match,
		Date:       req.Date,
		Prediction: req.Prediction,
		Odds:       req.Odds,
	})
	if err != nil {
		logger.Errorf("[Matches] ❌ Failed to save match: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save match")
		return
	}

	logger.Printf("[Matches] ✅ Added match %d: %s (%s)", record.ID, record.Match, record.Date)

	s.wsHub.Broadcast(services.EventMatchAdded, record)
	s.events.Publish(services.EventMatchAdded, record)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"match":   record,
	})
}

// handleResolveMatch 结算一场比赛(管理员)
func (s *Server) handleResolveMatch(w http.ResponseWriter, r *http.Request) {
	var req resolveMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Password != s.config.AdminPassword {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if req.ID == 0 || req.Result == "" {
		writeError(w, http.StatusBadRequest, "Id and result are required")
		return
	}

	record, err := s.store.Resolve(req.ID, req.Result)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Match not found")
		return
	}
	if err != nil {
		logger.Errorf("[Matches] ❌ Failed to resolve match %d: %v", req.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve match")
		return
	}

	logger.Printf("[Matches] ✅ Resolved match %d: %s", record.ID, record.Result)

	s.wsHub.Broadcast(services.EventMatchResolved, record)
	s.events.Publish(services.EventMatchResolved, record)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"match":   record,
	})
}

// loadMatches 读取全部记录，空列表序列化为 [] 而不是 null
func (s *Server) loadMatches() []storage.MatchRecord {
	records, err := s.store.LoadAll()
	if err != nil {
		// 存储层按宽松读策略不会返回错误，这里兜底降级为空列表
		logger.Errorf("[Matches] ❌ Failed to load matches: %v", err)
		return []storage.MatchRecord{}
	}
	if records == nil {
		records = []storage.MatchRecord{}
	}
	return records
}
