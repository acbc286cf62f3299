package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"predict-service/config"
	"predict-service/logger"
	"predict-service/services"
	"predict-service/storage"
)

type Server struct {
	config     *config.Config
	store      storage.MatchStore
	predictor  *services.Predictor
	events     *services.MatchEventPublisher
	wsHub      *Hub
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, store storage.MatchStore, predictor *services.Predictor, events *services.MatchEventPublisher, hub *Hub) *Server {
	return &Server{
		config:    cfg,
		store:     store,
		predictor: predictor,
		events:    events,
		wsHub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

// Handler 组装路由和中间件，测试直接用它而不经过监听端口
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	// API路由
	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/matches", s.handleGetMatches).Methods("GET")
	router.HandleFunc("/predict", s.handlePredict).Methods("POST")

	// 管理员路由
	router.HandleFunc("/admin/matches", s.handleAdminMatches).Methods("GET")
	router.HandleFunc("/admin/add-match", s.handleAddMatch).Methods("POST")
	router.HandleFunc("/admin/resolve-match", s.handleResolveMatch).Methods("POST")

	// WebSocket路由
	router.HandleFunc("/ws", s.handleWebSocket)

	// 静态前端
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	// CORS配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        ":" + s.config.Port,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// 写超时要覆盖推理调用最坏情况(超时 + 一次重试)
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleWebSocket WebSocket连接处理
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// 发送欢迎消息
	welcome, _ := json.Marshal(&WSMessage{
		Type:      "connected",
		Timestamp: time.Now().Unix(),
	})
	client.send <- welcome

	go client.writePump()
	go client.readPump()
}

// writeJSON 输出JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// writeError 输出JSON错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
