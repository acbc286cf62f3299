package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"predict-service/logger"
)

// 比赛事件类型
const (
	EventMatchAdded    = "match_added"
	EventMatchResolved = "match_resolved"
)

// MatchEvent 发布到交换机的事件结构
type MatchEvent struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// MatchEventPublisher 把比赛变更事件发布到 AMQP fanout 交换机。
// 未配置 AMQP 地址时为空操作，下游没有消费者不影响主流程。
type MatchEventPublisher struct {
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	enabled  bool
}

// NewMatchEventPublisher 创建事件发布器，amqpURL 为空时禁用
func NewMatchEventPublisher(amqpURL, exchange string) (*MatchEventPublisher, error) {
	if amqpURL == "" {
		logger.Println("[MatchEvents] Disabled (no AMQP URL)")
		return &MatchEventPublisher{}, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Printf("[MatchEvents] ✅ Connected to AMQP, exchange: %s", exchange)

	return &MatchEventPublisher{
		exchange: exchange,
		conn:     conn,
		channel:  channel,
		enabled:  true,
	}, nil
}

// Publish 发布一条事件，失败只记日志不影响请求
func (p *MatchEventPublisher) Publish(eventType string, data interface{}) {
	if !p.enabled {
		return
	}

	body, err := json.Marshal(MatchEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
	if err != nil {
		logger.Errorf("[MatchEvents] ❌ Failed to marshal event: %v", err)
		return
	}

	err = p.channel.Publish(p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		logger.Errorf("[MatchEvents] ❌ Failed to publish %s event: %v", eventType, err)
	}
}

// Close 关闭 AMQP 连接
func (p *MatchEventPublisher) Close() {
	if !p.enabled {
		return
	}
	p.channel.Close()
	p.conn.Close()
	logger.Println("[MatchEvents] Connection closed")
}
