package storage

import "errors"

// 比赛状态
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// ErrNotFound 指定的比赛记录不存在
var ErrNotFound = errors.New("match not found")

// MatchRecord 一条比赛记录
type MatchRecord struct {
	ID         int64  `json:"id"`
	Match      string `json:"match"`
	Date       string `json:"date"`
	Prediction string `json:"prediction,omitempty"`
	Odds       string `json:"odds,omitempty"`
	Result     string `json:"result,omitempty"`
	Status     string `json:"status"`
}

// MatchStore 比赛记录存储接口
//
// Append 由存储分配唯一递增的 ID；LoadAll 按插入顺序返回全部记录，
// 读失败时降级为空列表而不是报错，调用方无法区分"文件损坏"和"还没有比赛"。
// 实现必须能安全地被并发调用。
type MatchStore interface {
	Append(record MatchRecord) (MatchRecord, error)
	LoadAll() ([]MatchRecord, error)
	Resolve(id int64, result string) (MatchRecord, error)
}
