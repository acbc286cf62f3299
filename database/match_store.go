package database

import (
	"database/sql"
	"errors"
	"fmt"

	"predict-service/logger"
	"predict-service/storage"
)

// MatchStore 基于 Postgres 的比赛记录存储，实现 storage.MatchStore。
// BIGSERIAL 主键天然满足 ID 唯一且递增，插入顺序即 ID 顺序。
type MatchStore struct {
	db *sql.DB
}

// NewMatchStore 创建 Postgres 比赛存储
func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// Append 插入一条记录并返回带 ID 的完整记录
func (s *MatchStore) Append(record storage.MatchRecord) (storage.MatchRecord, error) {
	if record.Status == "" {
		record.Status = storage.StatusPending
	}

	query := `
		INSERT INTO matches (match_text, match_date, prediction, odds, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRow(query,
		record.Match, record.Date, record.Prediction, record.Odds, record.Status,
	).Scan(&record.ID)
	if err != nil {
		return storage.MatchRecord{}, fmt.Errorf("failed to insert match: %w", err)
	}

	return record, nil
}

// LoadAll 按插入顺序返回全部记录。
// 与文件存储保持同一宽松读策略：查询失败降级为空列表。
func (s *MatchStore) LoadAll() ([]storage.MatchRecord, error) {
	query := `
		SELECT id, match_text, match_date,
		       COALESCE(prediction, ''), COALESCE(odds, ''), COALESCE(result, ''), status
		FROM matches
		ORDER BY id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		logger.Printf("[PGStore] ⚠️  Failed to load matches, returning empty: %v", err)
		return []storage.MatchRecord{}, nil
	}
	defer rows.Close()

	records := []storage.MatchRecord{}
	for rows.Next() {
		var r storage.MatchRecord
		if err := rows.Scan(&r.ID, &r.Match, &r.Date, &r.Prediction, &r.Odds, &r.Result, &r.Status); err != nil {
			continue
		}
		records = append(records, r)
	}

	return records, nil
}

// Resolve 把指定记录标记为已结算并写入赛果
func (s *MatchStore) Resolve(id int64, result string) (storage.MatchRecord, error) {
	query := `
		UPDATE matches
		SET result = $1, status = $2
		WHERE id = $3
		RETURNING id, match_text, match_date,
		          COALESCE(prediction, ''), COALESCE(odds, ''), COALESCE(result, ''), status
	`

	var r storage.MatchRecord
	err := s.db.QueryRow(query, result, storage.StatusResolved, id).Scan(
		&r.ID, &r.Match, &r.Date, &r.Prediction, &r.Odds, &r.Result, &r.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MatchRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.MatchRecord{}, fmt.Errorf("failed to resolve match: %w", err)
	}

	return r, nil
}
