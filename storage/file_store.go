package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"predict-service/logger"
)

// FileStore 把全部比赛记录保存为单个 JSON 数组文件。
// 整个文件是读写的最小单位：写入先落到同目录的临时文件再原子替换，
// 所以任何时刻磁盘上要么是旧的完整快照，要么是新的完整快照。
type FileStore struct {
	path   string
	mu     sync.Mutex
	lastID int64
}

// NewFileStore 创建文件存储
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadAll 按插入顺序返回全部记录。
// 文件不存在或内容损坏时返回空列表（宽松读策略，见 readSnapshot）。
func (s *FileStore) LoadAll() ([]MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSnapshot(), nil
}

// Append 分配新 ID 并把记录追加到文件末尾。
// 读-改-写在同一个临界区内完成，并发 Append 不会互相覆盖。
func (s *FileStore) Append(record MatchRecord) (MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readSnapshot()
	record.ID = s.nextID(records)
	if record.Status == "" {
		record.Status = StatusPending
	}
	records = append(records, record)

	if err := s.writeSnapshot(records); err != nil {
		return MatchRecord{}, fmt.Errorf("failed to write matches file: %w", err)
	}
	return record, nil
}

// Resolve 把指定记录标记为已结算并写入赛果
func (s *FileStore) Resolve(id int64, result string) (MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readSnapshot()
	for i := range records {
		if records[i].ID == id {
			records[i].Result = result
			records[i].Status = StatusResolved
			if err := s.writeSnapshot(records); err != nil {
				return MatchRecord{}, fmt.Errorf("failed to write matches file: %w", err)
			}
			return records[i], nil
		}
	}
	return MatchRecord{}, ErrNotFound
}

// readSnapshot 读取当前快照。
// 文件缺失和内容损坏都降级为空列表，保证服务在部分损坏后仍然可用。
func (s *FileStore) readSnapshot() []MatchRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Printf("[FileStore] ⚠️  Failed to read %s, starting empty: %v", s.path, err)
		}
		return []MatchRecord{}
	}

	var records []MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Printf("[FileStore] ⚠️  Matches file corrupted, starting empty: %v", err)
		return []MatchRecord{}
	}
	return records
}

// writeSnapshot 写出完整快照：先写临时文件，再原子替换
func (s *FileStore) writeSnapshot(records []MatchRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "matches-*.json")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

// nextID 生成唯一递增 ID（创建时间的毫秒数，同一毫秒内落盘的记录顺延）。
// 必须在持有 s.mu 时调用。
func (s *FileStore) nextID(records []MatchRecord) int64 {
	for _, r := range records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
