// Package diagnostic 应用内诊断日志: 有界内存环 + zap 镜像, 供本地 API 查询
package diagnostic

import (
	"strings"
	"sync"
	"time"

	"desk-wallet/pkg/logger"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelDebug   Level = "DEBUG"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// ParseLevel 大小写不敏感, 未知值返回 false
func ParseLevel(s string) (Level, bool) {
	switch l := Level(strings.ToUpper(s)); l {
	case LevelInfo, LevelDebug, LevelWarning, LevelError:
		return l, true
	}
	return "", false
}

type Record struct {
	Time    time.Time         `json:"time"`
	Level   Level             `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Sink 诊断记录的去处; 调用方不得因写入失败中断业务
type Sink interface {
	Write(rec Record) error
}

// Nop 丢弃所有记录
type Nop struct{}

func (Nop) Write(Record) error { return nil }

// Memory 保留最近 capacity 条记录, 并镜像到全局 zap logger
type Memory struct {
	mu       sync.Mutex
	records  []Record
	next     int
	full     bool
	capacity int
	now      func() time.Time
}

const DefaultCapacity = 500

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{records: make([]Record, capacity), capacity: capacity, now: time.Now}
}

func (m *Memory) Write(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = m.now()
	}
	if rec.Level == "" {
		rec.Level = LevelInfo
	}

	m.mu.Lock()
	m.records[m.next] = rec
	m.next = (m.next + 1) % m.capacity
	if m.next == 0 {
		m.full = true
	}
	m.mu.Unlock()

	mirror(rec)
	return nil
}

// Records 按写入顺序返回; level 为空时返回全部
func (m *Memory) Records(level Level) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ordered []Record
	if m.full {
		ordered = append(ordered, m.records[m.next:]...)
	}
	ordered = append(ordered, m.records[:m.next]...)

	if level == "" {
		return ordered
	}
	out := ordered[:0:0]
	for _, r := range ordered {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

func mirror(rec Record) {
	fields := make([]zap.Field, 0, len(rec.Fields)+1)
	fields = append(fields, zap.String("source", "diagnostic"))
	for k, v := range rec.Fields {
		fields = append(fields, zap.String(k, v))
	}
	switch rec.Level {
	case LevelDebug:
		logger.Debug(rec.Message, fields...)
	case LevelWarning:
		logger.Warn(rec.Message, fields...)
	case LevelError:
		logger.Error(rec.Message, fields...)
	default:
		logger.Info(rec.Message, fields...)
	}
}
