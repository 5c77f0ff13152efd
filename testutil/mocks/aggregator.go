// MockAggregator 的词频聚合器测试模拟实现。
//
// 支持固定结果与错误注入，并记录每次调用的文本。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/wordcount/counter"
)

// --- MockAggregator 结构 ---

// MockAggregator 是聚合器的模拟实现，满足 handlers.Aggregator
type MockAggregator struct {
	mu sync.RWMutex

	// 响应配置
	table counter.FrequencyTable
	err   error

	// 调用记录
	texts []string
}

// --- 构造函数和 Builder 方法 ---

// NewMockAggregator 创建新的 MockAggregator，默认返回空表
func NewMockAggregator() *MockAggregator {
	return &MockAggregator{
		table: counter.FrequencyTable{},
	}
}

// WithTable 设置固定返回的词频表
func (m *MockAggregator) WithTable(table counter.FrequencyTable) *MockAggregator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = table
	return m
}

// WithError 设置返回的错误
func (m *MockAggregator) WithError(err error) *MockAggregator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// --- 接口实现 ---

// Run 返回配置的结果，失败时不返回部分结果
func (m *MockAggregator) Run(_ context.Context, text string) (counter.FrequencyTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

// --- 查询方法 ---

// CallCount 返回调用次数
func (m *MockAggregator) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.texts)
}

// LastText 返回最近一次调用的文本
func (m *MockAggregator) LastText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}
