// Package counter 提供按 key 哈希分片的并发计数器。
//
// 每个分片持有一把独立的互斥锁与一张 map，写入只锁定目标分片，
// 不同分片上的写入互不阻塞。同一 key 总是落在同一分片。
package counter

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards 默认分片数。
const DefaultShards = 32

// FrequencyTable 单词到出现次数的映射。
type FrequencyTable map[string]int

// Total 返回所有计数之和，等于产生该表的 token 总数。
func (t FrequencyTable) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Get returns the count of word, 0 when absent.
func (t FrequencyTable) Get(word string) int {
	return t[word]
}

type shard struct {
	mu     sync.Mutex
	counts map[string]int
}

// Counter 分片计数器。零值不可用，请使用 New 创建。
type Counter struct {
	shards []*shard
}

// New 创建带有 shards 个分片的计数器，shards <= 0 时使用 DefaultShards。
func New(shards int) *Counter {
	if shards <= 0 {
		shards = DefaultShards
	}
	c := &Counter{shards: make([]*shard, shards)}
	for i := range c.shards {
		c.shards[i] = &shard{counts: make(map[string]int)}
	}
	return c
}

// Increment 将 token 的计数加一。
func (c *Counter) Increment(token string) {
	c.Add(token, 1)
}

// Add 将 token 的计数加 n，n <= 0 时忽略。
func (c *Counter) Add(token string, n int) {
	if n <= 0 {
		return
	}
	s := c.shardFor(token)
	s.mu.Lock()
	s.counts[token] += n
	s.mu.Unlock()
}

// Snapshot 合并所有分片到一张新的 FrequencyTable。
// 预期在所有写入者结束后调用；复制期间逐个锁定分片。
func (c *Counter) Snapshot() FrequencyTable {
	table := make(FrequencyTable, c.distinct())
	for _, s := range c.shards {
		s.mu.Lock()
		for k, v := range s.counts {
			table[k] = v
		}
		s.mu.Unlock()
	}
	return table
}

// Shards returns the shard count.
func (c *Counter) Shards() int {
	return len(c.shards)
}

// ShardSizes 返回每个分片中的不同 key 数量，用于观察分布。
func (c *Counter) ShardSizes() []int {
	sizes := make([]int, len(c.shards))
	for i, s := range c.shards {
		s.mu.Lock()
		sizes[i] = len(s.counts)
		s.mu.Unlock()
	}
	return sizes
}

func (c *Counter) distinct() int {
	n := 0
	for _, size := range c.ShardSizes() {
		n += size
	}
	return n
}

func (c *Counter) shardFor(token string) *shard {
	return c.shards[ShardIndex(token, len(c.shards))]
}

// ShardIndex 计算 token 在 n 个分片中的位置，对相同输入结果确定。
func ShardIndex(token string, n int) int {
	return int(xxhash.Sum64String(token) % uint64(n))
}
