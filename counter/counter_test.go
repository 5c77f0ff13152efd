package counter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew_DefaultShards(t *testing.T) {
	assert.Equal(t, DefaultShards, New(0).Shards())
	assert.Equal(t, DefaultShards, New(-3).Shards())
	assert.Equal(t, 7, New(7).Shards())
}

func TestCounter_IncrementAndSnapshot(t *testing.T) {
	c := New(4)
	for _, w := range []string{"the", "quick", "the", "fox", "fox", "the"} {
		c.Increment(w)
	}
	c.Add("quick", 2)
	c.Add("ignored", 0)
	c.Add("ignored", -1)

	snap := c.Snapshot()
	assert.Equal(t, FrequencyTable{"the": 3, "quick": 3, "fox": 2}, snap)
	assert.Equal(t, 8, snap.Total())
	assert.Equal(t, 0, snap.Get("ignored"))
}

func TestCounter_SnapshotIsCopy(t *testing.T) {
	c := New(2)
	c.Increment("a")
	snap := c.Snapshot()
	snap["a"] = 100
	c.Increment("a")

	assert.Equal(t, 2, c.Snapshot()["a"])
}

func TestCounter_EmptySnapshot(t *testing.T) {
	snap := New(8).Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap)
	assert.Equal(t, 0, snap.Total())
}

func TestShardIndex_Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("word-%d", i)
		idx := ShardIndex(key, 16)
		assert.Equal(t, idx, ShardIndex(key, 16))
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 16)
	}
}

func TestCounter_ShardSizes(t *testing.T) {
	c := New(8)
	for i := 0; i < 1000; i++ {
		c.Increment(fmt.Sprintf("k%d", i))
	}
	sizes := c.ShardSizes()
	require.Len(t, sizes, 8)

	total := 0
	used := 0
	for _, n := range sizes {
		total += n
		if n > 0 {
			used++
		}
	}
	assert.Equal(t, 1000, total)
	assert.Greater(t, used, 1, "keys should spread across shards")
}

// TestCounter_HotKeyStress N 个 goroutine 各对同一个 key 自增 M 次，结果恰为 N*M。
func TestCounter_HotKeyStress(t *testing.T) {
	const (
		workers    = 64
		increments = 5000
	)
	c := New(DefaultShards)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < increments; j++ {
				c.Increment("hot")
			}
		}()
	}
	close(start)
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, workers*increments, snap["hot"])
	assert.Len(t, snap, 1)
}

func TestCounter_ConcurrentDistinctKeys(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Increment(fmt.Sprintf("w%d", j%50))
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Len(t, snap, 50)
	assert.Equal(t, 32*200, snap.Total())
	for _, n := range snap {
		assert.Equal(t, 32*4, n)
	}
}

// TestProperty_TotalMatchesIncrements 计数总和等于自增次数，且与分片数无关。
func TestProperty_TotalMatchesIncrements(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		shards := rapid.IntRange(1, 64).Draw(rt, "shards")
		keys := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,4}`)).Draw(rt, "keys")

		c := New(shards)
		ref := New(1)
		for _, k := range keys {
			c.Increment(k)
			ref.Increment(k)
		}

		snap := c.Snapshot()
		if snap.Total() != len(keys) {
			rt.Fatalf("total %d != %d", snap.Total(), len(keys))
		}
		if !assert.ObjectsAreEqual(ref.Snapshot(), snap) {
			rt.Fatalf("shard count changed the table: %v vs %v", snap, ref.Snapshot())
		}
	})
}
