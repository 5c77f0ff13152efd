// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供词频统计服务测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试与基准测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: ExpiredContext，自动注册 Cleanup 防止泄漏
  - 断言工具: AssertTableEqual / AssertTableTotal（基于 testify）
  - 数据工具: MustJSON / WriteFile
  - TLS 辅助: SelfSignedCert 生成 127.0.0.1 可用的自签名证书
  - 基准辅助: BenchmarkHelper 封装 testing.B 常用操作

# 子包

  - testutil/mocks: MockAggregator，支持固定结果与错误注入
  - testutil/fixtures: 样例文本与期望词频表

# 使用示例

	agg := mocks.NewMockAggregator().WithTable(counter.FrequencyTable{"a": 1})
	table, err := agg.Run(context.Background(), "a")
	testutil.AssertTableEqual(t, fixtures.ExampleCounts(), table)
*/
package testutil
