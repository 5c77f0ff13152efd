// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供词频统计服务的 HTTP 请求处理器。

# 概述

handlers 包实现 /wordcount 与各健康检查端点的请求处理逻辑，
以及统一的 JSON 响应与错误处理。所有 Handler 均遵循标准
net/http 接口，通过 Swagger 注解生成 API 文档。

# 核心类型

  - WordCountHandler — 解码 {"text": ...}，调用 Aggregator，返回单词到次数的映射
  - Aggregator       — 聚合器接口，由 aggregate.Orchestrator 实现
  - HealthHandler    — 存活与就绪检查（/health, /healthz, /ready, /version）
  - Response         — 错误与元数据端点使用的统一 JSON 信封
  - ErrorInfo        — 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter   — 包装 http.ResponseWriter 以捕获状态码与响应大小
  - HealthCheck      — 可插拔就绪检查接口

# 主要能力

  - /wordcount 成功时直接返回映射对象，不包信封；空文本返回 {}
  - 请求验证：DecodeJSONBody（可配置大小上限，超限 413，忽略未知字段，拒绝多余数据）
  - ValidateContentType：未设置按 JSON 处理，其他媒体类型返回 400
  - ErrorCode → HTTP 状态码映射（400/405/413/500/503）
  - /health 始终返回纯文本 OK，不依赖任何组件
  - AggregatorHealthCheck 用一次小型聚合验证流水线可用
*/
package handlers
