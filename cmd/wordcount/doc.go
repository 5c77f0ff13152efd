// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供词频统计服务的程序入口。

# 概述

cmd/wordcount 是服务的可执行入口，基于 urfave/cli 提供 serve、health、
version 三个子命令。serve 加载 YAML + 环境变量配置，初始化 zap 日志与
OpenTelemetry，组装聚合器与 HTTP handlers，并在独立端口暴露 Prometheus 指标。

# 核心类型

  - Server          — 主服务器，管理 API 与 Metrics 两个监听及优雅关闭
  - Middleware      — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - metricsObserver — 把聚合任务生命周期事件写入 Prometheus 收集器

# 主要能力

  - 路由：POST /wordcount、/health（纯文本 OK）、/healthz、/ready、/version
  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、
    MetricsMiddleware、RequestLogger、CORS
  - 配置热重载：wordcount.hot_reload 开启时，配置文件变化会更新聚合参数
    与日志级别，只影响之后开始的任务
  - 优雅关闭：信号监听 → 停止热更新 → 关闭 API → 关闭 Metrics → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
