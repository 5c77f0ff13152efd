// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 WordCount 服务的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 aggregate、api 等上层模块
提供统一的错误契约，以避免循环依赖。

# 核心类型

  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码与 Retryable 标记

# 主要能力

  - 错误工具链：AsError / IsErrorCode / IsRetryable / GetErrorCode
  - 常用错误构造：NewInvalidRequestError / NewAggregationError /
    NewTimeoutError / NewCanceledError
*/
package types
