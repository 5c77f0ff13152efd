// Package config 提供 WordCount 服务的配置管理功能。
//
// 支持从 YAML 文件、环境变量加载配置（命令行参数由 cmd 覆盖），
// 并可在配置文件变化时热更新聚合参数与日志级别。
package config
