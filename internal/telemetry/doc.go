// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为词频统计服务提供集中式的 TracerProvider 和 MeterProvider 配置。
//
// 资源属性除服务名与版本外，还带有监听地址、TLS、热更新与请求体上限等
// 需重启才会变化的部署参数。聚合任务与 HTTP 中间件分别使用 ScopeAggregate
// 与 ScopeHTTP 作为 instrumentation scope。遥测关闭时使用 noop 实现，
// 不连接任何外部服务。
package telemetry
