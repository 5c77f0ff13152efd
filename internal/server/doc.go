// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理单个 HTTP/HTTPS 监听器的生命周期：非阻塞启动、
优雅关闭与系统信号监听。

# 核心类型

  - Manager：持有 http.Server、net.Listener 与异步错误通道，
    提供 Start/Shutdown/WaitForShutdown 等方法。
  - Config：按名称区分的监听配置（api / metrics），包含地址、
    读写与空闲超时、请求头上限、关闭超时以及可选的证书与私钥。

# 主要能力

  - 非阻塞启动：Start 同步完成监听，失败立即返回；服务在后台
    goroutine 中运行。监听地址为 ":0" 时可通过 ListenAddr 取得
    实际端口。
  - TLS：证书与私钥同时配置时，Start 使用 tlsutil.ServerTLSConfig
    包装监听器，否则以明文 HTTP 提供服务。
  - 优雅关闭：Shutdown 在 ShutdownTimeout 内排空进行中的请求；
    关闭后的 Manager 不能再次启动（ErrServerClosed）。
  - 信号监听：WaitForShutdown 在 SIGINT/SIGTERM、context 结束或
    服务异常退出时返回。
*/
package server
