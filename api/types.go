package api

// =============================================================================
// 词频统计类型
// =============================================================================

// WordCountRequest 词频统计请求。
// Text 为指针以区分缺失字段与空字符串：缺失返回 400，空字符串返回 {}。
// @Description 词频统计请求结构
type WordCountRequest struct {
	// 待统计的文本
	Text *string `json:"text" example:"the quick brown fox the Fox" binding:"required"`
}

// WordCountResponse 单词到出现次数的映射，作为 JSON 对象直接返回。
// @Description 词频统计结果
type WordCountResponse map[string]int

// VersionInfo /version 返回的构建信息。
type VersionInfo struct {
	Version   string `json:"version" example:"1.0.0"`
	BuildTime string `json:"build_time" example:"2026-01-01T00:00:00Z"`
	GitCommit string `json:"git_commit" example:"abc1234"`
}
