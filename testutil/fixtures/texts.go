// Package fixtures 提供词频统计测试使用的样例文本与期望结果。
package fixtures

import "strings"

// TextCase 一段输入文本及其期望的词频表
type TextCase struct {
	Name   string
	Text   string
	Want   map[string]int
	Tokens int
}

// ExampleSentence 是最常用的样例：大小写混合、重复单词
const ExampleSentence = "the quick brown fox the Fox"

// ExampleCounts 返回 ExampleSentence 的期望结果
func ExampleCounts() map[string]int {
	return map[string]int{"the": 2, "quick": 1, "brown": 1, "fox": 2}
}

// TextCases 返回覆盖常见边界的样例集合
func TextCases() []TextCase {
	return []TextCase{
		{
			Name:   "example sentence",
			Text:   ExampleSentence,
			Want:   ExampleCounts(),
			Tokens: 6,
		},
		{
			Name:   "empty",
			Text:   "",
			Want:   map[string]int{},
			Tokens: 0,
		},
		{
			Name:   "whitespace only",
			Text:   " \t\n\r\v\f ",
			Want:   map[string]int{},
			Tokens: 0,
		},
		{
			Name:   "punctuation kept",
			Text:   "Hello, hello world! WORLD!",
			Want:   map[string]int{"hello,": 1, "hello": 1, "world!": 2},
			Tokens: 4,
		},
		{
			Name:   "mixed whitespace",
			Text:   "a\tb\nc  a\r\nB",
			Want:   map[string]int{"a": 2, "b": 2, "c": 1},
			Tokens: 5,
		},
		{
			Name:   "unicode",
			Text:   "Éclair éclair naïve NAÏVE 你好 你好",
			Want:   map[string]int{"éclair": 2, "naïve": 2, "你好": 2},
			Tokens: 6,
		},
		{
			Name:   "hot key",
			Text:   strings.Repeat("Go go GO ", 1000),
			Want:   map[string]int{"go": 3000},
			Tokens: 3000,
		},
	}
}

// LargeText 生成 repeat 次 "alpha Beta gamma " 的文本，每个单词出现 repeat 次
func LargeText(repeat int) string {
	return strings.Repeat("alpha Beta gamma ", repeat)
}

// LargeCounts 返回 LargeText(repeat) 的期望结果
func LargeCounts(repeat int) map[string]int {
	return map[string]int{"alpha": repeat, "beta": repeat, "gamma": repeat}
}
