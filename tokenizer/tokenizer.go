// Package tokenizer 将文本切分为小写化的单词序列，并按空白边界切块供并发统计。
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokens 返回 text 的惰性 token 序列。
// 以连续的 Unicode 空白作为分隔，不产生空 token，每个 token 经 Normalize 小写化。
// 标点保留在 token 内。序列可重复遍历，每次遍历都从头开始。
func Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for field := range strings.FieldsSeq(text) {
			if !yield(Normalize(field)) {
				return
			}
		}
	}
}

// Normalize 对单个单词做大小写折叠。不做词干化，也不区分 locale。
func Normalize(word string) string {
	return strings.ToLower(word)
}

// Count returns the number of tokens in text.
func Count(text string) int {
	n := 0
	for range strings.FieldsSeq(text) {
		n++
	}
	return n
}

// Chunks 把 text 切成约 size 字节的连续片段，切点总落在空白字符上，
// 因此任何 token 都不会跨越两个片段。不含 token 的片段被丢弃，
// 所有片段的 token 序列与 text 的 token 序列一致。
// size <= 0 或 size >= len(text) 时返回单个片段。
func Chunks(text string, size int) []string {
	if size <= 0 || size >= len(text) {
		if hasToken(text) {
			return []string{text}
		}
		return nil
	}

	chunks := make([]string, 0, len(text)/size+1)
	for start := 0; start < len(text); {
		end := cutPoint(text, start+size)
		if chunk := text[start:end]; hasToken(chunk) {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}

// cutPoint 从 pos 向后推进到下一个空白字符（或文本末尾）。
func cutPoint(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	// 对齐到 rune 起始字节
	for pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	for pos < len(text) {
		r, width := utf8.DecodeRuneInString(text[pos:])
		if unicode.IsSpace(r) {
			break
		}
		pos += width
	}
	return pos
}

func hasToken(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}
