package tokenizer

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "whitespace only", input: " \t\r\n ", expected: nil},
		{name: "mixed case", input: "The Quick BROWN fox", expected: []string{"the", "quick", "brown", "fox"}},
		{name: "runs of whitespace", input: "  a\t\tb\n\nc  ", expected: []string{"a", "b", "c"}},
		{name: "punctuation kept", input: "Hello, world! hello", expected: []string{"hello,", "world!", "hello"}},
		{name: "non-ascii letters", input: "Straße ÉTÉ x", expected: []string{"straße", "été", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Tokens(tt.input))
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), Count(tt.input))
		})
	}
}

func TestTokens_Restartable(t *testing.T) {
	seq := Tokens("one Two three")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}

func TestTokens_EarlyStop(t *testing.T) {
	var got []string
	for tok := range Tokens("a b c d") {
		got = append(got, tok)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestChunks(t *testing.T) {
	t.Run("single chunk when size disabled", func(t *testing.T) {
		assert.Equal(t, []string{"a b"}, Chunks("a b", 0))
		assert.Equal(t, []string{"a b"}, Chunks("a b", 100))
	})

	t.Run("empty and blank input", func(t *testing.T) {
		assert.Empty(t, Chunks("", 4))
		assert.Empty(t, Chunks("    ", 2))
		assert.Empty(t, Chunks("   ", 0))
	})

	t.Run("cuts on whitespace", func(t *testing.T) {
		chunks := Chunks("alpha beta gamma delta", 3)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			for _, tok := range strings.Fields(c) {
				assert.Contains(t, []string{"alpha", "beta", "gamma", "delta"}, tok)
			}
		}
		assert.Equal(t, "alpha beta gamma delta", strings.Join(chunks, ""))
	})

	t.Run("multibyte runes are never split", func(t *testing.T) {
		text := "héllo wörld ünïcödé"
		for size := 1; size < len(text); size++ {
			for _, c := range Chunks(text, size) {
				assert.True(t, utf8.ValidString(c), "size %d produced invalid chunk %q", size, c)
			}
		}
	})
}

// TestProperty_ChunksPreserveTokens 任意切块大小下，片段的 token 序列与原文一致。
func TestProperty_ChunksPreserveTokens(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Zé.,! \t\n]{0,200}`).Draw(rt, "text")
		size := rapid.IntRange(-1, 64).Draw(rt, "size")

		var got []string
		for _, chunk := range Chunks(text, size) {
			got = append(got, slices.Collect(Tokens(chunk))...)
		}
		want := slices.Collect(Tokens(text))

		if !slices.Equal(got, want) {
			rt.Fatalf("tokens differ for size %d: got %v want %v", size, got, want)
		}
	})
}

// TestProperty_TokensAreLowercase token 中不含大写字母，且数量与 strings.Fields 一致。
func TestProperty_TokensAreLowercase(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,100}`).Draw(rt, "text")

		n := 0
		for tok := range Tokens(text) {
			if tok != strings.ToLower(tok) || tok == "" {
				rt.Fatalf("token %q not normalized", tok)
			}
			n++
		}
		if n != len(strings.Fields(text)) {
			rt.Fatalf("token count %d != fields %d", n, len(strings.Fields(text)))
		}
	})
}
