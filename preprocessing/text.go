// Package preprocessing はコーパス読み込み時に適用するテキスト正規化を提供します。
package preprocessing

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

//go:embed stopwords_pt.txt
var portugueseStopwordsFile string

// PortugueseStopwords はNLTKのポルトガル語ストップワード一覧を返す
func PortugueseStopwords() []string {
	return strings.Fields(portugueseStopwordsFile)
}

// TextCleaner は文書を小文字化し、記号を除去し、ストップワードを落とす
//
// 処理順:
//  1. NFC正規化と言語タグに従った小文字化
//  2. 文字・数字・'_'・空白以外の文字を削除
//  3. 空白で分割し、ストップワードを除外
//  4. 単一スペースで連結
//
// TextCleaner は不変で、複数のgoroutineから同時に使用できる
type TextCleaner struct {
	lang      language.Tag
	stopwords map[string]struct{}
}

// CleanerOption はTextCleanerの設定を変更する
type CleanerOption func(*TextCleaner)

// WithLanguage は小文字化に使う言語タグを設定する
func WithLanguage(tag language.Tag) CleanerOption {
	return func(c *TextCleaner) {
		c.lang = tag
	}
}

// WithStopwords はストップワード集合を置き換える。nilを渡すと除外を行わない
func WithStopwords(words []string) CleanerOption {
	return func(c *TextCleaner) {
		c.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			c.stopwords[w] = struct{}{}
		}
	}
}

// NewTextCleaner は新しいTextCleanerを作成する。デフォルトはブラジルポルトガル語で
// ストップワードなし
func NewTextCleaner(opts ...CleanerOption) *TextCleaner {
	c := &TextCleaner{
		lang:      language.BrazilianPortuguese,
		stopwords: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewPortugueseCleaner はポルトガル語ストップワードを除外するTextCleanerを作成する
//
// 使用例:
//
//	cleaner := preprocessing.NewPortugueseCleaner()
//	cleaned := cleaner.Clean("Isso NÃO é aceitável!")  // "aceitável"
func NewPortugueseCleaner() *TextCleaner {
	return NewTextCleaner(WithStopwords(PortugueseStopwords()))
}

// Clean は1文書を正規化する
func (c *TextCleaner) Clean(raw string) string {
	// Caserは状態を持つため呼び出しごとに作成する
	lowered := cases.Lower(c.lang).String(norm.NFC.String(raw))

	stripped := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lowered)

	words := strings.Fields(stripped)
	kept := words[:0]
	for _, w := range words {
		if _, stop := c.stopwords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// CleanAll は各文書にCleanを適用した新しいスライスを返す
func (c *TextCleaner) CleanAll(docs []string) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = c.Clean(d)
	}
	return out
}

// IsStopword は語がストップワード集合に含まれるかを返す
func (c *TextCleaner) IsStopword(word string) bool {
	_, ok := c.stopwords[word]
	return ok
}

// Stopwords はストップワード集合をソート済みで返す
func (c *TextCleaner) Stopwords() []string {
	out := make([]string, 0, len(c.stopwords))
	for w := range c.stopwords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// isWordRune は正規表現の \w (Unicode) に相当する
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsWordRune はクリーナーと同じ単語文字の判定をトークナイザーに公開する
func IsWordRune(r rune) bool {
	return isWordRune(r)
}
