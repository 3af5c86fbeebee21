package preprocessing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestPortugueseStopwords(t *testing.T) {
	words := PortugueseStopwords()
	assert.Len(t, words, 207)
	assert.Contains(t, words, "não")
	assert.Contains(t, words, "vocês")
	assert.Equal(t, "a", words[0])
}

func TestTextCleanerClean(t *testing.T) {
	cleaner := NewPortugueseCleaner()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "stopwords and punctuation", in: "Isso NÃO é aceitável!", want: "aceitável"},
		{name: "mentions and urls", in: "@user vai embora... http://t.co/x", want: "user vai embora httptcox"},
		{name: "digits and underscore kept", in: "top_10 dos 2019", want: "top_10 2019"},
		{name: "whitespace collapsed", in: "  muito\t\tfeio \n hoje ", want: "feio hoje"},
		{name: "empty", in: "", want: ""},
		{name: "only stopwords", in: "de que o", want: ""},
		{name: "emoji removed", in: "lixo 😡😡", want: "lixo"},
		{name: "decomposed accents", in: "na\u0303o corac\u0327a\u0303o", want: "coração"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleaner.Clean(tt.in))
		})
	}
}

func TestTextCleanerWithoutStopwords(t *testing.T) {
	cleaner := NewTextCleaner()
	assert.Equal(t, "isso não é aceitável", cleaner.Clean("Isso NÃO é aceitável!"))
	assert.False(t, cleaner.IsStopword("não"))
}

func TestTextCleanerOptions(t *testing.T) {
	cleaner := NewTextCleaner(WithLanguage(language.Turkish), WithStopwords([]string{"bir"}))
	assert.Equal(t, "ıstanbul", cleaner.Clean("bir ISTANBUL"))
	assert.Equal(t, []string{"bir"}, cleaner.Stopwords())
}

func TestTextCleanerConcurrent(t *testing.T) {
	cleaner := NewPortugueseCleaner()
	docs := []string{"Que VERGONHA!!", "Eles são horríveis", "bom dia"}

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			results[g] = cleaner.CleanAll(docs)
		}(g)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []string{"vergonha", "horríveis", "bom dia"}, r)
	}
}
