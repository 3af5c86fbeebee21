// Package feature_extraction はscikit-learn互換のテキスト特徴量抽出を提供します。
package feature_extraction

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/preprocessing"
)

// DefaultMaxFeatures は評価パイプラインで使う語彙数の上限
const DefaultMaxFeatures = 5000

// TfidfVectorizer はscikit-learn互換のTF-IDFベクトライザー
//
// トークンは2文字以上の単語文字(\w)の連続。IDFは平滑化版
// ln((1+n)/(1+df))+1 を使い、各行をL2正規化する。
// Fit は渡された文書だけから語彙とIDFを学習するため、
// 交差検証では訓練foldの文書だけを渡すこと。
type TfidfVectorizer struct {
	state *model.StateManager

	// ハイパーパラメータ
	maxFeatures int // 0以下は無制限
	lowercase   bool
	stopWords   map[string]struct{}

	// 学習済みパラメータ
	vocabulary map[string]int
	terms      []string // 列番号順(アルファベット順)
	idf        []float64
}

// TfidfOption はTfidfVectorizerの関数オプション
type TfidfOption func(*TfidfVectorizer)

// NewTfidfVectorizer はscikit-learnのデフォルト設定と
// MaxFeatures = DefaultMaxFeatures でベクトライザーを作成する
func NewTfidfVectorizer(opts ...TfidfOption) *TfidfVectorizer {
	v := &TfidfVectorizer{
		state:       model.NewStateManager(),
		maxFeatures: DefaultMaxFeatures,
		lowercase:   true,
		stopWords:   map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithMaxFeatures は語彙を出現頻度上位n語に制限する。n <= 0 で制限なし
func WithMaxFeatures(n int) TfidfOption {
	return func(v *TfidfVectorizer) {
		v.maxFeatures = n
	}
}

// WithStopWords は集計前に指定トークンを除外する
func WithStopWords(words []string) TfidfOption {
	return func(v *TfidfVectorizer) {
		v.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			v.stopWords[w] = struct{}{}
		}
	}
}

// WithLowercase はトークン化前の小文字化を切り替える
func WithLowercase(lower bool) TfidfOption {
	return func(v *TfidfVectorizer) {
		v.lowercase = lower
	}
}

// Fit は文書集合から語彙とIDFを学習する
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.NewModelError("TfidfVectorizer.Fit", "empty data", errors.ErrEmptyData)
	}

	termFreq := make(map[string]int)
	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = v.analyze(d)
		for _, t := range docTokens[i] {
			termFreq[t]++
		}
	}
	if len(termFreq) == 0 {
		return errors.NewValueError("TfidfVectorizer.Fit",
			"empty vocabulary; the documents may contain only stop words")
	}

	terms := limitFeatures(termFreq, v.maxFeatures)
	vocab := make(map[string]int, len(terms))
	for j, t := range terms {
		vocab[t] = j
	}

	df := make([]int, len(terms))
	seen := make(map[int]struct{})
	for _, tokens := range docTokens {
		clear(seen)
		for _, t := range tokens {
			if j, ok := vocab[t]; ok {
				if _, dup := seen[j]; !dup {
					seen[j] = struct{}{}
					df[j]++
				}
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for j := range terms {
		idf[j] = math.Log((1+n)/(1+float64(df[j]))) + 1
	}

	v.vocabulary = vocab
	v.terms = terms
	v.idf = idf
	v.state.SetFitted(len(terms), len(docs))
	return nil
}

// Transform は学習済み語彙で文書をTF-IDF行列に変換する
//
// 戻り値は *CSR (n_docs × n_features)。語彙外のトークンは無視し、
// 語彙内のトークンを含まない行はゼロ行になる。
func (v *TfidfVectorizer) Transform(docs []string) (mat.Matrix, error) {
	X, err := v.transform(docs)
	if err != nil {
		return nil, err
	}
	return X, nil
}

// FitTransform はFitとTransformを連続して行う
func (v *TfidfVectorizer) FitTransform(docs []string) (mat.Matrix, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

func (v *TfidfVectorizer) transform(docs []string) (*CSR, error) {
	if err := v.state.RequireFitted("TfidfVectorizer", "Transform"); err != nil {
		return nil, err
	}

	b := newCSRBuilder(len(docs), len(v.terms))
	row := make(map[int]float64)
	for _, d := range docs {
		clear(row)
		for _, t := range v.analyze(d) {
			if j, ok := v.vocabulary[t]; ok {
				row[j]++
			}
		}
		var norm float64
		for j, tf := range row {
			w := tf * v.idf[j]
			row[j] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		b.addRow(row)
	}
	return b.build(), nil
}

// Vocabulary は語→列番号の対応のコピーを返す
func (v *TfidfVectorizer) Vocabulary() map[string]int {
	out := make(map[string]int, len(v.vocabulary))
	for t, j := range v.vocabulary {
		out[t] = j
	}
	return out
}

// FeatureNames は列順に語を返す
func (v *TfidfVectorizer) FeatureNames() []string {
	return append([]string(nil), v.terms...)
}

// IDF は学習済みの逆文書頻度を列順に返す
func (v *TfidfVectorizer) IDF() []float64 {
	return append([]float64(nil), v.idf...)
}

// GetParams は model.ParameterGetter を実装する
func (v *TfidfVectorizer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_features": v.maxFeatures,
		"lowercase":    v.lowercase,
		"stop_words":   len(v.stopWords),
		"smooth_idf":   true,
		"norm":         "l2",
	}
}

// analyze はトークン化してストップワードを除外する
func (v *TfidfVectorizer) analyze(doc string) []string {
	if v.lowercase {
		doc = strings.ToLower(doc)
	}
	tokens := tokenize(doc)
	if len(v.stopWords) == 0 {
		return tokens
	}
	kept := tokens[:0]
	for _, t := range tokens {
		if _, stop := v.stopWords[t]; !stop {
			kept = append(kept, t)
		}
	}
	return kept
}

// tokenize は2文字以上の単語文字の最長連続を返す
func tokenize(doc string) []string {
	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 && utf8.RuneCountInString(doc[start:end]) >= 2 {
			tokens = append(tokens, doc[start:end])
		}
		start = -1
	}
	for i, r := range doc {
		if preprocessing.IsWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(doc))
	return tokens
}

// limitFeatures は頻度上位maxFeatures語を残す。同頻度は辞書順で決め、
// 結果は辞書順に並べて返す
func limitFeatures(termFreq map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(termFreq))
	for t := range termFreq {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	if maxFeatures <= 0 || len(terms) <= maxFeatures {
		return terms
	}

	sort.SliceStable(terms, func(a, b int) bool {
		return termFreq[terms[a]] > termFreq[terms[b]]
	})
	terms = terms[:maxFeatures]
	sort.Strings(terms)
	return terms
}

var _ model.TextVectorizer = (*TfidfVectorizer)(nil)
