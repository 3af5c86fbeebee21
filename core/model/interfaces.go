// Package model defines the capability interfaces the cross-validation core
// consumes. Concrete classifiers and vectorizers live in sklearn/...; the core
// only sees these interfaces.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// BinaryClassifier は二値の確率的分類器のインターフェース
type BinaryClassifier interface {
	// Fit は特徴量行列Xと0/1のターゲットyで学習する
	Fit(X mat.Matrix, y []float64) error

	// PredictProba は各行について陽性クラスの確率を返す
	PredictProba(X mat.Matrix) ([]float64, error)
}

// ClassifierFactory creates a fresh, unfitted classifier. The per-label trainer
// calls it once per (fold, label) pair so no model state crosses folds or labels.
type ClassifierFactory func() BinaryClassifier

// TextVectorizer はテキストを数値特徴量に変換するインターフェース。
// Fit と Transform は分離されており、Fit は渡されたテキストだけを見る。
type TextVectorizer interface {
	// Fit は語彙やIDFなどの状態を学習する
	Fit(docs []string) error

	// Transform は学習済みの状態でテキストを特徴量行列に変換する
	Transform(docs []string) (mat.Matrix, error)
}

// VectorizerFactory creates a fresh, unfitted vectorizer for one fold.
type VectorizerFactory func() TextVectorizer

// ParameterGetter is implemented by estimators that expose their hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
