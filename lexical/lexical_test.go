package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdenticalTextIsMaximal(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the river bank"
	assert.InDelta(t, 1.0, Score(text, text), 1e-9)
}

func TestScoreUnrelatedTextIsLow(t *testing.T) {
	a := "Quantum entanglement describes correlated particle states"
	b := "Bananas are a good source of potassium and fiber"
	assert.Less(t, Score(a, b), 0.2)
}

func TestScoreSymmetricForSimilarLengths(t *testing.T) {
	a := "machine learning models require large amounts of training data"
	b := "large amounts of training data are required by machine learning models"
	s1 := Score(a, b)
	s2 := Score(b, a)
	assert.InDelta(t, s1, s2, 1e-9)
}

func TestScoreAsymmetricContainment(t *testing.T) {
	long := "the theory of general relativity describes gravitation as a geometric property of spacetime and was published by einstein in 1915 after years of careful work"
	short := "general relativity describes gravitation as a geometric property of spacetime"
	s := Score(long, short)
	assert.Greater(t, s, 0.5)
}

func TestScoreEmptyInputsAreZero(t *testing.T) {
	assert.Equal(t, 0.0, Score("", "something"))
	assert.Equal(t, 0.0, Score("something", ""))
	assert.Equal(t, 0.0, Score("", ""))
}

func TestJaccardKnownValue(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"b", "c", "d"}
	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)
}

func TestLCSLengthKnownValue(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := []string{"a", "c", "d"}
	assert.Equal(t, 3, lcsLength(a, b))
}
