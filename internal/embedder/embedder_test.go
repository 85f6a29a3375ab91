package embedder

import (
	"math"
	"testing"
)

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sumSq)-1) > 1e-6 {
		t.Errorf("||v|| = %f, want 1", math.Sqrt(sumSq))
	}
}

func TestNormalizeZeroVectorIsUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for _, x := range v {
		if x != 0 {
			t.Errorf("Normalize(zero vector) = %v, want unchanged", v)
		}
	}
}
