package matrix_test

import (
	"testing"

	"github.com/katalvlaran/tuneq/matrix"
)

// benchComposite folds n copies of a biased 2×2 readout matrix.
func benchComposite(b *testing.B, n int) *matrix.Dense {
	b.Helper()
	q, err := matrix.NewDenseFrom([][]float64{{0.97, 0.03}, {0.06, 0.94}})
	if err != nil {
		b.Fatal(err)
	}
	acc, _ := matrix.NewIdentity(1)
	for i := 0; i < n; i++ {
		if acc, err = matrix.Kron(acc, q); err != nil {
			b.Fatal(err)
		}
	}

	return acc
}

func BenchmarkKron8(b *testing.B) {
	for i := 0; i < b.N; i++ {
		benchComposite(b, 8)
	}
}

func BenchmarkInverse6(b *testing.B) {
	m := benchComposite(b, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := matrix.Inverse(m); err != nil {
			b.Fatal(err)
		}
	}
}
