package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSequence(length, dim int) [][]float64 {
	seq := make([][]float64, length)
	for i := range seq {
		seq[i] = make([]float64, dim)
		for k := range seq[i] {
			// Offset keeps every vector away from zero norm
			seq[i][k] = math.Sin(0.1*float64(i)+0.3*float64(k)) + 1.5
		}
	}
	return seq
}

func TestAlignRejectsEmptySequences(t *testing.T) {
	dtw := NewDTW()
	valid := testSequence(3, 13)

	_, err := dtw.Align(nil, valid)
	assert.Error(t, err)
	_, err = dtw.Align(valid, nil)
	assert.Error(t, err)
	_, err = dtw.Align(nil, nil)
	assert.Error(t, err)
}

func TestAlignIdentity(t *testing.T) {
	// A sequence aligned with itself follows the zero-cost diagonal
	dtw := NewDTW()
	seq := testSequence(20, 13)

	result, err := dtw.Align(seq, seq)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.Cost, 1e-9)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.Equal(t, 20, result.QueryLength)
	assert.Equal(t, 20, result.RefLength)
}

func TestAlignSingleVector(t *testing.T) {
	// dp[1][1] = cosineDistance(v, v) = 0, score = 1 - 0/2 = 1
	dtw := NewDTW()
	v := []float64{1, 2, 3}

	result, err := dtw.Align([][]float64{v}, [][]float64{v})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.Cost, 1e-12)
	assert.InDelta(t, 1.0, result.Score, 1e-12)
	assert.Equal(t, []AlignPoint{{QueryIndex: 0, RefIndex: 0}}, result.Path)
}

func TestAlignSymmetry(t *testing.T) {
	dtw := NewDTW()
	seq1 := testSequence(12, 13)
	seq2 := testSequence(17, 13)
	for i := range seq2 {
		seq2[i][0] += 0.5 * float64(i%3)
	}

	forward, err := dtw.Align(seq1, seq2)
	require.NoError(t, err)
	backward, err := dtw.Align(seq2, seq1)
	require.NoError(t, err)

	assert.InDelta(t, forward.Score, backward.Score, 1e-12)
	assert.InDelta(t, forward.Cost, backward.Cost, 1e-12)
}

func TestAlignPathProperties(t *testing.T) {
	dtw := NewDTW()
	seq1 := testSequence(8, 5)
	seq2 := testSequence(11, 5)

	result, err := dtw.Align(seq1, seq2)
	require.NoError(t, err)
	require.NotEmpty(t, result.Path)

	// Path runs from (0,0) to the last pair, each step advancing one or
	// both indices by exactly one
	first := result.Path[0]
	last := result.Path[len(result.Path)-1]
	assert.Equal(t, AlignPoint{0, 0}, first)
	assert.Equal(t, AlignPoint{7, 10}, last)

	for i := 1; i < len(result.Path); i++ {
		dq := result.Path[i].QueryIndex - result.Path[i-1].QueryIndex
		dr := result.Path[i].RefIndex - result.Path[i-1].RefIndex
		assert.True(t, dq >= 0 && dq <= 1 && dr >= 0 && dr <= 1 && dq+dr > 0,
			"invalid step at %d: (%d,%d)", i, dq, dr)
	}
}

func TestAlignTimeStretchedSequence(t *testing.T) {
	// DTW absorbs temporal stretching: duplicating vectors (slower pacing)
	// should still score near 1 against the original
	dtw := NewDTW()
	base := testSequence(10, 13)

	stretched := make([][]float64, 0, 20)
	for _, v := range base {
		stretched = append(stretched, v, v)
	}

	result, err := dtw.Align(base, stretched)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
}

func TestAlignMonotonicDegradation(t *testing.T) {
	// Increasing noise magnitude must not increase the similarity score
	dtw := NewDTW()
	base := testSequence(15, 13)

	r := rand.New(rand.NewSource(7))
	noise := make([][]float64, len(base))
	for i := range noise {
		noise[i] = make([]float64, len(base[i]))
		for k := range noise[i] {
			noise[i][k] = r.NormFloat64()
		}
	}

	noisy := func(scale float64) [][]float64 {
		out := make([][]float64, len(base))
		for i := range base {
			out[i] = make([]float64, len(base[i]))
			for k := range base[i] {
				out[i][k] = base[i][k] + scale*noise[i][k]
			}
		}
		return out
	}

	scales := []float64{0.01, 0.1, 1.0, 10.0}
	scores := make([]float64, len(scales))
	for s, scale := range scales {
		result, err := dtw.Align(base, noisy(scale))
		require.NoError(t, err)
		scores[s] = result.Score
	}

	for s := 1; s < len(scores); s++ {
		assert.LessOrEqual(t, scores[s], scores[s-1]+1e-6,
			"score rose from scale %g to %g", scales[s-1], scales[s])
	}
	assert.Less(t, scores[len(scores)-1], scores[0])
}

func TestAlignBandConstraint(t *testing.T) {
	seq1 := testSequence(5, 4)
	seq2 := testSequence(9, 4)

	// A band narrower than the length difference leaves no valid path
	narrow := NewDTWWithParams(1, CosineDistance)
	_, err := narrow.Align(seq1, seq2)
	assert.Error(t, err)

	// A sufficiently wide band matches the unconstrained result
	wide := NewDTWWithParams(9, CosineDistance)
	unconstrained := NewDTW()

	wideResult, err := wide.Align(seq1, seq2)
	require.NoError(t, err)
	freeResult, err := unconstrained.Align(seq1, seq2)
	require.NoError(t, err)

	assert.InDelta(t, freeResult.Score, wideResult.Score, 1e-12)
}

func TestAlignCustomDistance(t *testing.T) {
	// nil distance falls back to cosine
	dtw := NewDTWWithParams(0, nil)
	seq := testSequence(4, 3)
	result, err := dtw.Align(seq, seq)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Score, 1e-9)

	// A constant distance makes the score purely path-length driven:
	// shortest path has max(len1,len2) steps
	constant := NewDTWWithParams(0, func(a, b []float64) float64 { return 1.0 })
	result, err = constant.Align(testSequence(3, 2), testSequence(5, 2))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, result.Cost, 1e-12)
	assert.InDelta(t, 1.0-5.0/8.0, result.Score, 1e-12)
}
