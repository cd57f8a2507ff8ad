package stats

import (
	"fmt"
	"math"
)

// DTW performs Dynamic Time Warping alignment between two feature-vector
// sequences. DTW absorbs local stretching and compression of the time axis,
// which is what makes two recitations of the same utterance comparable even
// when pacing differs.
type DTW struct {
	constraintBand int // Sakoe-Chiba band radius, <= 0 disables the band
	distance       DistanceFunc
}

// DTWResult contains DTW alignment results
type DTWResult struct {
	Cost        float64      `json:"cost"`         // Cumulative cost of the optimal path
	Score       float64      `json:"score"`        // Length-normalized similarity, approximately [0, 1]
	Path        []AlignPoint `json:"path"`         // Optimal alignment path
	QueryLength int          `json:"query_length"` // Length of query sequence
	RefLength   int          `json:"ref_length"`   // Length of reference sequence
}

// AlignPoint represents a point in the alignment path
type AlignPoint struct {
	QueryIndex int `json:"query_index"` // Index in query sequence
	RefIndex   int `json:"ref_index"`   // Index in reference sequence
}

// NewDTW creates a DTW aligner with cosine distance and no band constraint
func NewDTW() *DTW {
	return &DTW{
		constraintBand: -1,
		distance:       CosineDistance,
	}
}

// NewDTWWithParams creates a DTW aligner with a Sakoe-Chiba band radius and
// a custom distance function. A band radius <= 0 leaves the full cost matrix
// in play; a positive radius must be at least |len(query)-len(reference)| or
// no path can reach the end of both sequences.
func NewDTWWithParams(constraintBand int, distance DistanceFunc) *DTW {
	if distance == nil {
		distance = CosineDistance
	}
	return &DTW{
		constraintBand: constraintBand,
		distance:       distance,
	}
}

// Align computes the optimal alignment between query and reference.
//
// The cost matrix is (len(query)+1) x (len(reference)+1) with dp[0][0] = 0
// and every other boundary cell +Inf, so the path is forced to start by
// consuming the first element of each sequence. Each interior cell adds the
// local distance to the cheapest of its insertion/deletion/match
// predecessors. The score is 1 - dp[n][m]/(n+m): a heuristic similarity
// that reaches 1 for identical sequences and can dip below 0 when the
// average per-step distance exceeds 1. It is reported unclamped.
func (dtw *DTW) Align(query, reference [][]float64) (*DTWResult, error) {
	if len(query) == 0 || len(reference) == 0 {
		return nil, fmt.Errorf("empty sequences provided")
	}

	queryLen := len(query)
	refLen := len(reference)

	dp := make([][]float64, queryLen+1)
	for i := range dp {
		dp[i] = make([]float64, refLen+1)
		for j := range dp[i] {
			dp[i][j] = math.Inf(1)
		}
	}
	dp[0][0] = 0

	for i := 1; i <= queryLen; i++ {
		for j := 1; j <= refLen; j++ {
			if dtw.constraintBand > 0 && abs(i-j) > dtw.constraintBand {
				continue
			}

			cost := dtw.distance(query[i-1], reference[j-1])
			dp[i][j] = cost + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
		}
	}

	finalCost := dp[queryLen][refLen]
	if math.IsInf(finalCost, 1) {
		return nil, fmt.Errorf("band radius %d leaves no valid path for lengths %d and %d",
			dtw.constraintBand, queryLen, refLen)
	}

	return &DTWResult{
		Cost:        finalCost,
		Score:       1.0 - finalCost/float64(queryLen+refLen),
		Path:        backtrack(dp, queryLen, refLen),
		QueryLength: queryLen,
		RefLength:   refLen,
	}, nil
}

// backtrack recovers one optimal path from the filled cost matrix. Ties
// between predecessors are broken arbitrarily; any choice yields the same
// cumulative cost.
func backtrack(dp [][]float64, queryLen, refLen int) []AlignPoint {
	var reversed []AlignPoint

	i, j := queryLen, refLen
	for i >= 1 && j >= 1 {
		reversed = append(reversed, AlignPoint{QueryIndex: i - 1, RefIndex: j - 1})

		up := dp[i-1][j]
		left := dp[i][j-1]
		diag := dp[i-1][j-1]

		switch {
		case diag <= up && diag <= left:
			i, j = i-1, j-1
		case up <= left:
			i--
		default:
			j--
		}
	}

	// Reverse into path order, start of sequences first
	path := make([]AlignPoint, len(reversed))
	for k, p := range reversed {
		path[len(reversed)-1-k] = p
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
