package segment

import "math"

// memoTable holds, for every (offset, preceding word length) state, the best
// log score of the remaining suffix and the length of the first word on that path.
// Context length 0 stands for the caller supplied context and is only valid at offset 0.
type memoTable struct {
	width int
	score []float64
	next  []int32
}

func newMemoTable(n, maxLen int) *memoTable {
	width := maxLen + 1
	size := (n + 1) * width
	t := &memoTable{
		width: width,
		score: make([]float64, size),
		next:  make([]int32, size),
	}
	// the row at offset n stays 0: the empty suffix scores log(1) under any context
	for i := 0; i < n*width; i++ {
		t.score[i] = math.Inf(-1)
	}
	return t
}

func (t *memoTable) index(offset, ctx int) int {
	return offset*t.width + ctx
}

func (t *memoTable) get(offset, ctx int) (float64, int) {
	i := t.index(offset, ctx)
	return t.score[i], int(t.next[i])
}

func (t *memoTable) set(offset, ctx int, score float64, next int) {
	i := t.index(offset, ctx)
	t.score[i] = score
	t.next[i] = int32(next)
}
