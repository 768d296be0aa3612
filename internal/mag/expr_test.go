// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/ai-research/pkg/types"
)

// --- BuildExpr ---

func TestBuildExpr_Literals(t *testing.T) {
	got, err := BuildExpr([]int64{1, 2}, "Id", 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(Id=1,Id=2)"}, got)

	got, err = BuildExpr([]string{"cat", "dog"}, "Ti", 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(Ti='cat',Ti='dog')"}, got)

	got, err = BuildExpr([]int64{1, 2, 3}, "Id", 21)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(Id=1,Id=2)", "expr=OR(Id=3)"}, got)
}

func TestBuildExpr_IntTerms(t *testing.T) {
	got, err := BuildExpr([]int{7}, "FId", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(FId=7)"}, got)
}

func TestBuildExpr_Errors(t *testing.T) {
	_, err := BuildExpr([]int64{}, "Id", 1000)
	assert.ErrorIs(t, err, ErrNoTerms)

	_, err = BuildExpr([]string{"a very long field of study name"}, "F.FN", 20)
	assert.ErrorIs(t, err, ErrTermTooLong)
}

func TestBuildExpr_ExactFit(t *testing.T) {
	// "expr=OR(Id=1,Id=2)" is 18 characters.
	got, err := BuildExpr([]int64{1, 2}, "Id", 18)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(Id=1,Id=2)"}, got)

	got, err = BuildExpr([]int64{1, 2}, "Id", 17)
	require.NoError(t, err)
	assert.Equal(t, []string{"expr=OR(Id=1)", "expr=OR(Id=2)"}, got)
}

var clauseRe = regexp.MustCompile(`^expr=OR\((.*)\)$`)

// termsOf recovers the Id values of a chain of Id clauses.
func termsOf(t *testing.T, exprs []string) []string {
	t.Helper()
	var out []string
	for _, e := range exprs {
		m := clauseRe.FindStringSubmatch(e)
		require.NotNil(t, m, "clause %q", e)
		for _, part := range strings.Split(m[1], ",") {
			out = append(out, strings.TrimPrefix(part, "Id="))
		}
	}
	return out
}

func TestBuildExpr_PartitionProperty(t *testing.T) {
	ids := make([]int64, 0, 500)
	want := make([]string, 0, 500)
	for i := int64(0); i < 500; i++ {
		id := 2000000000 + i*7919
		ids = append(ids, id)
		want = append(want, fmt.Sprint(id))
	}

	for _, maxLen := range []int{25, 64, 200, 1000, 16000} {
		t.Run(fmt.Sprintf("maxLen=%d", maxLen), func(t *testing.T) {
			exprs, err := BuildExpr(ids, "Id", maxLen)
			require.NoError(t, err)

			for _, e := range exprs {
				assert.LessOrEqual(t, len(e), maxLen)
			}
			assert.Equal(t, want, termsOf(t, exprs))
			if maxLen < 16000 {
				assert.GreaterOrEqual(t, len(exprs), 2)
			} else {
				assert.Len(t, exprs, 1)
			}
		})
	}
}

func TestBuildExpr_Greedy(t *testing.T) {
	// Each clause except the last must be unable to take the next term.
	ids := []int64{10, 200, 3000, 40000, 5, 60, 700}
	maxLen := 30
	exprs, err := BuildExpr(ids, "Id", maxLen)
	require.NoError(t, err)

	terms := termsOf(t, exprs)
	idx := 0
	for i, e := range exprs {
		idx += len(strings.Split(clauseRe.FindStringSubmatch(e)[1], ","))
		if i < len(exprs)-1 {
			grown := len(e) + len(",Id=") + len(terms[idx])
			assert.Greater(t, grown, maxLen, "clause %d could have taken another term", i)
		}
	}
}

// --- composite expressions ---

func TestBuildCompositeExpr(t *testing.T) {
	got := BuildCompositeExpr([]string{"dog", "cat"}, "F.FN", 2000)
	assert.Equal(t,
		"expr=OR(And(Composite(F.FN='dog'), Y>=2000), And(Composite(F.FN='cat'), Y>=2000))",
		got)
}

func TestBuildCompositeExprDate(t *testing.T) {
	w := types.DateWindow{StartMonth: 1, EndMonth: 6, StartDay: 1, EndDay: 1}
	got := BuildCompositeExprDate([]string{"dog", "cat"}, "F.FN", 2000, w)
	assert.Equal(t,
		"expr=OR(And(Composite(F.FN='dog'), D=['2000-01-01','2000-06-01']), And(Composite(F.FN='cat'), D=['2000-01-01','2000-06-01']))",
		got)
}

func TestBuildCompositeExprDate_SecondHalf(t *testing.T) {
	got := BuildCompositeExprDate([]string{"deep learning"}, "F.FN", 2019, DefaultWindows()[1])
	assert.Equal(t,
		"expr=OR(And(Composite(F.FN='deep learning'), D=['2019-06-01','2019-12-31']))",
		got)
}

func TestBuildCompositeExprsDate_SplitsWithinLimit(t *testing.T) {
	w := DefaultWindows()[0]
	terms := []string{"deep learning", "machine learning", "neural network", "computer vision", "robotics"}
	one := BuildCompositeExprDate(terms[:1], "F.FN", 2020, w)
	maxLen := len(one) + 40

	exprs, err := BuildCompositeExprsDate(terms, "F.FN", 2020, w, maxLen)
	require.NoError(t, err)
	require.Greater(t, len(exprs), 1)

	var got []string
	for _, e := range exprs {
		assert.LessOrEqual(t, len(e), maxLen)
		for _, m := range regexp.MustCompile(`F\.FN='([^']*)'`).FindAllStringSubmatch(e, -1) {
			got = append(got, m[1])
		}
	}
	assert.Equal(t, terms, got)
}

func TestBuildCompositeExprsDate_ExactFit(t *testing.T) {
	w := DefaultWindows()[1]
	both := BuildCompositeExprDate([]string{"dog", "cat"}, "F.FN", 2000, w)

	got, err := BuildCompositeExprsDate([]string{"dog", "cat"}, "F.FN", 2000, w, len(both))
	require.NoError(t, err)
	assert.Equal(t, []string{both}, got)

	got, err = BuildCompositeExprsDate([]string{"dog", "cat"}, "F.FN", 2000, w, len(both)-1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		BuildCompositeExprDate([]string{"dog"}, "F.FN", 2000, w),
		BuildCompositeExprDate([]string{"cat"}, "F.FN", 2000, w),
	}, got)
}

func TestBuildCompositeExprsDate_NoLimit(t *testing.T) {
	w := DefaultWindows()[0]
	terms := []string{"dog", "cat", "bird"}
	got, err := BuildCompositeExprsDate(terms, "F.FN", 2000, w, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{BuildCompositeExprDate(terms, "F.FN", 2000, w)}, got)
}

func TestBuildCompositeExprsDate_Errors(t *testing.T) {
	w := DefaultWindows()[0]
	_, err := BuildCompositeExprsDate(nil, "F.FN", 2000, w, 1000)
	assert.ErrorIs(t, err, ErrNoTerms)

	_, err = BuildCompositeExprsDate([]string{"dog"}, "F.FN", 2000, w, 40)
	assert.ErrorIs(t, err, ErrTermTooLong)
}

func TestDefaultWindows(t *testing.T) {
	w := DefaultWindows()
	require.Len(t, w, 2)
	assert.Equal(t, types.DateWindow{StartMonth: 1, EndMonth: 6, StartDay: 1, EndDay: 1}, w[0])
	assert.Equal(t, types.DateWindow{StartMonth: 6, EndMonth: 12, StartDay: 1, EndDay: 31}, w[1])
}
