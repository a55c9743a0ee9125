package testpattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/sequence"
)

func sign(w, h int) layout.Sign {
	return layout.NewSign(100, 100, 0, 0, 10, 10, w, h)
}

func frames(t *testing.T, k Kind, s layout.Sign) []string {
	t.Helper()
	var out []string
	r := NewRunner(Plan{Kind: k})
	for {
		f, ok := r.Step(s)
		if !ok {
			return out
		}
		out = append(out, f.Rows()...)
		out = append(out, "")
	}
}

func TestAllOn(t *testing.T) {
	assert.Equal(t, []string{"###", "###", ""}, frames(t, AllOn, sign(3, 2)))
}

func TestChecker(t *testing.T) {
	assert.Equal(t, []string{
		"#.#", ".#.", "",
		".#.", "#.#", "",
	}, frames(t, Checker, sign(3, 2)))
}

func TestCells(t *testing.T) {
	s := sign(4, 2).WithCells(2, 2)
	assert.Equal(t, []string{
		"##..", "##..", "",
		"..##", "..##", "",
	}, frames(t, Cells, s))
}

func TestSweeps(t *testing.T) {
	assert.Equal(t, []string{
		"#..", "#..", "",
		".#.", ".#.", "",
		"..#", "..#", "",
	}, frames(t, ColumnSweep, sign(3, 2)))
	assert.Equal(t, []string{
		"###", "...", "",
		"...", "###", "",
	}, frames(t, RowSweep, sign(3, 2)))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("checker")
	require.NoError(t, err)
	assert.Equal(t, Checker, k)

	_, err = ParseKind("plaid")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestPages(t *testing.T) {
	ps, err := Pages(Plan{Kind: ColumnSweep}, sign(5, 1), 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 5, ps.Len())
	assert.Equal(t, 500*time.Millisecond, ps.OnTime[4])
	assert.Zero(t, ps.OffTime[0])

	_, err = Pages(Plan{Kind: ColumnSweep}, sign(0, 1), time.Second)
	assert.ErrorIs(t, err, sequence.ErrEmptyPageSet)

	_, err = Pages(Plan{Kind: "plaid"}, sign(5, 1), time.Second)
	assert.ErrorIs(t, err, ErrUnknownPattern)
}
