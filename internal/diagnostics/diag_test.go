package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/sequence"
)

func codes(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestSignDiagnostics(t *testing.T) {
	ok := layout.NewSign(100, 50, 0, 0, 10, 10, 10, 5)
	assert.Empty(t, Sign(ok))

	assert.Equal(t, []string{"SIGN.EMPTY"}, codes(Sign(layout.NewSign(0, 50, 0, 0, 10, 10, 10, 5))))

	clamped := layout.NewSign(100, 50, 0, 0, 20, 10, 10, 5).WithModules(3, 5)
	assert.Equal(t, []string{"SIGN.GEOMETRY_CLAMPED", "SIGN.MODULE_GRID"}, codes(Sign(clamped)))
}

func TestPageSetDiagnostics(t *testing.T) {
	s := layout.NewSign(100, 50, 0, 0, 10, 10, 2, 1)
	assert.Equal(t, []string{"PAGES.EMPTY"}, codes(PageSet(sequence.PageSet{}, s)))

	ps := sequence.PageSet{
		Rasters: []*raster.Raster{raster.MustParse("#."), nil, raster.MustParse("###")},
		OnTime:  []time.Duration{time.Second, time.Second, time.Second},
		OffTime: []time.Duration{0, 0, 0, 0},
	}
	ds := PageSet(ps, s)
	require.Len(t, ds, 3)
	assert.Equal(t, []string{"PAGES.LENGTH_MISMATCH", "PAGES.MISSING_RASTER", "PAGES.SIZE"}, codes(ds))
	assert.Equal(t, Warn, ds[2].Severity)
}
