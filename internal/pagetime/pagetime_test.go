package pagetime

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var onCases = []struct {
	In     time.Duration
	Single bool
	Expect time.Duration
}{
	{0, true, 0},
	{-time.Second, true, 0},
	{300 * time.Millisecond, true, 300 * time.Millisecond},
	{time.Minute, true, MaxOn},
	{0, false, DefaultOn},
	{100 * time.Millisecond, false, MinOn},
	{3 * time.Second, false, 3 * time.Second},
	{time.Minute, false, MaxOn},
}

func TestValidateOn(t *testing.T) {
	p := DefaultPolicy()
	for k, v := range onCases {
		t.Run("Given on-time "+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, p.ValidateOn(v.In, v.Single))
		})
	}
}

func TestValidateOnZeroMinimum(t *testing.T) {
	p := Policy{MinOn: 0, MaxOn: 5 * time.Second, DefaultOn: time.Second}
	assert.Equal(t, floorOn, p.ValidateOn(time.Millisecond, false))
	assert.Equal(t, time.Second, p.ValidateOn(0, false))
}

func TestValidateOff(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, time.Duration(0), p.ValidateOff(-time.Second))
	assert.Equal(t, 200*time.Millisecond, p.ValidateOff(200*time.Millisecond))
	assert.Equal(t, MaxOff, p.ValidateOff(2*time.Minute))
}

func TestNormalize(t *testing.T) {
	p := Policy{MinOn: 20 * time.Second, MaxOn: 4 * time.Second}.Normalize()
	assert.Equal(t, 4*time.Second, p.MinOn)
	assert.Equal(t, 4*time.Second, p.DefaultOn)
	assert.Equal(t, MaxOff, p.MaxOff)

	n := Policy{}.Normalize()
	assert.Equal(t, DefaultOn, n.DefaultOn)
	assert.Equal(t, MaxOn, n.MaxOn)
	assert.Zero(t, n.MinOn)
}

func TestDeciseconds(t *testing.T) {
	assert.Equal(t, 2*time.Second, FromDeciseconds(20))
	assert.Equal(t, 0, ToDeciseconds(0))
	assert.Equal(t, 20, ToDeciseconds(2*time.Second))
	assert.Equal(t, 3, ToDeciseconds(260*time.Millisecond))
}

func TestMultiPageOnTimeAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Policy{
			DefaultOn: time.Duration(rapid.Int64Range(-1e10, 1e11).Draw(t, "def")),
			MinOn:     time.Duration(rapid.Int64Range(-1e10, 1e11).Draw(t, "min")),
			MaxOn:     time.Duration(rapid.Int64Range(-1e10, 1e11).Draw(t, "max")),
		}
		d := time.Duration(rapid.Int64Range(-1e11, 1e11).Draw(t, "on"))

		got := p.ValidateOn(d, false)
		if got <= 0 {
			t.Fatalf("multi-page on-time %v validated to %v", d, got)
		}
		n := p.Normalize()
		if got > max(n.MaxOn, floorOn) {
			t.Fatalf("on-time %v above maximum %v", got, n.MaxOn)
		}
		if single := p.ValidateOn(d, true); single < 0 {
			t.Fatalf("single-page on-time %v is negative", single)
		}
	})
}
