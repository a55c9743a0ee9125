// Package pagetime validates DMS page on/off intervals against the system
// page-time policy.
package pagetime

import "time"

// Decisecond is the MULTI page-time unit.
const Decisecond = 100 * time.Millisecond

const (
	DefaultOn  = 2 * time.Second
	DefaultOff = 0
	MinOn      = 500 * time.Millisecond
	MaxOn      = 10 * time.Second
	MaxOff     = 60 * time.Second
)

// floorOn is the smallest on-time ever used for a multi-page message, even
// when the configured minimum is zero.
const floorOn = Decisecond

// Policy bounds page times. Zero values are replaced by the package
// defaults in Normalize.
type Policy struct {
	DefaultOn  time.Duration `yaml:"default_on" json:"default_on"`
	MinOn      time.Duration `yaml:"min_on" json:"min_on"`
	MaxOn      time.Duration `yaml:"max_on" json:"max_on"`
	DefaultOff time.Duration `yaml:"default_off" json:"default_off"`
	MaxOff     time.Duration `yaml:"max_off" json:"max_off"`
}

// DefaultPolicy mirrors the stock DMS system attributes.
func DefaultPolicy() Policy {
	return Policy{
		DefaultOn:  DefaultOn,
		MinOn:      MinOn,
		MaxOn:      MaxOn,
		DefaultOff: DefaultOff,
		MaxOff:     MaxOff,
	}
}

// Normalize fills unset bounds and orders min/max.
func (p Policy) Normalize() Policy {
	if p.MaxOn <= 0 {
		p.MaxOn = MaxOn
	}
	if p.MinOn < 0 {
		p.MinOn = 0
	}
	if p.MinOn > p.MaxOn {
		p.MinOn = p.MaxOn
	}
	if p.DefaultOn <= 0 {
		p.DefaultOn = DefaultOn
	}
	p.DefaultOn = clamp(p.DefaultOn, p.MinOn, p.MaxOn)
	if p.MaxOff <= 0 {
		p.MaxOff = MaxOff
	}
	p.DefaultOff = clamp(p.DefaultOff, 0, p.MaxOff)
	return p
}

// ValidateOn returns the on-time to use for a page. A single page may have
// an on-time of zero, meaning it is displayed until replaced; a page of a
// multi-page message always gets a positive on-time within the policy.
func (p Policy) ValidateOn(d time.Duration, singlePage bool) time.Duration {
	p = p.Normalize()
	if singlePage {
		if d <= 0 {
			return 0
		}
		return min(d, p.MaxOn)
	}
	if d <= 0 {
		d = p.DefaultOn
	}
	return clamp(d, max(p.MinOn, floorOn), max(p.MaxOn, floorOn))
}

// ValidateOff returns the off-time to use for a page. Negative values mean
// no blanking.
func (p Policy) ValidateOff(d time.Duration) time.Duration {
	p = p.Normalize()
	return clamp(d, 0, p.MaxOff)
}

// FromDeciseconds converts a MULTI page time.
func FromDeciseconds(ds int) time.Duration {
	return time.Duration(ds) * Decisecond
}

// ToDeciseconds converts d to the nearest whole decisecond.
func ToDeciseconds(d time.Duration) int {
	return int(d.Round(Decisecond) / Decisecond)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
