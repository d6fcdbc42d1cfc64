package gallery

import (
	"strings"

	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// Orientation selects the axis bins are arranged along.
//
// Horizontal lays bins out as columns that scroll vertically; Vertical lays
// bins out as rows that scroll horizontally. The set is closed: any other
// value reaching the engine is a programming error and panics.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns the lowercase name of the orientation.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "invalid"
	}
}

// Valid reports whether o is one of the declared orientations.
func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// ParseOrientation converts user input into an Orientation. Unlike the
// engine, which panics on out-of-set values, parsing untrusted text returns
// an INVALID_ORIENTATION error.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "columns":
		return Horizontal, nil
	case "vertical", "v", "rows":
		return Vertical, nil
	default:
		return Horizontal, perrors.New(perrors.ErrCodeInvalidOrientation,
			"invalid orientation %q (must be 'horizontal' or 'vertical')", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, invalidOrientation(o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// mustBeValid panics when o is outside the closed set.
func (o Orientation) mustBeValid() {
	if !o.Valid() {
		panic(invalidOrientation(o))
	}
}

// mainExtent returns the viewport dimension bins are packed across.
func (o Orientation) mainExtent(v Viewport) float64 {
	switch o {
	case Horizontal:
		return v.Width
	case Vertical:
		return v.Height
	default:
		panic(invalidOrientation(o))
	}
}

// scrollExtent returns the viewport dimension along the scroll axis.
func (o Orientation) scrollExtent(v Viewport) float64 {
	switch o {
	case Horizontal:
		return v.Height
	case Vertical:
		return v.Width
	default:
		panic(invalidOrientation(o))
	}
}

// scrollFraction picks the scroll fraction of the scroll axis.
func (o Orientation) scrollFraction(s ScrollPosition) float64 {
	switch o {
	case Horizontal:
		return s.V
	case Vertical:
		return s.H
	default:
		panic(invalidOrientation(o))
	}
}

// crossExtent derives an item's size along the scroll axis from its
// main-axis extent, preserving the item's aspect ratio (width / height).
func (o Orientation) crossExtent(mainExtent, aspect float64) float64 {
	switch o {
	case Horizontal:
		return mainExtent / aspect
	case Vertical:
		return mainExtent * aspect
	default:
		panic(invalidOrientation(o))
	}
}

func invalidOrientation(o Orientation) *perrors.Error {
	return perrors.New(perrors.ErrCodeInvalidOrientation,
		"orientation %d is neither horizontal nor vertical", int(o))
}
