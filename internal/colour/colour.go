// Package colour parses and formats the hex colours used by splash options.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGBA represents a colour with an alpha channel.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ParseHex parses #RGB, #RGBA, #RRGGBB or #RRGGBBAA. The leading hash is
// optional. Alpha defaults to fully opaque.
func ParseHex(hex string) (RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	switch len(s) {
	case 3, 4:
		expanded := make([]byte, 0, len(s)*2)
		for i := 0; i < len(s); i++ {
			expanded = append(expanded, s[i], s[i])
		}
		s = string(expanded)
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("invalid hex colour %q: expected 3, 4, 6 or 8 digits", hex)
	}

	value, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}

	if len(s) == 6 {
		return RGBA{R: uint8(value >> 16), G: uint8(value >> 8), B: uint8(value), A: 255}, nil
	}
	return RGBA{R: uint8(value >> 24), G: uint8(value >> 16), B: uint8(value >> 8), A: uint8(value)}, nil
}

// Hex returns the colour as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c RGBA) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c RGBA) String() string {
	return c.Hex()
}

// Color converts to the standard library colour type.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Alpha is ignored. Returns a value between 0 (darkest) and 1 (lightest).
func (c RGBA) Luminance() float64 {
	return 0.2126*gammaCorrect(float64(c.R)/255) +
		0.7152*gammaCorrect(float64(c.G)/255) +
		0.0722*gammaCorrect(float64(c.B)/255)
}

func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colours, from 1 to 21.
func ContrastRatio(a, b RGBA) float64 {
	l1, l2 := a.Luminance(), b.Luminance()
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}
