// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package styles

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/image/colornames"
)

// splitNumber parses a single css number, dimension or percentage
// token, returning its value and unit ("%" for percentages).
func splitNumber(s string) (float64, string, error) {
	l := css.NewLexer(parse.NewInputString(strings.TrimSpace(s)))
	var num float64
	unit := ""
	got := false
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() != io.EOF {
				return 0, "", l.Err()
			}
			if !got {
				return 0, "", fmt.Errorf("no number in %q", s)
			}
			return num, unit, nil
		case css.WhitespaceToken:
			continue
		case css.NumberToken, css.DimensionToken, css.PercentageToken:
			if got {
				return 0, "", fmt.Errorf("more than one value in %q", s)
			}
			got = true
			str := string(data)
			switch tt {
			case css.PercentageToken:
				str, unit = strings.TrimSuffix(str, "%"), "%"
			case css.DimensionToken:
				i := len(str)
				for i > 0 && isLetter(str[i-1]) {
					i--
				}
				str, unit = str[:i], strings.ToLower(str[i:])
			}
			v, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return 0, "", err
			}
			num = v
		default:
			return 0, "", fmt.Errorf("%q is not a number", s)
		}
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// toFloat32 converts to float32, rejecting values that are not finite.
func toFloat32(v float64, s string) (float32, error) {
	f := float32(v)
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// ParseFloat parses a plain number. A "px" unit is accepted and ignored.
func ParseFloat(s string) (float32, error) {
	v, unit, err := splitNumber(s)
	if err != nil {
		return 0, err
	}
	if unit != "" && unit != "px" {
		return 0, fmt.Errorf("unexpected unit %q in %q", unit, s)
	}
	return toFloat32(v, s)
}

// ParseInt parses a whole number.
func ParseInt(s string) (int, error) {
	f, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != math32.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// ParseAngle parses an angle into radians. It accepts deg, rad,
// grad and turn units; a bare number is in radians.
func ParseAngle(s string) (float32, error) {
	v, unit, err := splitNumber(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "rad":
	case "deg":
		v = v * (float64(math32.Pi) / 180)
	case "grad":
		v = v * (float64(math32.Pi) / 200)
	case "turn":
		v = v * 2 * float64(math32.Pi)
	default:
		return 0, fmt.Errorf("unknown angle unit %q in %q", unit, s)
	}
	return toFloat32(v, s)
}

// ParseDuration parses a duration. It accepts s and ms units,
// and Go duration strings such as 1m30s; a bare number is in seconds.
func ParseDuration(s string) (time.Duration, error) {
	v, unit, err := splitNumber(s)
	if err != nil {
		d, derr := time.ParseDuration(strings.TrimSpace(s))
		if derr != nil {
			return 0, err
		}
		return d, nil
	}
	if _, err := toFloat32(v, s); err != nil {
		return 0, err
	}
	switch unit {
	case "", "s":
		return time.Duration(v * float64(time.Second)), nil
	case "ms":
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return 0, fmt.Errorf("unknown duration unit %q in %q", unit, s)
}

// ParseBool parses a boolean. An empty value is true, matching
// HTML boolean attributes; yes/no and on/off are also accepted.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// ParseColor parses a color given as #rgb, #rrggbb, rgb(r, g, b),
// rgba(r, g, b, a) or a CSS color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 255}, nil
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

func parseRGBFunc(s string) (color.RGBA, error) {
	open, close := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return color.RGBA{}, fmt.Errorf("invalid color function %q", s)
	}
	parts := strings.FieldsFunc(s[open+1:close], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("invalid color function %q", s)
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		v, unit, err := splitNumber(p)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color function %q: %w", s, err)
		}
		switch {
		case i == 3 && unit == "":
			v *= 255
		case unit == "%":
			v = v * 255 / 100
		}
		ch[i] = uint8(min(max(v, 0), 255))
	}
	return color.RGBA{ch[0], ch[1], ch[2], ch[3]}, nil
}

// ParseVec3 parses three numbers separated by spaces or commas.
func ParseVec3(s string) (mgl32.Vec3, error) {
	pts, err := ParsePoints(s)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	if len(pts) != 1 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 numbers in %q", s)
	}
	return pts[0], nil
}

// ParsePoints parses a list of 3D points, given as numbers separated
// by spaces or commas, three per point.
func ParsePoints(s string) ([]mgl32.Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if len(fields) == 0 || len(fields)%3 != 0 {
		return nil, fmt.Errorf("expected a multiple of 3 numbers in %q", s)
	}
	pts := make([]mgl32.Vec3, len(fields)/3)
	for i, f := range fields {
		v, err := ParseFloat(f)
		if err != nil {
			return nil, err
		}
		pts[i/3][i%3] = v
	}
	return pts, nil
}
