package mapdef

import (
	"encoding/json"
	"image/color"
	"log"
	"strconv"
	"strings"

	gookit "github.com/gookit/color"
)

// LightColor is a lenient light color. It accepts 6-digit hex, 8-digit
// hex-with-alpha, "#"-prefixed hex, and bare numeric JSON input. Malformed
// values decode to opaque white and are logged, never an error: a map with a
// bad light color still loads.
type LightColor struct {
	color.RGBA
}

// White is the fallback for missing or malformed colors.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// RGBA returns the parsed color (or the white fallback).
func (lc LightColor) Color() color.RGBA {
	// Zero value means the field was absent.
	if lc.RGBA == (color.RGBA{}) {
		return White
	}
	return lc.RGBA
}

// UnmarshalJSON implements the lenient decode described above.
func (lc *LightColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		lc.RGBA = parseHex(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil || v > 0xffffffff {
			log.Printf("mapdef: malformed numeric light color %q, using white", n)
			lc.RGBA = White
			return nil
		}
		if v > 0xffffff {
			lc.RGBA = color.RGBA{
				R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
			}
		} else {
			lc.RGBA = color.RGBA{
				R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255,
			}
		}
		return nil
	}

	log.Printf("mapdef: malformed light color %s, using white", data)
	lc.RGBA = White
	return nil
}

// parseHex handles "rrggbb", "rrggbbaa", with or without a "#" prefix.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	alpha := uint8(255)
	if len(s) == 8 {
		a, err := strconv.ParseUint(s[6:8], 16, 8)
		if err != nil {
			log.Printf("mapdef: malformed light color alpha %q, using white", s)
			return White
		}
		alpha = uint8(a)
		s = s[:6]
	}

	if !isHex(s) {
		log.Printf("mapdef: malformed light color %q, using white", s)
		return White
	}
	rgb := gookit.HexToRgb(s)
	if len(rgb) < 3 {
		log.Printf("mapdef: malformed light color %q, using white", s)
		return White
	}
	return color.RGBA{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2]), A: alpha}
}

// isHex reports whether s is a 3- or 6-digit hex color body.
func isHex(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
