// Package color parses document color values and resolves named materials
// against a built-in catalog extendable by user-defined entries.
package color

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
)

// RGBA is a color quadruple with each channel in 0..1.
type RGBA struct {
	R, G, B, A float64
}

// Opaque returns an RGBA with full alpha.
func Opaque(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseValue parses a decoded YAML value (as produced by gopkg.in/yaml.v3's
// generic decode: string, []interface{}, map[string]interface{}) into an
// RGBA, dispatching on the value's shape per the color-parsing rules: a
// string starting with '#' is hex; any other string is a named/palette
// lookup; a 3- or 4-element numeric sequence in 0..1 is RGB(A), clamped; a
// map with r/g/b keys is read as 0..255 integers; a map with h/s/l keys is
// read as HSL. palette resolves named colors declared in the document's
// `colors:` section, tried before the CSS3 named-color table.
func ParseValue(path []string, value interface{}, palette map[string]RGBA) (RGBA, error) {
	switch v := value.(type) {
	case string:
		return parseString(path, v, palette)
	case []interface{}:
		return parseSequence(path, v)
	case map[string]interface{}:
		return parseMap(path, v)
	default:
		return RGBA{}, diag.Diagnostic{
			Kind:    diag.Schema,
			Path:    path,
			Message: fmt.Sprintf("color value has unsupported shape %T", value),
		}
	}
}

func parseString(path []string, s string, palette map[string]RGBA) (RGBA, error) {
	if strings.HasPrefix(s, "#") {
		hex, alpha := s, 1.0
		if len(s) == 9 {
			if a, err := strconv.ParseUint(s[7:], 16, 8); err == nil {
				hex, alpha = s[:7], float64(a)/255
			}
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return RGBA{}, diag.Diagnostic{
				Kind:    diag.Schema,
				Path:    path,
				Message: fmt.Sprintf("invalid hex color %q: expected #RRGGBB or #RRGGBBAA", s),
			}
		}
		return RGBA{R: c.R, G: c.G, B: c.B, A: alpha}, nil
	}
	if palette != nil {
		if c, ok := palette[s]; ok {
			return c, nil
		}
	}
	if rgba, ok := colornames.Map[strings.ToLower(s)]; ok {
		return fromStdColor(rgba), nil
	}
	return RGBA{}, diag.Diagnostic{
		Kind:    diag.Schema,
		Path:    path,
		Message: fmt.Sprintf("unknown color name %q", s),
	}
}

func fromStdColor(c color.RGBA) RGBA {
	return RGBA{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func parseSequence(path []string, seq []interface{}) (RGBA, error) {
	if len(seq) != 3 && len(seq) != 4 {
		return RGBA{}, diag.Diagnostic{
			Kind:    diag.Schema,
			Path:    path,
			Message: fmt.Sprintf("color array must have 3 or 4 elements, got %d", len(seq)),
		}
	}
	nums := make([]float64, len(seq))
	for i, item := range seq {
		f, ok := toFloat(item)
		if !ok {
			return RGBA{}, diag.Diagnostic{
				Kind:    diag.Schema,
				Path:    path,
				Message: fmt.Sprintf("color array element %d is not numeric", i),
			}
		}
		nums[i] = clamp01(f)
	}
	a := 1.0
	if len(nums) == 4 {
		a = nums[3]
	}
	return RGBA{R: nums[0], G: nums[1], B: nums[2], A: a}, nil
}

func parseMap(path []string, m map[string]interface{}) (RGBA, error) {
	_, hasRGB := m["r"]
	_, hasHSL := m["h"]
	switch {
	case hasRGB:
		return parseRGBMap(path, m)
	case hasHSL:
		return parseHSLMap(path, m)
	default:
		return RGBA{}, diag.Diagnostic{
			Kind:    diag.Schema,
			Path:    path,
			Message: "color map must have r/g/b or h/s/l keys",
		}
	}
}

func parseRGBMap(path []string, m map[string]interface{}) (RGBA, error) {
	r, g, b, err := require3(path, m, "r", "g", "b", 0, 255)
	if err != nil {
		return RGBA{}, err
	}
	a := 255.0
	if raw, ok := m["a"]; ok {
		v, ok := toFloat(raw)
		if !ok || v < 0 || v > 255 {
			return RGBA{}, rangeErr(path, "a", 0, 255)
		}
		a = v
	}
	return RGBA{R: r / 255, G: g / 255, B: b / 255, A: a / 255}, nil
}

func parseHSLMap(path []string, m map[string]interface{}) (RGBA, error) {
	h, ok := toFloat(m["h"])
	if !ok {
		return RGBA{}, missingErr(path, "h")
	}
	if h < 0 || h > 360 {
		return RGBA{}, rangeErr(path, "h", 0, 360)
	}
	s, ok := toFloat(m["s"])
	if !ok {
		return RGBA{}, missingErr(path, "s")
	}
	if s < 0 || s > 1 {
		return RGBA{}, rangeErr(path, "s", 0, 1)
	}
	l, ok := toFloat(m["l"])
	if !ok {
		return RGBA{}, missingErr(path, "l")
	}
	if l < 0 || l > 1 {
		return RGBA{}, rangeErr(path, "l", 0, 1)
	}
	a := 1.0
	if raw, ok := m["a"]; ok {
		v, ok := toFloat(raw)
		if !ok || v < 0 || v > 1 {
			return RGBA{}, rangeErr(path, "a", 0, 1)
		}
		a = v
	}
	c := colorful.Hsl(h, s, l)
	return RGBA{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: a}, nil
}

// require3 reads three required numeric keys from m, each validated against
// [lo, hi].
func require3(path []string, m map[string]interface{}, k1, k2, k3 string, lo, hi float64) (float64, float64, float64, error) {
	v1, ok1 := toFloat(m[k1])
	v2, ok2 := toFloat(m[k2])
	v3, ok3 := toFloat(m[k3])
	if !ok1 {
		return 0, 0, 0, missingErr(path, k1)
	}
	if !ok2 {
		return 0, 0, 0, missingErr(path, k2)
	}
	if !ok3 {
		return 0, 0, 0, missingErr(path, k3)
	}
	if v1 < lo || v1 > hi {
		return 0, 0, 0, rangeErr(path, k1, lo, hi)
	}
	if v2 < lo || v2 > hi {
		return 0, 0, 0, rangeErr(path, k2, lo, hi)
	}
	if v3 < lo || v3 > hi {
		return 0, 0, 0, rangeErr(path, k3, lo, hi)
	}
	return v1, v2, v3, nil
}

func missingErr(path []string, key string) error {
	return diag.Diagnostic{
		Kind:    diag.Schema,
		Path:    path,
		Message: fmt.Sprintf("color map is missing required key %q", key),
	}
}

func rangeErr(path []string, key string, lo, hi float64) error {
	return diag.Diagnostic{
		Kind:    diag.Schema,
		Path:    path,
		Message: fmt.Sprintf("color map key %q must be in [%g, %g]", key, lo, hi),
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
