package build

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
)

// fontKey identifies a registered font by family and style ("regular",
// "bold", "italic", ...).
type fontKey struct {
	family, style string
}

// FontRegistry resolves (family, style) to a parsed TrueType font, with a
// documented fallback to "default sans" on any miss.
type FontRegistry struct {
	fonts map[fontKey]*truetype.Font
}

// NewFontRegistry returns an empty registry. RegisterFont is called once per
// font file made available to the build environment.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fonts: make(map[fontKey]*truetype.Font)}
}

// RegisterFont parses data as a TrueType/OpenType font and registers it
// under family/style.
func (r *FontRegistry) RegisterFont(family, style string, data []byte) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing font %s/%s: %w", family, style, err)
	}
	r.fonts[fontKey{family, style}] = f
	return nil
}

// Resolve implements resolve_font(family, style) -> FontHandle | Fallback.
// fellBack reports whether the requested family/style was unavailable and
// "default sans" (or, absent even that, any registered font) was
// substituted.
func (r *FontRegistry) Resolve(family, style string) (f *truetype.Font, fellBack bool) {
	if f, ok := r.fonts[fontKey{family, style}]; ok {
		return f, false
	}
	if f, ok := r.fonts[fontKey{"default sans", "regular"}]; ok {
		return f, true
	}
	for _, f := range r.fonts {
		return f, true
	}
	return nil, true
}

// buildText lays out string glyphs as unioned 2D profiles, one contour per
// glyph outline. Falls back to a monospaced placeholder box per character
// when no font is registered at all (common in a headless build
// environment with no font files made available) or the font fails to
// produce a glyph outline.
func buildText(f map[string]interface{}, fonts *FontRegistry, path []string, report *diag.Report) (sdf.SDF2, error) {
	text, _ := f["string"].(string)
	if text == "" {
		return nil, fmt.Errorf("text requires a non-empty string")
	}
	size, ok := toFloat(f["size"])
	if !ok || size <= 0 {
		size = 10
	}
	family, _ := f["font"].(string)
	if family == "" {
		family = "default sans"
	}
	style, _ := f["style"].(string)
	if style == "" {
		style = "regular"
	}

	var tf *truetype.Font
	var fellBack bool
	if fonts != nil {
		tf, fellBack = fonts.Resolve(family, style)
	}
	if fellBack {
		report.AddWarning(diag.Warning{
			Path:    path,
			Message: fmt.Sprintf("font %q (%s) unavailable, falling back to default sans", family, style),
		})
	}

	var profile sdf.SDF2
	var err error
	if tf != nil {
		profile, err = layoutGlyphs(tf, text, size)
	}
	if tf == nil || err != nil {
		profile, err = layoutPlaceholder(text, size)
	}
	if err != nil {
		return nil, err
	}

	halign, _ := f["halign"].(string)
	valign, _ := f["valign"].(string)
	if halign != "" || valign != "" {
		bb := profile.BoundingBox()
		min, max := bb.Min, bb.Max
		var dx, dy float64
		switch halign {
		case "center":
			dx = -(min.X + max.X) / 2
		case "right":
			dx = -max.X
		}
		switch valign {
		case "center":
			dy = -(min.Y + max.Y) / 2
		case "top":
			dy = -max.Y
		}
		if dx != 0 || dy != 0 {
			profile = sdf.Transform2D(profile, sdf.Translate2d(v2.Vec{X: dx, Y: dy}))
		}
	}
	return profile, nil
}

// layoutPlaceholder renders each character as a fixed-advance box, used when
// no usable glyph outline is available.
func layoutPlaceholder(text string, size float64) (sdf.SDF2, error) {
	advance := size * 0.6
	var profile sdf.SDF2
	for i, r := range text {
		_ = r
		box, err := sdf.Box2D(v2.Vec{X: advance * 0.8, Y: size}, 0)
		if err != nil {
			return nil, err
		}
		box = sdf.Transform2D(box, sdf.Translate2d(v2.Vec{X: float64(i)*advance + advance/2, Y: size / 2}))
		if profile == nil {
			profile = box
		} else {
			profile = sdf.Union2D(profile, box)
		}
	}
	return profile, nil
}

// layoutGlyphs flattens each rune's TrueType outline into a polygon and
// unions them, advancing by each glyph's design advance width scaled to
// size. TrueType contours alternate on-curve and off-curve (quadratic
// control) points with an implied on-curve midpoint between consecutive
// off-curve points; flattenContour expands that into a dense polyline.
func layoutGlyphs(tf *truetype.Font, text string, size float64) (sdf.SDF2, error) {
	scale := fixed.Int26_6(size * 64)
	var buf truetype.GlyphBuf
	var profile sdf.SDF2
	var penX float64

	for _, r := range text {
		idx := tf.Index(r)
		if idx == 0 {
			penX += size * 0.6
			continue
		}
		if err := buf.Load(tf, scale, idx, font.HintingNone); err != nil {
			return nil, err
		}
		start := 0
		for _, end := range buf.Ends {
			contour := buf.Points[start:end]
			start = end
			if len(contour) < 3 {
				continue
			}
			verts := flattenContour(contour)
			if len(verts) < 3 {
				continue
			}
			poly, err := sdf.Polygon2D(verts)
			if err != nil {
				continue
			}
			poly = sdf.Transform2D(poly, sdf.Translate2d(v2.Vec{X: penX}))
			if profile == nil {
				profile = poly
			} else {
				profile = sdf.Union2D(profile, poly)
			}
		}
		advance := float64(buf.AdvanceWidth) / 64
		penX += advance
	}
	if profile == nil {
		return nil, fmt.Errorf("no glyph outlines produced for %q", text)
	}
	return profile, nil
}

// flattenContour expands one TrueType contour (on-curve points with flag
// bit 0 set, off-curve quadratic control points otherwise) into a polyline
// in units of the requested size (the 26.6 fixed-point coordinates the
// glyph was loaded at, divided by 64), sampling each implied quadratic
// segment.
func flattenContour(points []truetype.Point) []v2.Vec {
	const samplesPerCurve = 6
	toVec := func(p truetype.Point) v2.Vec {
		return v2.Vec{X: float64(p.X) / 64, Y: float64(p.Y) / 64}
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }

	n := len(points)
	// Rotate the start to an on-curve point so the walk below always has a
	// clean starting anchor.
	startIdx := 0
	for i, p := range points {
		if onCurve(p) {
			startIdx = i
			break
		}
	}
	ordered := make([]truetype.Point, n)
	for i := 0; i < n; i++ {
		ordered[i] = points[(startIdx+i)%n]
	}

	var verts []v2.Vec
	cur := toVec(ordered[0])
	verts = append(verts, cur)
	i := 1
	for i <= n {
		p := ordered[i%n]
		if onCurve(p) {
			verts = append(verts, toVec(p))
			cur = toVec(p)
			i++
			continue
		}
		ctrl := toVec(p)
		var next v2.Vec
		consumed := 1
		if i+1 <= n && onCurve(ordered[(i+1)%n]) {
			next = toVec(ordered[(i+1)%n])
			consumed = 2
		} else {
			nextCtrl := toVec(ordered[(i+1)%n])
			next = v2.Vec{X: (ctrl.X + nextCtrl.X) / 2, Y: (ctrl.Y + nextCtrl.Y) / 2}
		}
		for s := 1; s <= samplesPerCurve; s++ {
			t := float64(s) / float64(samplesPerCurve)
			verts = append(verts, quadBezier(cur, ctrl, next, t))
		}
		cur = next
		i += consumed
	}
	return verts
}

func quadBezier(p0, p1, p2 v2.Vec, t float64) v2.Vec {
	mt := 1 - t
	return v2.Vec{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}
