package common

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

// ParseColor accepts an SVG colour name ("cornflowerblue") or hex
// "#rrggbb" / "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		rgba[i] = v
	}
	return color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, nil
}

// ColorVec4 converts c to non-premultiplied 0..1 components.
func ColorVec4(c color.Color) mgl32.Vec4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return mgl32.Vec4{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}
