package compat

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/oriumgames/compat/version"
)

// ColorChar introduces a formatting code in legacy chat text.
const ColorChar = '§'

// AltColorChar is the user-facing stand-in for ColorChar translated by
// ChatColors.Translate.
const AltColorChar = '&'

// Color is a chat color. Named colors have a Code, custom ones only an RGB.
type Color struct {
	Code byte
	Name string
	RGB  uint32
}

// Named reports whether c is one of NamedColors.
func (c Color) Named() bool {
	return c.Code != 0
}

// String returns the legacy code of a named color and #RRGGBB otherwise.
func (c Color) String() string {
	if c.Named() {
		return string(ColorChar) + string(c.Code)
	}
	return fmt.Sprintf("#%06X", c.RGB)
}

// NamedColors are the 16 colors every release supports.
var NamedColors = [16]Color{
	{'0', "black", 0x000000},
	{'1', "dark_blue", 0x0000AA},
	{'2', "dark_green", 0x00AA00},
	{'3', "dark_aqua", 0x00AAAA},
	{'4', "dark_red", 0xAA0000},
	{'5', "dark_purple", 0xAA00AA},
	{'6', "gold", 0xFFAA00},
	{'7', "gray", 0xAAAAAA},
	{'8', "dark_gray", 0x555555},
	{'9', "blue", 0x5555FF},
	{'a', "green", 0x55FF55},
	{'b', "aqua", 0x55FFFF},
	{'c', "red", 0xFF5555},
	{'d', "light_purple", 0xFF55FF},
	{'e', "yellow", 0xFFFF55},
	{'f', "white", 0xFFFFFF},
}

// formatCodes are the codes that follow ColorChar, colors first. The x code
// opens a hex color spelled out as six more codes.
const formatCodes = "0123456789abcdefklmnorx"

// ParseColor parses "&c", "§c", a color name such as "red", or "#RRGGBB".
func ParseColor(s string) (Color, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		if len(s) != 7 {
			return Color{}, fmt.Errorf("compat: invalid hex color %q", s)
		}
		rgb, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("compat: invalid hex color %q: %w", s, err)
		}
		return Color{RGB: uint32(rgb)}, nil
	case strings.HasPrefix(s, string(AltColorChar)), strings.HasPrefix(s, string(ColorChar)):
		_, size := utf8.DecodeRuneInString(s)
		if len(s) != size+1 {
			return Color{}, fmt.Errorf("compat: invalid color code %q", s)
		}
		if c, ok := colorByCode(s[size]); ok {
			return c, nil
		}
	default:
		for _, c := range NamedColors {
			if strings.EqualFold(c.Name, s) {
				return c, nil
			}
		}
	}
	return Color{}, fmt.Errorf("compat: unknown color %q", s)
}

func colorByCode(code byte) (Color, bool) {
	code = lower(code)
	for _, c := range NamedColors {
		if c.Code == code {
			return c, true
		}
	}
	return Color{}, false
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

// NearestNamed returns the named color closest to rgb.
func NearestNamed(rgb uint32) Color {
	best, bestDist := NamedColors[0], -1
	for _, c := range NamedColors {
		if d := colorDistance(rgb, c.RGB); bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func colorDistance(a, b uint32) int {
	dr := int(a>>16&0xff) - int(b>>16&0xff)
	dg := int(a>>8&0xff) - int(b>>8&0xff)
	db := int(a&0xff) - int(b&0xff)
	return dr*dr + dg*dg + db*db
}

// ChatColors converts colors to the legacy text format of the host.
type ChatColors interface {
	// Translate replaces "&c" codes with "§c" and "&#RRGGBB" with the hex
	// sequence of the host.
	Translate(s string) string
	// Hex returns the code sequence coloring text rgb.
	Hex(rgb uint32) string
	// Strip removes every formatting code from s.
	Strip(s string) string
}

var chatColorsTable = version.Table[func(*API) (ChatColors, error)]{
	Capability: "chat_colors",
	Floor:      "1.8",
	Breakpoints: []version.Breakpoint[func(*API) (ChatColors, error)]{
		{Through: "1.15.2", Name: "named", New: func(*API) (ChatColors, error) { return chatColors{}, nil }},
	},
	Default: version.Breakpoint[func(*API) (ChatColors, error)]{Name: "hex", New: func(*API) (ChatColors, error) {
		return chatColors{hex: true}, nil
	}},
}

// chatColors implements ChatColors. Hosts before 1.16 only know the named
// colors, so hex colors are replaced by the nearest one.
type chatColors struct {
	hex bool
}

// Hex returns the color code for rgb, or the nearest named color when hex is unsupported.
func (c chatColors) Hex(rgb uint32) string {
	if !c.hex {
		return NearestNamed(rgb).String()
	}
	var b strings.Builder
	b.WriteRune(ColorChar)
	b.WriteByte('x')
	for _, d := range fmt.Sprintf("%06x", rgb&0xffffff) {
		b.WriteRune(ColorChar)
		b.WriteRune(d)
	}
	return b.String()
}

// Translate replaces alternate color codes in s with section-sign codes.
func (c chatColors) Translate(s string) string {
	if !strings.ContainsRune(s, AltColorChar) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != AltColorChar || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		if s[i+1] == '#' && i+8 <= len(s) {
			if rgb, err := strconv.ParseUint(s[i+2:i+8], 16, 32); err == nil {
				b.WriteString(c.Hex(uint32(rgb)))
				i += 7
				continue
			}
		}
		if code := lower(s[i+1]); strings.IndexByte(formatCodes, code) >= 0 {
			b.WriteRune(ColorChar)
			b.WriteByte(code)
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Strip removes color codes from s.
func (chatColors) Strip(s string) string {
	return StripColors(s)
}

// StripColors removes every "§" code from s.
func StripColors(s string) string {
	if !strings.ContainsRune(s, ColorChar) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	skip := false
	for _, r := range s {
		switch {
		case skip:
			skip = false
		case r == ColorChar:
			skip = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
