package utils

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// namedColors follows the color names accepted by the command editor.
var namedColors = map[string]int{
	"default":    0x000000,
	"white":      0xffffff,
	"aqua":       0x1abc9c,
	"green":      0x57f287,
	"blue":       0x3498db,
	"yellow":     0xfee75c,
	"purple":     0x9b59b6,
	"fuchsia":    0xeb459e,
	"gold":       0xf1c40f,
	"orange":     0xe67e22,
	"red":        0xed4245,
	"grey":       0x95a5a6,
	"navy":       0x34495e,
	"darkaqua":   0x11806a,
	"darkgreen":  0x1f8b4c,
	"darkblue":   0x206694,
	"darkpurple": 0x71368a,
	"darkgold":   0xc27c0e,
	"darkorange": 0xa84300,
	"darkred":    0x992d22,
	"darkgrey":   0x979c9f,
	"darkergrey": 0x7f8c8d,
	"lightgrey":  0xbcc0c0,
	"darknavy":   0x2c3e50,
	"blurple":    0x5865f2,
	"greyple":    0x99aab5,
}

// ParseColor parses an embed color given as "#FACF24", "0xFACF24", a decimal
// number or a color name ("Red", "Blurple", "Random"). Returns fallback if the
// value is empty or cannot be parsed.
func ParseColor(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	lower := strings.ToLower(value)
	if lower == "random" {
		return rand.IntN(0xffffff + 1)
	}
	if c, ok := namedColors[strings.ReplaceAll(lower, " ", "")]; ok {
		return c
	}

	switch {
	case strings.HasPrefix(lower, "#"):
		return parseHex(lower[1:], fallback)
	case strings.HasPrefix(lower, "0x"):
		return parseHex(lower[2:], fallback)
	}

	if n, err := strconv.Atoi(value); err == nil && n >= 0 && n <= 0xffffff {
		return n
	}
	return parseHex(lower, fallback)
}

func parseHex(hex string, fallback int) int {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	colorInt, err := strconv.ParseInt(hex, 16, 64)
	if err != nil {
		return fallback
	}
	return int(colorInt)
}
