package chart

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextWidth is the advance of s in the fixed 7x13 face, rounded up.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// TooltipWidth sizes the tooltip box to its widest line plus padding.
func TooltipWidth(lines []string) float64 {
	widest := 0
	for _, l := range lines {
		if w := TextWidth(l); w > widest {
			widest = w
		}
	}
	return float64(widest + TooltipPadding)
}
