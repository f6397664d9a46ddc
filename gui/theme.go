//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Palette shared by the widgets; the values match the terminal colors
// (ANSI 196, 241, 34, 220, 237).
var (
	colorRecording = color.RGBA{255, 0, 0, 255}
	colorNeutral   = color.RGBA{98, 98, 98, 255}
	colorLow       = color.RGBA{0, 175, 0, 255}
	colorMid       = color.RGBA{255, 215, 0, 255}
	colorUnlit     = color.RGBA{58, 58, 58, 255}
	colorRim       = color.RGBA{140, 140, 140, 255}
	colorWarn      = color.RGBA{255, 135, 0, 255}
)

type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{18, 18, 18, 255}
	case theme.ColorNameForeground:
		return color.RGBA{200, 200, 200, 255}
	case theme.ColorNameError:
		return colorRecording
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
