package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"hapticrec/encoder"
	"hapticrec/transport"
)

const (
	wheelRows = 11
	wheelCols = 23
	wheelRX   = 10
	wheelRY   = 5
	rimDots   = 40

	flashDuration = 150 * time.Millisecond
)

var (
	colorRecording = lipgloss.Color("196")
	colorNeutral   = lipgloss.Color("241")
	colorHelp      = lipgloss.Color("239")
	colorInfo      = lipgloss.Color("245")
	colorWarn      = lipgloss.Color("208")
	colorOK        = lipgloss.Color("42")
	colorUnlit     = lipgloss.Color("237")

	helpStyle = lipgloss.NewStyle().Foreground(colorHelp)
	boldHelp  = lipgloss.NewStyle().Foreground(colorHelp).Bold(true)
	infoStyle = lipgloss.NewStyle().Foreground(colorInfo)
	warnStyle = lipgloss.NewStyle().Foreground(colorWarn)
	okStyle   = lipgloss.NewStyle().Foreground(colorOK)

	buttonStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Meter segments run green, then yellow from 60%, then red from 85%.
var (
	segmentLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	segmentMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	segmentHigh = lipgloss.NewStyle().Foreground(colorRecording)
	segmentOff  = lipgloss.NewStyle().Foreground(colorUnlit)
)

// viewState is everything the sink has told the front end.
type viewState struct {
	state    transport.State
	buttons  transport.Buttons
	angle    float64
	levels   [2]float64
	segments int
	elapsed  string
	tint     transport.Tint
	flash    bool
	busy     bool
	noSignal bool
	notice   string
	imported string
	exported string
	device   string
}

func newViewState(segments int, device string) viewState {
	return viewState{
		segments: segments,
		elapsed:  transport.FormatElapsed(0),
		device:   device,
	}
}

// markerPos places the wheel marker. Zero degrees is at the top and angles
// grow clockwise.
func markerPos(angle float64) (row, col int) {
	rad := angle * math.Pi / 180
	row = wheelRows/2 - int(math.Round(wheelRY*math.Cos(rad)))
	col = wheelCols/2 + int(math.Round(wheelRX*math.Sin(rad)))
	return row, col
}

func renderWheel(angle float64, recording bool) string {
	grid := make([][]rune, wheelRows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", wheelCols))
	}
	for i := 0; i < rimDots; i++ {
		r, c := markerPos(float64(i) * 360 / rimDots)
		grid[r][c] = '·'
	}
	grid[wheelRows/2][wheelCols/2] = '+'

	rad := angle * math.Pi / 180
	for _, f := range []float64{0.35, 0.7} {
		r := wheelRows/2 - int(math.Round(f*wheelRY*math.Cos(rad)))
		c := wheelCols/2 + int(math.Round(f*wheelRX*math.Sin(rad)))
		grid[r][c] = '∙'
	}
	r, c := markerPos(angle)
	grid[r][c] = '●'

	lines := make([]string, wheelRows)
	for i, row := range grid {
		lines[i] = string(row)
	}
	color := colorNeutral
	if recording {
		color = colorRecording
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Join(lines, "\n"))
}

func renderMeter(label string, level float64, n int) string {
	lit := transport.LitSegments(level, n)
	var b strings.Builder
	b.WriteString(infoStyle.Render(label + " "))
	for i := 0; i < n; i++ {
		if i >= lit {
			b.WriteString(segmentOff.Render("░"))
			continue
		}
		pos := float64(i) / float64(n)
		switch {
		case pos >= 0.85:
			b.WriteString(segmentHigh.Render("█"))
		case pos >= 0.6:
			b.WriteString(segmentMid.Render("█"))
		default:
			b.WriteString(segmentLow.Render("█"))
		}
	}
	return b.String()
}

func renderButton(label string, lit, enabled bool, litColor lipgloss.Color) string {
	st := buttonStyle.BorderForeground(colorNeutral).Foreground(colorInfo)
	switch {
	case lit:
		st = st.BorderForeground(litColor).Foreground(litColor).Bold(true)
	case !enabled:
		st = st.BorderForeground(colorUnlit).Foreground(colorUnlit)
	}
	return st.Render(label)
}

func renderButtons(v viewState) string {
	enabled := !v.busy
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderButton("● REC", v.buttons.Record, enabled && v.buttons.RecordEnabled(), colorRecording),
		" ",
		renderButton("▶ PLAY", v.buttons.Play, enabled, colorOK),
		" ",
		renderButton("■ STOP", v.flash, enabled && v.state.Active(), colorInfo),
	)
}

func elapsedStyle(t transport.Tint) lipgloss.Style {
	if t == transport.TintRecording {
		return lipgloss.NewStyle().Foreground(colorRecording).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(colorNeutral)
}

func statusLine(v viewState) string {
	switch v.state {
	case transport.Recording:
		return elapsedStyle(transport.TintRecording).Render("● REC")
	case transport.Paused:
		return warnStyle.Render("❚❚ PAUSED")
	case transport.Armed:
		return okStyle.Render("▶ PLAYING")
	case transport.Stopped:
		return infoStyle.Render("■ STOPPED")
	}
	return infoStyle.Render("○ STANDBY")
}

func importLine(path string, info encoder.Info) string {
	return fmt.Sprintf("imported %s (%s, %d Hz, %d ch, %s)",
		filepath.Base(path), info.Format, info.SampleRate, info.Channels,
		info.Duration().Round(time.Second))
}

func renderView(v viewState) string {
	recording := v.state == transport.Recording

	var lines []string
	lines = append(lines,
		renderWheel(v.angle, recording),
		"",
		statusLine(v)+"  "+elapsedStyle(v.tint).Render(v.elapsed),
		renderMeter("L", v.levels[0], v.segments),
		renderMeter("R", v.levels[1], v.segments),
	)
	if v.noSignal {
		lines = append(lines, warnStyle.Render("  ⚠ no signal"))
	}
	lines = append(lines, "", renderButtons(v))

	if v.busy {
		lines = append(lines, infoStyle.Render("waiting for picker..."))
	}
	if v.notice != "" {
		lines = append(lines, warnStyle.Render(v.notice))
	}
	if v.exported != "" {
		lines = append(lines, okStyle.Render("[✓ exported] ")+infoStyle.Render(v.exported))
	}
	if v.imported != "" {
		lines = append(lines, infoStyle.Render(v.imported))
	}

	lines = append(lines, "",
		infoStyle.Render(v.device),
		boldHelp.Render("p")+helpStyle.Render(" play  ")+
			boldHelp.Render("r")+helpStyle.Render(" record/pause  ")+
			boldHelp.Render("s")+helpStyle.Render(" stop  ")+
			boldHelp.Render("i")+helpStyle.Render(" import  ")+
			boldHelp.Render("q")+helpStyle.Render(" quit"),
		helpStyle.Render("drag the wheel to scrub, double-click it to import"),
		helpStyle.Render("hapticrec "+version),
	)
	return strings.Join(lines, "\n")
}

// wheelHit reports whether a terminal cell falls on the wheel, which is
// drawn from the top-left corner.
func wheelHit(x, y int) bool {
	return x >= 0 && x < wheelCols && y >= 0 && y < wheelRows
}
