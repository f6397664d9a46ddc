package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hapticrec/config"
	"hapticrec/encoder"
	"hapticrec/hotkey"
	"hapticrec/log"
	"hapticrec/picker"
	"hapticrec/shutdown"
	"hapticrec/transport"
)

// TUI message types
type transportMsg struct {
	state   transport.State
	buttons transport.Buttons
}
type angleMsg float64
type levelsMsg [2]float64
type elapsedMsg struct {
	text string
	tint transport.Tint
}
type noticeMsg struct{ err error }
type flashMsg transport.Button
type flashEndMsg struct{}
type busyMsg bool
type noSignalMsg bool
type importedMsg struct {
	path string
	info encoder.Info
}
type exportedMsg string

const (
	doubleTapWindow = 300 * time.Millisecond
	// cellPixels approximates a terminal cell's width so drag distances and
	// velocities land in the same range as pointer input.
	cellPixels = 8
	sinkBuffer = 64
	// sinkWait bounds how long a state update waits for a stalled program.
	sinkWait = 250 * time.Millisecond
)

// controller is what a front end can ask of the session.
type controller interface {
	Play()
	Record()
	Stop()
	DoubleTap()
	DragBegin(vx float64)
	DragMove(dx, width, vx float64)
	DragEnd()
}

type tuiModel struct {
	ctl  controller
	view viewState
	quit func()
	now  func() time.Time

	width, height int

	pressed   bool
	dragging  bool
	lastX     int
	lastMove  time.Time
	lastPress time.Time
}

func newTUIModel(ctl controller, v viewState, quit func()) tuiModel {
	return tuiModel{ctl: ctl, view: v, quit: quit, now: time.Now}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quit()
			return m, tea.Quit
		case "p":
			m.ctl.Play()
		case "r":
			m.ctl.Record()
		case "s":
			m.ctl.Stop()
		case "i":
			m.ctl.DoubleTap()
		}

	case tea.MouseMsg:
		m = m.mouse(msg)

	case transportMsg:
		m.view.state = msg.state
		m.view.buttons = msg.buttons
		m.view.notice = ""
		if msg.state == transport.Recording {
			m.view.exported = ""
		}

	case angleMsg:
		m.view.angle = float64(msg)

	case levelsMsg:
		m.view.levels = msg

	case elapsedMsg:
		m.view.elapsed = msg.text
		m.view.tint = msg.tint

	case noticeMsg:
		m.view.notice = msg.err.Error()

	case flashMsg:
		if transport.Button(msg) == transport.ButtonStop {
			m.view.flash = true
			return m, tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashEndMsg{} })
		}

	case flashEndMsg:
		m.view.flash = false

	case busyMsg:
		m.view.busy = bool(msg)

	case noSignalMsg:
		m.view.noSignal = bool(msg)

	case importedMsg:
		m.view.imported = importLine(msg.path, msg.info)

	case exportedMsg:
		m.view.exported = string(msg)
	}
	return m, nil
}

func (m tuiModel) mouse(msg tea.MouseMsg) tuiModel {
	now := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !wheelHit(msg.X, msg.Y) {
			return m
		}
		if now.Sub(m.lastPress) < doubleTapWindow {
			m.lastPress = time.Time{}
			m.ctl.DoubleTap()
			return m
		}
		m.lastPress = now
		m.pressed = true
		m.lastX = msg.X
		m.lastMove = now

	// The drag begins on the first motion after a press so the opening
	// pulse carries the pointer's velocity.
	case tea.MouseActionMotion:
		if !m.pressed {
			return m
		}
		dx := float64((msg.X - m.lastX) * cellPixels)
		var vx float64
		if dt := now.Sub(m.lastMove).Seconds(); dt > 0 {
			vx = dx / dt
		}
		m.lastX = msg.X
		m.lastMove = now
		if !m.dragging {
			m.dragging = true
			m.ctl.DragBegin(vx)
		}
		m.ctl.DragMove(dx, wheelCols*cellPixels, vx)

	case tea.MouseActionRelease:
		m.pressed = false
		if m.dragging {
			m.dragging = false
			m.ctl.DragEnd()
		}
	}
	return m
}

func (m tuiModel) View() string {
	return renderView(m.view)
}

// tuiSink turns sink calls into program messages. Angle and level updates
// are dropped when the program falls behind; everything else waits up to
// wait for room and is dropped after that, or as soon as done closes.
type tuiSink struct {
	msgs chan tea.Msg
	done <-chan struct{}
	wait time.Duration
}

func newTUISink(done <-chan struct{}) *tuiSink {
	return &tuiSink{msgs: make(chan tea.Msg, sinkBuffer), done: done, wait: sinkWait}
}

func (s *tuiSink) send(msg tea.Msg) {
	select {
	case s.msgs <- msg:
		return
	default:
	}
	timer := time.NewTimer(s.wait)
	defer timer.Stop()
	select {
	case s.msgs <- msg:
	case <-s.done:
	case <-timer.C:
		log.Warnf("terminal view stalled, dropped %T", msg)
	}
}

func (s *tuiSink) sendLossy(msg tea.Msg) {
	select {
	case s.msgs <- msg:
	default:
	}
}

func (s *tuiSink) pump(p *tea.Program) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.msgs:
			p.Send(msg)
		}
	}
}

func (s *tuiSink) Transport(st transport.State, b transport.Buttons) {
	s.send(transportMsg{state: st, buttons: b})
}

func (s *tuiSink) Elapsed(text string, t transport.Tint) {
	s.send(elapsedMsg{text: text, tint: t})
}

func (s *tuiSink) Imported(path string, info encoder.Info) {
	s.send(importedMsg{path: path, info: info})
}

func (s *tuiSink) Angle(deg float64)        { s.sendLossy(angleMsg(deg)) }
func (s *tuiSink) Levels(l, r float64)      { s.sendLossy(levelsMsg{l, r}) }
func (s *tuiSink) Notice(err error)         { s.send(noticeMsg{err: err}) }
func (s *tuiSink) Flash(b transport.Button) { s.send(flashMsg(b)) }
func (s *tuiSink) Busy(on bool)             { s.send(busyMsg(on)) }
func (s *tuiSink) NoSignal(warn bool)       { s.send(noSignalMsg(warn)) }
func (s *tuiSink) Exported(location string) { s.send(exportedMsg(location)) }

func runTUI(cfg *config.Config, _ cliFlags) error {
	rec, actx, device, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer actx.Close()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	pick := &picker.Terminal{
		Dirs:      cfg.Export.Dirs,
		ImportDir: cfg.Export.ImportDir,
		Clipboard: cfg.Export.Clipboard,
		Suspend:   func() error { return prog.ReleaseTerminal() },
		Resume:    func() error { return prog.RestoreTerminal() },
	}
	var hk hotkey.Hotkey
	if cfg.Hotkey.Enabled {
		hk = hotkey.New()
	}

	sink := newTUISink(ctx.Done())
	a := newApp(cfg, appDeps{
		Recorder: rec,
		Picker:   pick,
		Haptics:  newHaptics(cfg),
		Sink:     sink,
		Hotkey:   hk,
		Device:   device,
	})

	model := newTUIModel(a, newViewState(cfg.Transport.Segments, device), cancel)
	prog = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go sink.pump(prog)
	errc := make(chan error, 1)
	go func() { errc <- a.run(ctx) }()
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()

	_, err = prog.Run()
	cancel()
	if runErr := <-errc; err == nil {
		err = runErr
	}
	return err
}
