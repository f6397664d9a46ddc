package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hapticrec/encoder"
	"hapticrec/engine"
	"hapticrec/log"
	"hapticrec/loop"
	"hapticrec/picker"
)

// Engine is the recording collaborator. Redundant calls return
// engine.ErrAlreadyInState or engine.ErrNotInitialized.
type Engine interface {
	Prepare(dest string, sampleRate, channels int, quality string) error
	Start() error
	Pause() error
	Resume() error
	Stop() error
	// Discard drops a capture that was prepared but never started.
	Discard() error
	CurrentPower(channel int) float64
}

type Options struct {
	CaptureDir string
	SampleRate int
	Channels   int
	Quality    string

	RotationPeriod time.Duration
	RotationStep   float64
	VelocityScale  float64
	SamplePeriod   time.Duration
	Segments       int

	ImportKinds []string

	// Now stamps capture file names.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{
		CaptureDir:     os.TempDir(),
		SampleRate:     44100,
		Channels:       2,
		Quality:        encoder.QualityPCM,
		RotationPeriod: DefaultRotationPeriod,
		RotationStep:   DefaultRotationStep,
		VelocityScale:  DefaultVelocityScale,
		SamplePeriod:   DefaultSamplePeriod,
		Segments:       DefaultSegments,
		ImportKinds:    []string{".wav", ".flac"},
		Now:            time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CaptureDir == "" {
		o.CaptureDir = d.CaptureDir
	}
	if o.SampleRate <= 0 {
		o.SampleRate = d.SampleRate
	}
	if o.Channels <= 0 {
		o.Channels = d.Channels
	}
	if o.Quality == "" {
		o.Quality = d.Quality
	}
	if o.RotationPeriod <= 0 {
		o.RotationPeriod = d.RotationPeriod
	}
	if o.RotationStep == 0 {
		o.RotationStep = d.RotationStep
	}
	if o.VelocityScale <= 0 {
		o.VelocityScale = d.VelocityScale
	}
	if o.SamplePeriod <= 0 {
		o.SamplePeriod = d.SamplePeriod
	}
	if o.Segments <= 0 {
		o.Segments = d.Segments
	}
	if len(o.ImportKinds) == 0 {
		o.ImportKinds = d.ImportKinds
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

type Deps struct {
	Scheduler loop.Scheduler
	Engine    Engine
	Haptics   Haptics
	Picker    picker.Picker
	Sink      Sink
}

// Machine owns a session and validates every transport, gesture and picker
// event against it. All methods must run on the scheduler goroutine.
type Machine struct {
	s     *Session
	opts  Options
	sched loop.Scheduler
	eng   Engine
	hap   Haptics
	pick  picker.Picker
	sink  Sink

	rotation *Rotation
	sampler  *Sampler
	elapsed  *ElapsedTimer
	meter    *Meter

	ctx     context.Context
	cancel  context.CancelFunc
	takes   int
	exports int
}

func NewMachine(d Deps, opts Options) *Machine {
	opts = opts.withDefaults()
	if d.Haptics == nil {
		d.Haptics = nopHaptics{}
	}
	if d.Sink == nil {
		d.Sink = NopSink{}
	}

	s := NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		s:      s,
		opts:   opts,
		sched:  d.Scheduler,
		eng:    d.Engine,
		hap:    d.Haptics,
		pick:   d.Picker,
		sink:   d.Sink,
		meter:  NewMeter(opts.Segments),
		ctx:    ctx,
		cancel: cancel,
	}
	m.rotation = NewRotation(s, d.Scheduler, d.Sink, d.Haptics, opts.RotationPeriod, opts.RotationStep, opts.VelocityScale)
	m.sampler = NewSampler(s, d.Scheduler, d.Sink, d.Engine, m.meter, opts.SamplePeriod)
	m.elapsed = NewElapsedTimer(s, d.Scheduler, d.Sink)
	return m
}

// Session exposes the live session. Only read it on the scheduler goroutine.
func (m *Machine) Session() *Session { return m.s }

func (m *Machine) Snapshot() Session { return *m.s }

func (m *Machine) Meter() *Meter { return m.meter }

func (m *Machine) ElapsedText() string { return m.elapsed.Text() }

// Refresh pushes the full current state to the sink.
func (m *Machine) Refresh() {
	m.sink.Transport(m.s.State, m.s.Buttons)
	m.sink.Angle(m.s.Angle)
	m.sink.Levels(m.s.Levels[0], m.s.Levels[1])
	m.sink.Elapsed(m.elapsed.Text(), TintFor(m.elapsed.Running(), false))
	m.sink.Busy(m.s.Latched)
}

func (m *Machine) OnPlayPressed() error {
	if m.s.Latched {
		return m.report(ErrSessionBusy)
	}
	if m.s.State.Active() {
		return m.report(invalid("already playing"))
	}

	m.setState(Armed, "play")
	m.rotation.Start()
	m.sampler.Start()
	m.hap.Pulse()
	return nil
}

func (m *Machine) OnRecordPressed() error {
	if m.s.Latched {
		return m.report(ErrSessionBusy)
	}

	switch m.s.State {
	case Armed:
		return m.beginCapture()
	case Paused:
		if !m.s.HasAudio {
			return m.beginCapture()
		}
		if err := m.engineCall(engine.OpResume, m.eng.Resume); err != nil {
			return m.report(err)
		}
		m.setState(Recording, "resume")
		m.elapsed.Start()
	case Recording:
		if err := m.engineCall(engine.OpPause, m.eng.Pause); err != nil {
			return m.report(err)
		}
		m.setState(Paused, "pause")
		m.elapsed.Stop()
	default:
		return m.report(invalid("cannot record without Play active"))
	}
	m.hap.Pulse()
	return nil
}

func (m *Machine) beginCapture() error {
	dest, err := m.newDestination()
	if err != nil {
		return m.report(&EngineError{Op: engine.OpPrepare, Err: err})
	}
	prepare := func() error {
		return m.eng.Prepare(dest, m.opts.SampleRate, m.opts.Channels, m.opts.Quality)
	}
	if err := m.engineCall(engine.OpPrepare, prepare); err != nil {
		return m.report(err)
	}
	if err := m.engineCall(engine.OpStart, m.eng.Start); err != nil {
		if derr := m.eng.Discard(); derr != nil && !errors.Is(derr, engine.ErrNotInitialized) {
			log.Warnf("discarding %s: %v", filepath.Base(dest), derr)
		}
		return m.report(err)
	}

	m.s.Capture = dest
	m.s.HasAudio = true
	m.setState(Recording, "record")
	m.elapsed.Start()
	m.hap.Pulse()
	return nil
}

func (m *Machine) newDestination() (string, error) {
	if err := os.MkdirAll(m.opts.CaptureDir, 0755); err != nil {
		return "", fmt.Errorf("capture dir: %w", err)
	}
	m.takes++
	name := fmt.Sprintf("capture-%s-%s-%02d%s",
		m.opts.Now().Format("20060102-150405"),
		m.s.ID[:8],
		m.takes,
		encoder.Ext(m.opts.Quality))
	return filepath.Join(m.opts.CaptureDir, name), nil
}

func (m *Machine) OnStopPressed() error {
	if m.s.Latched {
		return m.report(ErrSessionBusy)
	}
	if !m.s.State.Active() {
		return m.report(invalid("nothing to stop"))
	}
	if m.s.HasAudio {
		if err := m.engineCall(engine.OpStop, m.eng.Stop); err != nil {
			return m.report(err)
		}
	}

	m.rotation.Stop()
	m.sampler.Stop()
	seconds := m.s.Elapsed
	m.elapsed.Stop()
	m.elapsed.Reset()

	artifact, hadAudio := m.s.Capture, m.s.HasAudio
	m.s.Capture, m.s.HasAudio = "", false
	m.setState(Stopped, "stop")
	m.hap.Pulse()
	m.sink.Flash(ButtonStop)

	if hadAudio {
		m.presentExport(artifact, seconds)
	}
	return nil
}

func (m *Machine) presentExport(artifact string, seconds int) {
	m.latch(true)
	ch := m.pick.PresentExport(m.ctx, artifact)
	go func() {
		out, ok := <-ch
		if !ok {
			out = picker.Cancelled()
		}
		m.sched.Post(func() { m.finishExport(artifact, seconds, out) })
	}()
}

func (m *Machine) finishExport(artifact string, seconds int, out picker.Outcome) {
	m.latch(false)
	switch {
	case out.Err != nil:
		m.report(fmt.Errorf("export %s: %w", filepath.Base(artifact), out.Err))
	case out.Cancelled:
		log.Info("export cancelled")
	default:
		m.exports++
		log.CaptureExported(m.s.ID, artifact, out.Location, seconds)
		m.sink.Exported(out.Location)
	}
}

func (m *Machine) OnDragBegin(vx float64) error {
	if m.s.Latched {
		return ErrSessionBusy
	}
	m.rotation.DragBegin(vx)
	return nil
}

func (m *Machine) OnDragMove(dx, width, vx float64) error {
	if m.s.Latched {
		return ErrSessionBusy
	}
	m.rotation.DragMove(dx, width, vx)
	return nil
}

func (m *Machine) OnDragEnd() error {
	if m.s.Latched {
		m.s.Dragging = false
		return ErrSessionBusy
	}
	m.rotation.DragEnd(m.s.State.Active())
	return nil
}

// OnDoubleTap opens the import picker when the wheel is at rest.
func (m *Machine) OnDoubleTap() error {
	if m.s.Latched {
		return m.report(ErrSessionBusy)
	}
	if !m.rotation.Idle() {
		return m.report(invalid("import needs the wheel at rest"))
	}

	m.latch(true)
	ch := m.pick.PresentImport(m.ctx, m.opts.ImportKinds)
	go func() {
		out, ok := <-ch
		if !ok {
			out = picker.Cancelled()
		}
		m.sched.Post(func() { m.finishImport(out) })
	}()
	return nil
}

func (m *Machine) finishImport(out picker.Outcome) {
	m.latch(false)
	switch {
	case out.Err != nil:
		m.report(fmt.Errorf("import: %w", out.Err))
	case out.Cancelled:
		log.Info("import cancelled")
	default:
		info, err := encoder.Probe(out.Location)
		if err != nil {
			m.report(fmt.Errorf("import %s: %w", filepath.Base(out.Location), err))
			return
		}
		m.s.Imported = out.Location
		log.Info(fmt.Sprintf("imported %s (%s, %d Hz, %d ch, %s)",
			out.Location, info.Format, info.SampleRate, info.Channels, info.Duration().Round(time.Second)))
		m.sink.Imported(out.Location, info)
	}
}

// HandleEngineEvent surfaces asynchronous engine failures.
func (m *Machine) HandleEngineEvent(ev engine.Event) {
	switch ev := ev.(type) {
	case engine.Finished:
		if !ev.Success {
			err := fmt.Errorf("%s was not finalized", filepath.Base(ev.Path))
			if ev.Err != nil {
				err = fmt.Errorf("%s was not finalized: %w", filepath.Base(ev.Path), ev.Err)
			}
			m.report(&EngineError{Op: engine.OpStop, Err: err})
		}
	case engine.EncodeError:
		m.report(&EngineError{Op: engine.OpEncode, Err: ev.Err})
	}
}

// Close tears the session down, dismissing any open picker and finalizing
// a capture in progress.
func (m *Machine) Close() {
	m.cancel()
	m.rotation.Stop()
	m.sampler.Stop()
	m.elapsed.Stop()
	if m.s.HasAudio {
		if err := m.eng.Stop(); err != nil && !errors.Is(err, engine.ErrNotInitialized) {
			log.Warnf("stopping capture on close: %v", err)
		}
		m.s.HasAudio = false
	}
	log.SessionEnd(m.s.ID, m.exports)
}

func (m *Machine) setState(next State, event string) {
	from := m.s.State
	m.s.State = next
	m.s.Buttons = FlagsFor(next)
	log.Transport(m.s.ID, event, from.String(), next.String())
	m.sink.Transport(next, m.s.Buttons)
}

func (m *Machine) latch(on bool) {
	m.s.Latched = on
	m.sink.Busy(on)
}

// engineCall runs one engine operation, treating a redundant call as success.
func (m *Machine) engineCall(op engine.Op, fn func() error) error {
	err := fn()
	switch {
	case err == nil, errors.Is(err, engine.ErrAlreadyInState):
		return nil
	case errors.Is(err, engine.ErrNotInitialized):
		return fmt.Errorf("%s: %w", op, ErrEngineNotInitialized)
	}
	return &EngineError{Op: op, Err: err}
}

func (m *Machine) report(err error) error {
	log.Warnf("%v", err)
	m.sink.Notice(err)
	return err
}
