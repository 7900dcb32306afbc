package ui

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"ztop/view"
)

// Bounds for the interactive '<' and '>' keys.
const (
	MinInterval = 16 * time.Millisecond
	MaxInterval = time.Hour
)

// Session is the interactive loop: draw, wait for a key or the next tick, react.
// Everything runs on the caller's goroutine.
type Session struct {
	state    *view.State
	events   EventSource
	renderer Renderer
	metrics  *Metrics
	logger   logr.Logger

	interval time.Duration
	deadline time.Time
	editor   FilterEditor
	now      func() time.Time
}

func NewSession(state *view.State, events EventSource, renderer Renderer, interval time.Duration, metrics *Metrics, logger logr.Logger) *Session {
	return &Session{
		state:    state,
		events:   events,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger.WithName("session"),
		interval: clampInterval(interval),
		now:      time.Now,
	}
}

// Interval is the current time between samples.
func (s *Session) Interval() time.Duration { return s.interval }

// Run loops until quit, end of input, or a failed sample. The data source must
// already hold one generation.
func (s *Session) Run(ctx context.Context) error {
	s.deadline = s.now().Add(s.interval)
	for !s.state.Quitting() {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.draw(); err != nil {
			return err
		}
		ev := s.events.Poll(s.deadline.Sub(s.now()))
		switch ev.Kind {
		case EventTick:
			if err := s.tick(ctx); err != nil {
				return err
			}
		case EventKey:
			if err := s.key(ctx, ev); err != nil {
				return err
			}
		case EventEOF:
			s.logger.V(1).Info("input closed")
			return nil
		}
	}
	return nil
}

func (s *Session) tick(ctx context.Context) error {
	start := s.now()
	err := s.state.Refresh(ctx)
	s.metrics.ObserveRefresh(s.now().Sub(start), err)
	if err != nil {
		return err
	}
	s.deadline = s.now().Add(s.interval)
	return nil
}

func (s *Session) key(ctx context.Context, ev Event) error {
	if ev.Key == KeyCtrlC {
		s.state.Quit()
		return nil
	}
	if s.editor.Active() {
		s.editKey(ev)
		return nil
	}
	if ev.Key != KeyRune {
		return nil
	}
	switch ev.Rune {
	case 'q':
		s.state.Quit()
	case 'a':
		s.state.ToggleAuto()
	case 'c':
		return s.state.ToggleChildren(ctx)
	case 'd':
		s.state.IncDepth()
	case 'D':
		s.state.DecDepth()
	case '+':
		s.state.NextSort()
	case '-':
		s.state.PrevSort()
	case 'r':
		s.state.ToggleReverse()
	case 'f':
		current := ""
		if re := s.state.Filter(); re != nil {
			current = re.String()
		}
		s.editor.Begin(current)
	case 'F':
		s.state.ClearFilter()
	case '<':
		s.setInterval(s.interval / 2)
	case '>':
		s.setInterval(s.interval * 2)
	}
	return nil
}

func (s *Session) editKey(ev Event) {
	switch ev.Key {
	case KeyRune:
		s.editor.Insert(ev.Rune)
	case KeyBackspace:
		s.editor.Backspace()
	case KeyEsc:
		s.editor.Cancel()
	case KeyEnter:
		re, ok := s.editor.Commit()
		if !ok {
			s.logger.V(1).Info("rejected filter", "error", s.editor.Err())
			return
		}
		if re == nil {
			s.state.ClearFilter()
		} else {
			s.state.SetFilter(re)
		}
	}
}

func (s *Session) setInterval(d time.Duration) {
	s.interval = clampInterval(d)
	s.deadline = s.now().Add(s.interval)
}

func clampInterval(d time.Duration) time.Duration {
	return min(max(d, MinInterval), MaxInterval)
}

func (s *Session) draw() error {
	f, err := s.frame()
	if err != nil {
		return err
	}
	start := s.now()
	err = s.renderer.Draw(f)
	s.metrics.ObserveRender(s.now().Sub(start))
	return err
}

func (s *Session) frame() (Frame, error) {
	rows, err := s.state.Elements()
	if err != nil {
		return Frame{}, err
	}
	f := Frame{
		GeneratedAt: s.now(),
		Rows:        rows,
		Sort:        s.state.Sort(),
		Reverse:     s.state.Reverse(),
		Auto:        s.state.Auto(),
		Children:    s.state.Children(),
		Depth:       s.state.Depth(),
		Interval:    s.interval,
		Editing:     s.editor.Active(),
		EditText:    s.editor.Text(),
		Refresh:     s.metrics.RefreshSnapshot(),
	}
	if re := s.state.Filter(); re != nil {
		f.Filter = re.String()
	}
	if err := s.editor.Err(); err != nil {
		f.EditError = err.Error()
	}
	return f, nil
}
