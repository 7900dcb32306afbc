package ui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// EventKind says what woke the session loop.
type EventKind int

const (
	EventTick EventKind = iota
	EventKey
	EventResize
	EventOther
	EventEOF
)

// KeyCode is a key, reduced to the ones the session reacts to.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyEsc
	KeyCtrlC
	KeyOther
)

// Event is one input to the session loop. Rune is only set for KeyRune.
type Event struct {
	Kind EventKind
	Key  KeyCode
	Rune rune
}

// RuneEvent is the Event for a printable key.
func RuneEvent(r rune) Event { return Event{Kind: EventKey, Key: KeyRune, Rune: r} }

// KeyEvent is the Event for a special key.
func KeyEvent(k KeyCode) Event { return Event{Kind: EventKey, Key: k} }

// EventSource blocks for at most timeout and returns the next input, or a Tick
// when nothing arrived in time.
type EventSource interface {
	Poll(timeout time.Duration) Event
}

// ScreenEvents pumps a tcell screen's events on a goroutine so Poll can wait on
// them with a deadline.
type ScreenEvents struct {
	events chan tcell.Event
	quit   chan struct{}
	once   sync.Once
}

func NewScreenEvents(screen tcell.Screen) *ScreenEvents {
	e := &ScreenEvents{
		events: make(chan tcell.Event),
		quit:   make(chan struct{}),
	}
	go e.pump(screen)
	return e
}

func (e *ScreenEvents) pump(screen tcell.Screen) {
	defer close(e.events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case e.events <- ev:
		case <-e.quit:
			return
		}
	}
}

// Close stops forwarding. The pump exits once the screen is finalized.
func (e *ScreenEvents) Close() {
	e.once.Do(func() { close(e.quit) })
}

func (e *ScreenEvents) Poll(timeout time.Duration) Event {
	if timeout <= 0 {
		select {
		case ev, ok := <-e.events:
			return translate(ev, ok)
		default:
			return Event{Kind: EventTick}
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-e.events:
		return translate(ev, ok)
	case <-timer.C:
		return Event{Kind: EventTick}
	}
}

func translate(ev tcell.Event, ok bool) Event {
	if !ok || ev == nil {
		return Event{Kind: EventEOF}
	}
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyRune:
			return RuneEvent(ev.Rune())
		case tcell.KeyEnter:
			return KeyEvent(KeyEnter)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			return KeyEvent(KeyBackspace)
		case tcell.KeyEscape:
			return KeyEvent(KeyEsc)
		case tcell.KeyCtrlC:
			return KeyEvent(KeyCtrlC)
		default:
			return KeyEvent(KeyOther)
		}
	case *tcell.EventResize:
		return Event{Kind: EventResize}
	default:
		return Event{Kind: EventOther}
	}
}
