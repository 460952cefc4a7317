package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/hal"
)

// tap is how long a key press holds a button down. Terminals report no key
// release, so every press is a short tap except the latched edit button.
const tap = 60 * time.Millisecond

const knobStep = 0.05

// keyboard maps keys to simulated buttons and knobs:
//
//	n / p     tap the next / previous button
//	e         latch or unlatch the edit button (hold)
//	1..9      select a knob
//	+ / -     turn the selected knob
//	q         quit
type keyboard struct {
	controls *hal.Controls
	cfg      config.Config
	quit     func()

	fd       int
	oldState *term.State
	stopOnce sync.Once

	mu       sync.Mutex
	selected int
	latched  bool
	changes  atomic.Uint64
}

func startKeyboard(controls *hal.Controls, cfg config.Config, quit func()) (*keyboard, error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}

	k := &keyboard{controls: controls, cfg: cfg, quit: quit, fd: fd, oldState: old}
	go k.read()
	return k, nil
}

// Stop restores the terminal. The reader goroutine ends with the process.
func (k *keyboard) Stop() {
	k.stopOnce.Do(func() {
		_ = term.Restore(k.fd, k.oldState)
	})
}

// Changes counts handled keys so the panel can redraw.
func (k *keyboard) Changes() uint64 { return k.changes.Load() }

func (k *keyboard) read() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			k.handle(buf[0])
		}
	}
}

func (k *keyboard) handle(b byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.changes.Add(1)

	switch {
	case b == 'q' || b == 0x03:
		k.quit()
	case b == 'n':
		k.tapButton(k.cfg.Buttons.Next)
	case b == 'p':
		k.tapButton(k.cfg.Buttons.Previous)
	case b == 'e':
		if k.cfg.Buttons.Edit >= 0 {
			k.latched = !k.latched
			k.controls.SetPin(k.cfg.Buttons.Edit, k.latched)
		}
	case b >= '1' && b <= '9':
		if i := int(b - '1'); i < k.cfg.Knobs.Count {
			k.selected = i
		}
	case b == '+' || b == '=':
		k.turn(knobStep)
	case b == '-' || b == '_':
		k.turn(-knobStep)
	}
}

func (k *keyboard) tapButton(i int) {
	if i < 0 {
		return
	}
	k.controls.SetPin(i, true)
	time.AfterFunc(tap, func() { k.controls.SetPin(i, false) })
}

func (k *keyboard) turn(delta float32) {
	if k.cfg.Knobs.Count == 0 {
		return
	}
	v := min(max(k.controls.Knob(k.selected)+delta, 0), 1)
	k.controls.SetKnob(k.selected, v)
}

// Help describes the key bindings and the current selection.
func (k *keyboard) Help() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	edit := "off"
	if k.latched {
		edit = "held"
	}
	return fmt.Sprintf("n next  p previous  e edit (%s)  1-%d knob (K%d)  +/- turn  q quit",
		edit, max(k.cfg.Knobs.Count, 1), k.selected+1)
}
