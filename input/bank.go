package input

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// MaxButtons is the largest supported bank.
const MaxButtons = 64

// ErrTooManyButtons is returned by NewBank for banks above MaxButtons.
var ErrTooManyButtons = errors.New("input: too many buttons")

// Bank debounces a fixed set of buttons and tracks their clean levels.
type Bank struct {
	buttons []Debouncer
	pressed *bitset.BitSet
}

// NewBank creates n debouncers sharing cfg.
func NewBank(n int, cfg DebounceConfig) (*Bank, error) {
	if n < 0 || n > MaxButtons {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyButtons, n, MaxButtons)
	}
	b := &Bank{
		buttons: make([]Debouncer, n),
		pressed: bitset.New(MaxButtons),
	}
	for i := range b.buttons {
		b.buttons[i] = NewDebouncer(cfg)
	}
	return b, nil
}

// Len returns the number of buttons.
func (b *Bank) Len() int { return len(b.buttons) }

// Tick feeds one raw level per button and writes the raised events to out.
// raw and out shorter than the bank leave the remaining buttons untouched.
func (b *Bank) Tick(raw []bool, out []Events) {
	n := min(len(b.buttons), len(raw), len(out))
	for i := 0; i < n; i++ {
		out[i] = b.buttons[i].Tick(raw[i])
		if b.buttons[i].clean {
			b.pressed.Set(uint(i))
		} else {
			b.pressed.Clear(uint(i))
		}
	}
}

// Button returns debouncer i, or nil when out of range.
func (b *Bank) Button(i int) *Debouncer {
	if i < 0 || i >= len(b.buttons) {
		return nil
	}
	return &b.buttons[i]
}

// Pressed reports the clean level of button i.
func (b *Bank) Pressed(i int) bool {
	if i < 0 || i >= len(b.buttons) {
		return false
	}
	return b.pressed.Test(uint(i))
}

// PressedCount returns the number of buttons currently pressed.
func (b *Bank) PressedCount() int {
	return int(b.pressed.Count())
}

// Mask returns the clean levels as a bit mask, button i at bit i.
func (b *Bank) Mask() uint64 {
	var m uint64
	for i, ok := b.pressed.NextSet(0); ok; i, ok = b.pressed.NextSet(i + 1) {
		m |= 1 << i
	}
	return m
}

// Reset releases every button.
func (b *Bank) Reset() {
	for i := range b.buttons {
		b.buttons[i].Reset()
	}
	b.pressed.ClearAll()
}
