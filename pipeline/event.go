package pipeline

import (
	"fmt"

	"github.com/hupe1980/fxcore/input"
)

// EventKind identifies a control event.
type EventKind uint8

const (
	// EventKnob sets the destination of a knob ramp.
	EventKnob EventKind = iota + 1
	// EventNoteOn triggers a voice on VoiceTrigger modules.
	EventNoteOn
	// EventNoteOff releases a voice on VoiceTrigger modules.
	EventNoteOff
)

// Event is a control change delivered from outside the audio context.
// Events only retarget ramps or trigger voices; they never allocate or release.
type Event struct {
	Kind     EventKind
	Index    int     // knob index
	Value    float32 // normalized knob value
	Note     uint8
	Velocity uint8
}

// NotificationKind identifies a notification.
type NotificationKind uint8

const (
	// NotifyPresetLoaded reports a committed preset.
	NotifyPresetLoaded NotificationKind = iota + 1
	// NotifyPresetLoadFailed reports an aborted commit. Err holds the cause
	// and Preset the id that is active afterwards.
	NotifyPresetLoadFailed
	// NotifyKnobChanged reports a knob whose displayed value changed.
	NotifyKnobChanged
	// NotifyButton reports button events.
	NotifyButton
	// NotifyEditMode reports entering (Value 1) or leaving (Value 0) edit mode.
	NotifyEditMode
	// NotifyEditValue reports the live value of the edited knob.
	NotifyEditValue
	// NotifyDeadlineMissed reports overruns observed since the last frame.
	NotifyDeadlineMissed
	// NotifySwitchDropped reports a switch request ignored while busy.
	NotifySwitchDropped
)

var notificationNames = map[NotificationKind]string{
	NotifyPresetLoaded:     "preset-loaded",
	NotifyPresetLoadFailed: "preset-load-failed",
	NotifyKnobChanged:      "knob-changed",
	NotifyButton:           "button",
	NotifyEditMode:         "edit-mode",
	NotifyEditValue:        "edit-value",
	NotifyDeadlineMissed:   "deadline-missed",
	NotifySwitchDropped:    "switch-dropped",
}

func (k NotificationKind) String() string {
	if s, ok := notificationNames[k]; ok {
		return s
	}
	return fmt.Sprintf("notification(%d)", k)
}

// Notification is a read-only message from the audio context.
type Notification struct {
	Kind     NotificationKind
	Frame    uint64
	Preset   int // active preset after the event
	Previous int // preset active before a load, -1 on first load
	Target   int // requested preset for loads and dropped switches
	Index    int // knob or button index
	Value    float32
	Events   input.Events
	Count    uint64 // overruns for NotifyDeadlineMissed
	Err      error
}
