//go:build rtmidi

package main

// Registers the rtmidi driver so -midi can open hardware ports.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
