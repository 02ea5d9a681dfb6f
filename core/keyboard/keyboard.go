// Package keyboard models the transport-neutral button layout rendered under a menu message.
package keyboard

import "strings"

// Color is a presentation hint for a button. Transports that cannot colour buttons ignore it.
type Color int

const (
	// ColorDefault is the neutral button style.
	ColorDefault Color = iota
	// ColorPrimary highlights the main choice.
	ColorPrimary
	// ColorPositive marks a confirming choice.
	ColorPositive
	// ColorNegative marks a destructive or cancelling choice.
	ColorNegative
)

var colorNames = map[Color]string{
	ColorDefault:  "default",
	ColorPrimary:  "primary",
	ColorPositive: "positive",
	ColorNegative: "negative",
}

// String returns the lower-case colour name.
func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "default"
}

// ParseColor maps a colour name to a Color. Unknown or empty names yield ColorDefault and false.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range colorNames {
		if n == name {
			return c, true
		}
	}
	return ColorDefault, false
}

// Button is a single choice. Payload is what the transport sends back when pressed.
type Button struct {
	Payload string
	Text    string
	Color   Color
}

// Line is an ordered row of buttons.
type Line []Button

// Keyboard is an ordered sequence of lines.
type Keyboard struct {
	Lines []Line
}

// New returns a keyboard pre-filled with the given lines.
func New(lines ...Line) *Keyboard {
	return &Keyboard{Lines: lines}
}

// AddButton appends b to the last line, creating the first line when the keyboard is empty.
func (k *Keyboard) AddButton(b Button) {
	if len(k.Lines) == 0 {
		k.AddLine()
	}
	last := len(k.Lines) - 1
	k.Lines[last] = append(k.Lines[last], b)
}

// AddLine starts a new empty line. Consecutive calls produce visible gaps.
func (k *Keyboard) AddLine() {
	k.Lines = append(k.Lines, Line{})
}

// Buttons returns all buttons in render order.
func (k *Keyboard) Buttons() []Button {
	if k == nil {
		return nil
	}
	var out []Button
	for _, line := range k.Lines {
		out = append(out, line...)
	}
	return out
}

// Empty reports whether the keyboard carries no buttons at all.
func (k *Keyboard) Empty() bool {
	if k == nil {
		return true
	}
	for _, line := range k.Lines {
		if len(line) > 0 {
			return false
		}
	}
	return true
}
