package keyboard

import "testing"

func TestKeyboardAddButtonAndLine(t *testing.T) {
	kb := &Keyboard{}
	kb.AddButton(Button{Payload: "1", Text: "button 1"})
	kb.AddButton(Button{Payload: "2", Text: "button 2"})
	kb.AddLine()
	kb.AddButton(Button{Payload: "3", Text: "button 3"})

	if len(kb.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(kb.Lines))
	}
	if len(kb.Lines[0]) != 2 || len(kb.Lines[1]) != 1 {
		t.Fatalf("unexpected line sizes: %d, %d", len(kb.Lines[0]), len(kb.Lines[1]))
	}
	if kb.Lines[1][0].Payload != "3" {
		t.Fatalf("payload = %q, want 3", kb.Lines[1][0].Payload)
	}
}

func TestKeyboardConsecutiveLines(t *testing.T) {
	kb := &Keyboard{}
	kb.AddLine()
	kb.AddLine()
	kb.AddButton(Button{Payload: "x"})

	if len(kb.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(kb.Lines))
	}
	if len(kb.Lines[0]) != 0 {
		t.Fatalf("first line should stay empty, got %d buttons", len(kb.Lines[0]))
	}
}

func TestKeyboardFromLines(t *testing.T) {
	kb := New(Line{{Payload: "1"}, {Payload: "2"}, {Payload: "3"}})
	if len(kb.Lines) != 1 || len(kb.Lines[0]) != 3 {
		t.Fatalf("unexpected layout: %+v", kb.Lines)
	}
	if got := len(kb.Buttons()); got != 3 {
		t.Fatalf("buttons = %d, want 3", got)
	}
	if kb.Empty() {
		t.Fatal("keyboard should not be empty")
	}
	if !(&Keyboard{Lines: []Line{{}}}).Empty() {
		t.Fatal("keyboard with only empty lines should be empty")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"primary":   ColorPrimary,
		" Positive": ColorPositive,
		"NEGATIVE":  ColorNegative,
		"default":   ColorDefault,
	}
	for in, want := range cases {
		got, ok := ParseColor(in)
		if !ok || got != want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseColor("purple"); ok {
		t.Error("ParseColor(purple) should fail")
	}
	if ColorPositive.String() != "positive" {
		t.Errorf("String() = %s", ColorPositive.String())
	}
}
