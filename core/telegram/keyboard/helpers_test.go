package keyboard

import (
	"strings"
	"testing"

	navkb "github.com/m3rciful/navmenu/core/keyboard"
)

func TestFromMenu(t *testing.T) {
	if markup, _ := FromMenu(nil); markup != nil {
		t.Fatal("nil keyboard should yield nil markup")
	}

	kb := navkb.New(
		navkb.Line{{Payload: "settings", Text: "Settings"}, {Payload: "about", Text: "About"}},
		navkb.Line{},
		navkb.Line{{Payload: strings.Repeat("x", 70), Text: "Too long"}},
		navkb.Line{{Payload: "back", Text: "Back", Color: navkb.ColorNegative}},
	)
	markup, skipped := FromMenu(kb)
	if markup == nil {
		t.Fatal("expected markup")
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped = %v", skipped)
	}
	rows := markup.InlineKeyboard
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0]) != 2 || rows[0][0].Text != "Settings" || rows[0][1].Data != "about" {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[1][0].Unique != NavUnique || rows[1][0].Data != "back" {
		t.Fatalf("second row = %+v", rows[1])
	}
}
