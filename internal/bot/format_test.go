package bot

import (
	"strings"
	"testing"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

func TestFormat_TextOnly(t *testing.T) {
	v := &domain.Verse{Sura: "Al-Baqarah", VerseNumber: "255", Text: "Ayat al-Kursi"}
	r := Format(v)

	if !strings.Contains(r.Text, "Al-Baqarah") || !strings.Contains(r.Text, "255") {
		t.Fatalf("display block missing sura/number: %q", r.Text)
	}
	if !strings.Contains(r.Text, "Ayat al-Kursi") {
		t.Fatalf("display block missing text: %q", r.Text)
	}
	if r.HasAudio() {
		t.Fatalf("verse without audio produced audio reply")
	}
}

func TestFormat_EmptyTextTolerated(t *testing.T) {
	v := &domain.Verse{Sura: "Yasin", VerseNumber: "1"}
	r := Format(v)
	if strings.HasSuffix(r.Text, "\n\n") {
		t.Fatalf("trailing blank block for empty text: %q", r.Text)
	}
	if !strings.Contains(r.Text, "Yasin") {
		t.Fatalf("missing sura: %q", r.Text)
	}
}

func TestFormat_AudioForwarded(t *testing.T) {
	v := &domain.Verse{Sura: "Yasin", VerseNumber: "1", AudioFileID: "CQACAgIAAxk"}
	r := Format(v)
	if r.AudioFileID != "CQACAgIAAxk" {
		t.Fatalf("audio file id not forwarded: %+v", r)
	}
}

func TestResultLabel(t *testing.T) {
	v := &domain.Verse{Sura: "Al-Baqarah", VerseNumber: "255"}
	if got := ResultLabel(v); got != "Al-Baqarah (255)" {
		t.Fatalf("ResultLabel = %q", got)
	}
}

func TestReply_Close(t *testing.T) {
	var r *Reply
	r.Close() // nil-safe

	called := false
	r = &Reply{cleanup: func() { called = true }}
	r.Close()
	if !called {
		t.Fatalf("Close did not invoke cleanup")
	}
}
