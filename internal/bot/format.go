package bot

import (
	"fmt"
	"strings"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

// Format builds the user-facing reply for one verse: a display block with the
// sura name, verse number, and text, plus the recitation audio when present.
// Pure function, no I/O.
func Format(v *domain.Verse) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s (%s-oyat)", v.Sura, v.VerseNumber)
	if v.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(v.Text)
	}

	r := Reply{Text: b.String()}
	if v.HasAudio() {
		r.AudioFileID = v.AudioFileID
	}
	return r
}

// ResultLabel is the selectable-item label for one search hit.
func ResultLabel(v *domain.Verse) string {
	return fmt.Sprintf("%s (%s)", v.Sura, v.VerseNumber)
}
