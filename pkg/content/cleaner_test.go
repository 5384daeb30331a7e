package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleaner_Clean(t *testing.T) {
	cleaner := NewCleaner()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Just a plain paragraph.",
			want:  "Just a plain paragraph.",
		},
		{
			name:  "html stripped",
			input: "<p>First part.</p><p>Second part.</p>",
			want:  "First part. Second part.",
		},
		{
			name:  "entities decoded",
			input: "Ben &amp; Jerry&#39;s",
			want:  "Ben & Jerry's",
		},
		{
			name:  "scripts removed",
			input: `<p>Real text.</p><script>alert("x")</script>`,
			want:  "Real text.",
		},
		{
			name:  "boilerplate lines dropped",
			input: "Real first line.\nRead more at our site\nShare this article\nReal second line.",
			want:  "Real first line.\nReal second line.",
		},
		{
			name:  "italian wordpress footer dropped",
			input: "Testo vero.\nL'articolo Qualcosa proviene da macitynet.it.",
			want:  "Testo vero.",
		},
		{
			name:  "whitespace normalized",
			input: "Too   many    spaces.\n\n\n\n\nToo many newlines.",
			want:  "Too many spaces.\n\nToo many newlines.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleaner.Clean(tt.input))
		})
	}
}

func TestCleaner_Clean_Empty(t *testing.T) {
	cleaner := NewCleaner()
	assert.Empty(t, cleaner.Clean(""))
	assert.Empty(t, cleaner.Clean("<div><span></span></div>"))
}
