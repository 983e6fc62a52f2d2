package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain text", "Go Meetup", false},
		{"ampersand", "Tom & Jerry", false},
		{"less-than comparison", "3 < 5", false},
		{"quotes", `The "Big" Night`, false},
		{"empty", "", false},
		{"bold tag", "<b>Bold</b> title", true},
		{"angle-bracketed word", "Rock <Live> Night", true},
		{"script", `Hall<script>alert("x")</script>`, true},
		{"character reference", "&lt;b&gt;", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsMarkup(tt.input))
		})
	}
}

func TestMarkupFields(t *testing.T) {
	title := "<b>Launch</b>"
	venue := "Hall & Co"
	host := "<i>x</i>"

	got := MarkupFields(map[string]*string{
		"title": &title,
		"venue": &venue,
		"host":  &host,
		"date":  nil,
	}, "title", "date", "venue", "host")

	assert.Equal(t, []string{"title", "host"}, got)
}
