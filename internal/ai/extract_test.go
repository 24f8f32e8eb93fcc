package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocument(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html><body><h1>Hi</h1></body></html>"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "fenced block with trailing commentary",
			raw:  "Here is your website:\n```html\n" + doc + "\n```\nLet me know if you want changes!",
			want: doc,
		},
		{
			name: "fenced block with no newline after tag",
			raw:  "```html" + doc + "```",
			want: doc,
		},
		{
			name: "only first fenced block is honored",
			raw:  "```html\n" + doc + "\n```\nExample snippet:\n```html\n<div>nope</div>\n```",
			want: doc,
		},
		{
			name: "bare document with surrounding whitespace",
			raw:  "\n\n  " + doc + "  \n",
			want: doc,
		},
		{
			name: "document starting with html tag",
			raw:  "<html><body></body></html>",
			want: "<html><body></body></html>",
		},
		{
			name: "pure prose returned unchanged",
			raw:  "I could not generate a website for that prompt.",
			want: "I could not generate a website for that prompt.",
		},
		{
			name: "unclosed fence falls through to prose",
			raw:  "```html\nhalf a document",
			want: "```html\nhalf a document",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDocument(tt.raw))
		})
	}
}

func TestExtractDocumentIdempotent(t *testing.T) {
	inputs := []string{
		"<!DOCTYPE html>\n<html><body></body></html>",
		"<html lang=\"en\"><head></head><body></body></html>",
	}
	for _, raw := range inputs {
		once := ExtractDocument(raw)
		assert.Equal(t, once, ExtractDocument(once))
	}
}
