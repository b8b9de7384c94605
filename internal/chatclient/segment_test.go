package chatclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Segment
	}{
		{
			name:    "plain text",
			content: "Article 402 sets $t = 15$ years.",
			want:    []Segment{{Kind: SegmentText, Content: "Article 402 sets $t = 15$ years."}},
		},
		{
			name:    "code in the middle",
			content: "Use:\n```\nclause 1\n```\nthen sign.",
			want: []Segment{
				{Kind: SegmentText, Content: "Use:\n"},
				{Kind: SegmentCode, Content: "\nclause 1\n"},
				{Kind: SegmentText, Content: "\nthen sign."},
			},
		},
		{
			name:    "adjacent blocks",
			content: "```a``````b```",
			want: []Segment{
				{Kind: SegmentCode, Content: "a"},
				{Kind: SegmentCode, Content: "b"},
			},
		},
		{
			name:    "unterminated fence stays text",
			content: "start ```open",
			want:    []Segment{{Kind: SegmentText, Content: "start ```open"}},
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segments(tt.content))
		})
	}
}

func TestCodeBlocks(t *testing.T) {
	content := "Draft:\n```\nThe tenant shall...\n```\nand\n```\nThe landlord shall...\n```"
	assert.Equal(t, []string{"\nThe tenant shall...\n", "\nThe landlord shall...\n"}, CodeBlocks(content))
	assert.Empty(t, CodeBlocks("no code here"))
}
