package chatclient

import "regexp"

type SegmentKind int

const (
	// SegmentText is prose, possibly with inline math.
	SegmentText SegmentKind = iota
	// SegmentCode is the inside of a ``` fence, kept verbatim.
	SegmentCode
)

func (k SegmentKind) String() string {
	if k == SegmentCode {
		return "code"
	}
	return "text"
}

// Segment is one renderable piece of a message.
type Segment struct {
	Kind    SegmentKind
	Content string
}

var codeFence = regexp.MustCompile("(?s)```.*?```")

// Segments splits content on fenced code blocks. An unterminated fence stays text.
// Empty text between adjacent pieces is dropped.
func Segments(content string) []Segment {
	var out []Segment
	last := 0
	for _, loc := range codeFence.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			out = append(out, Segment{Kind: SegmentText, Content: content[last:loc[0]]})
		}
		out = append(out, Segment{Kind: SegmentCode, Content: content[loc[0]+3 : loc[1]-3]})
		last = loc[1]
	}
	if last < len(content) {
		out = append(out, Segment{Kind: SegmentText, Content: content[last:]})
	}
	return out
}

// CodeBlocks returns the code segments of content in order.
func CodeBlocks(content string) []string {
	var blocks []string
	for _, seg := range Segments(content) {
		if seg.Kind == SegmentCode {
			blocks = append(blocks, seg.Content)
		}
	}
	return blocks
}
