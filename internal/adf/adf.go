// Package adf converts between plain text and the Atlassian Document
// Format trees Jira Cloud requires for description and comment bodies.
//
// The local round trip is lossless: text is split into one paragraph per
// line going in, and paragraphs are rejoined with "\n" coming out, so
// ToText(FromText(s)) == s. Documents authored inside Jira may carry
// inline formatting, mentions, code blocks and other node kinds this
// package does not model; ToText extracts only the literal text from
// those.
package adf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Version is the document format version this package understands.
const Version = 1

// Doc is the root of an Atlassian Document Format tree.
type Doc struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// Node is a block or inline node. Leaves of type "text" carry literal
// text; container nodes carry children. Attributes and marks on remote
// documents are intentionally not modeled.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// ConversionError reports a malformed document tree encountered while
// extracting text. Well-formed trackers never produce one.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return "malformed document: " + e.Reason
}

// FromText wraps plain text as a document, one paragraph per line with a
// single text leaf each. No markdown or structure inference is applied.
func FromText(text string) *Doc {
	lines := strings.Split(text, "\n")
	content := make([]Node, 0, len(lines))
	for _, line := range lines {
		p := Node{Type: "paragraph"}
		if line != "" {
			p.Content = []Node{{Type: "text", Text: line}}
		}
		content = append(content, p)
	}
	return &Doc{Type: "doc", Version: Version, Content: content}
}

// ToText extracts the literal text of a document. Each top-level block
// contributes the depth-first concatenation of its text leaves, and
// blocks are joined with newlines. Non-text node kinds are skipped.
func ToText(d *Doc) (string, error) {
	if d == nil {
		return "", &ConversionError{Reason: "nil document"}
	}
	if d.Type != "doc" {
		return "", &ConversionError{
			Reason: fmt.Sprintf("root node type %q, want \"doc\"", d.Type),
		}
	}
	if d.Version != Version {
		return "", &ConversionError{
			Reason: fmt.Sprintf("unsupported document version %d", d.Version),
		}
	}

	blocks := make([]string, 0, len(d.Content))
	for _, block := range d.Content {
		var sb strings.Builder
		collectText(block, &sb)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n"), nil
}

// FromWire reinterprets an arbitrary JSON value (as decoded into
// map[string]any by a read response) as a document tree. Unknown node
// attributes are dropped in the process.
func FromWire(v any) (*Doc, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("value is not JSON-shaped: %v", err),
		}
	}
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &ConversionError{
			Reason: fmt.Sprintf("value is not a document tree: %v", err),
		}
	}
	return &d, nil
}

// collectText appends the text of every leaf under n, depth first.
func collectText(n Node, sb *strings.Builder) {
	if n.Type == "text" {
		sb.WriteString(n.Text)
		return
	}
	for _, child := range n.Content {
		collectText(child, sb)
	}
}
