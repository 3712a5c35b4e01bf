// Package content splits chat message text into text and inline-image blocks.
//
// An inline image is markdown-style image markup, `![alt](https://host/path)`, placed
// anywhere in a message. The url must use http or https and may not contain whitespace
// or a closing parenthesis, so urls with nested parentheses are cut short. The alt text
// may not contain ']', so markup such as `![[cat]](https://host/c.png)` stays literal
// text. Anything that does not match is kept as literal text.
package content

import (
	"regexp"
	"strings"
)

// Kind tags a Block
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Block is one renderable fragment of a message. Text is set for KindText, URL for
// KindImage.
type Block struct {
	Kind Kind
	Text string
	URL  string
}

// TextBlock returns a text fragment
func TextBlock(text string) Block {
	return Block{Kind: KindText, Text: text}
}

// ImageBlock returns an inline image fragment
func ImageBlock(url string) Block {
	return Block{Kind: KindImage, URL: url}
}

// The alt text may not contain ']' so a malformed image never swallows the one after it.
var imagePattern = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)\)`)

// Parse converts raw message text into blocks, left to right. Text spans between
// images are trimmed and dropped when empty. Parse("") returns an empty slice.
func Parse(text string) []Block {
	blocks := []Block{}
	last := 0

	for _, loc := range imagePattern.FindAllStringSubmatchIndex(text, -1) {
		blocks = appendText(blocks, text[last:loc[0]])
		blocks = append(blocks, ImageBlock(text[loc[2]:loc[3]]))
		last = loc[1]
	}

	return appendText(blocks, text[last:])
}

func appendText(blocks []Block, span string) []Block {
	if trimmed := strings.TrimSpace(span); trimmed != "" {
		blocks = append(blocks, TextBlock(trimmed))
	}
	return blocks
}

// HasImages reports whether text contains at least one inline image
func HasImages(text string) bool {
	return imagePattern.MatchString(text)
}

// Image returns the markup that Parse recognizes as an inline image
func Image(alt, url string) string {
	return "![" + alt + "](" + url + ")"
}
