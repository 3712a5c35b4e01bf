package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{"empty", "", []Block{}},
		{"whitespace only", "  \n\t ", []Block{}},
		{"plain text", "hello", []Block{TextBlock("hello")}},
		{"plain text is trimmed", "  hello world \n", []Block{TextBlock("hello world")}},
		{"single image", "![x](https://a/b.png)", []Block{ImageBlock("https://a/b.png")}},
		{
			"text image text",
			"a ![x](https://a/b.png) b",
			[]Block{TextBlock("a"), ImageBlock("https://a/b.png"), TextBlock("b")},
		},
		{
			"adjacent images",
			"![a](https://x)![b](https://y)",
			[]Block{ImageBlock("https://x"), ImageBlock("https://y")},
		},
		{
			"images separated by blanks",
			"![a](https://x)  \n  ![b](http://y)",
			[]Block{ImageBlock("https://x"), ImageBlock("http://y")},
		},
		{"empty alt", "![](https://x/cat.jpg)", []Block{ImageBlock("https://x/cat.jpg")}},
		{
			"multiline text around image",
			"Here is a cat:\n![cat](https://cdn2.thecatapi.com/images/abc.jpg)\nEnjoy!",
			[]Block{
				TextBlock("Here is a cat:"),
				ImageBlock("https://cdn2.thecatapi.com/images/abc.jpg"),
				TextBlock("Enjoy!"),
			},
		},
		{"missing closing paren", "look ![x](https://a/b.png", []Block{TextBlock("look ![x](https://a/b.png")}},
		{"non-http scheme", "![x](ftp://a/b.png)", []Block{TextBlock("![x](ftp://a/b.png)")}},
		{"relative url", "![x](/img/b.png)", []Block{TextBlock("![x](/img/b.png)")}},
		{"whitespace in url", "![x](https://a/b c.png)", []Block{TextBlock("![x](https://a/b c.png)")}},
		{"link without bang", "[x](https://a)", []Block{TextBlock("[x](https://a)")}},
		{"bracket in alt", "![[cat]](https://x/c.png)", []Block{TextBlock("![[cat]](https://x/c.png)")}},
		{
			"malformed image does not swallow the next one",
			"see ![x](ftp://a) and ![y](https://b)",
			[]Block{TextBlock("see ![x](ftp://a) and"), ImageBlock("https://b")},
		},
		{
			"nested parentheses cut the url short",
			"![x](https://a/b_(1).png)",
			[]Block{ImageBlock("https://a/b_(1"), TextBlock(".png)")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	in := "first ![a](https://x/1.png) middle ![b](https://x/2.png) last"
	assert.Equal(t, Parse(in), Parse(in))
}

func TestImageRoundTrip(t *testing.T) {
	markup := Image("cat", "https://cdn2.thecatapi.com/images/abc.jpg")
	assert.True(t, HasImages(markup))
	assert.Equal(t, []Block{ImageBlock("https://cdn2.thecatapi.com/images/abc.jpg")}, Parse(markup))
	assert.False(t, HasImages("no pictures here"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
