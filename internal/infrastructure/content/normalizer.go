// Package content prepares ingested article bodies for a debate.
package content

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"NewsDebate/internal/ports"
)

// charsPerToken approximates how many characters one model token covers.
const charsPerToken = 4

var (
	htmlTag    = regexp.MustCompile(`(?i)<(p|div|br|article|span|a|h[1-6]|ul|ol|li|html|body|section)[\s/>]`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// noise lists elements that never carry article text.
var noise = []string{"script", "style", "noscript", "nav", "header", "footer", "aside", "form", "iframe"}

// Normalizer converts HTML bodies to markdown and truncates long content.
type Normalizer struct {
	converter *md.Converter
	maxChars  int
}

var _ ports.ContentNormalizer = (*Normalizer)(nil)

// NewNormalizer builds a normalizer. maxTokens <= 0 disables truncation.
func NewNormalizer(maxTokens int) *Normalizer {
	return &Normalizer{
		converter: md.NewConverter("", true, nil),
		maxChars:  maxTokens * charsPerToken,
	}
}

// Normalize returns debate-ready text. Plain text passes through apart from
// whitespace cleanup and truncation.
func (n *Normalizer) Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil
	}

	if htmlTag.MatchString(text) {
		converted, err := n.fromHTML(text)
		if err != nil {
			return "", err
		}
		text = converted
	}

	text = blankLines.ReplaceAllString(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	return n.truncate(strings.TrimSpace(text)), nil
}

func (n *Normalizer) fromHTML(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(strings.Join(noise, ", ")).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	html, err := root.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	markdown, err := n.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return markdown, nil
}

func (n *Normalizer) truncate(text string) string {
	if n.maxChars <= 0 || len(text) <= n.maxChars {
		return text
	}
	cut := n.maxChars
	// Do not split a multi-byte rune.
	for cut > 0 && !utf8RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
