package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	var out strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// Collapse trims s and collapses every whitespace run into a single space.
func Collapse(s string) string {
	s = removeNonPrintable(s)
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// CleanText is the collapsed text of every node in sel.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for i, n := range sel.Nodes {
		if i > 0 {
			buffer.WriteByte(' ')
		}
		getTextRecursive(n, &buffer)
	}
	return Collapse(buffer.String())
}

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// SplitBreaks splits the inner html of sel on <br> tags and returns the
// collapsed text of each part, empty parts are dropped.
func SplitBreaks(sel *goquery.Selection) []string {
	inner, err := sel.Html()
	if err != nil {
		return nil
	}
	var out []string
	for _, part := range lineBreak.Split(inner, -1) {
		doc, err := html.Parse(strings.NewReader(part))
		if err != nil {
			continue
		}
		text := Collapse(GetText(doc))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Lines returns the text content of node with block elements and <br>
// rendered as newlines, runs of spaces inside a line are collapsed.
func Lines(node *html.Node) []string {
	var buffer bytes.Buffer
	linesRecursive(node, &buffer)
	raw := strings.Split(buffer.String(), "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimRight(spaceRun.ReplaceAllString(l, " "), " ")
	}
	return out
}

var spaceRun = regexp.MustCompile(`[ \t\r\f\v\x{a0}]+`)

var blockElements = map[string]bool{
	"p": true, "div": true, "tr": true, "table": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func linesRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.Data == "br" {
			buffer.WriteByte('\n')
			return
		}
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		linesRecursive(child, buffer)
	}
	if node.Type == html.ElementNode && blockElements[node.Data] {
		buffer.WriteByte('\n')
	}
}

// Attr is the attribute value on the first node of sel, or "".
func Attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}
