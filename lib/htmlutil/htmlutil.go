package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("tmscout.lib.htmlutil")

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
	// <br> separates the date line from the remaining-time line in
	// deadline cells, flatten it to a space instead of gluing them
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteString(" ")
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText flattens a selection into printable, single-spaced text.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	text := removeNonPrintable(buffer.String())
	text = strings.Trim(text, " \t\n")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return text
}

type Anchor struct {
	Name string
	Href string
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := GetText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// LabelValue locates a table cell whose text matches `label` and returns
// the text of the nearest following sibling cell that isn't empty. The
// site lays out semi-structured pages as <td>Label</td><td>Value</td>
// rows, occasionally with a blank spacer or a bar image cell in between,
// hence the sibling walk instead of a fixed +1 offset.
//
// An exact (trimmed) match is preferred over a substring match so that
// "Bids" never resolves to the "Bids Average (Scout)" row.
func LabelValue(doc *goquery.Document, label string) (string, bool) {
	cell := findLabelCell(doc, label)
	if cell == nil {
		return "", false
	}
	for sib := cell.Next(); sib.Length() > 0; sib = sib.Next() {
		text := CleanText(sib)
		if text != "" {
			return text, true
		}
	}
	return "", false
}

func findLabelCell(doc *goquery.Document, label string) *goquery.Selection {
	var exact *goquery.Selection
	var partial *goquery.Selection
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		// only leaf cells, a wrapper cell around a nested table would
		// otherwise swallow every label inside it
		if td.Find("td").Length() > 0 {
			return true
		}
		text := CleanText(td)
		if text == label {
			exact = td
			return false
		}
		if partial == nil && strings.Contains(text, label) {
			partial = td
		}
		return true
	})
	if exact != nil {
		return exact
	}
	return partial
}
