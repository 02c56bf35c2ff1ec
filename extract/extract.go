// Package extract maps raw upstream batch payloads into per-chapter content
// and handles HTML cleanup for the two output modes.
package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pzhu/bookfetch"
	"golang.org/x/net/html"
)

var _ bookfetch.ContentExtractor = (*Extractor)(nil)

// Extractor maps a batch JSON payload into chapter content. The payload is
// either a top-level map of chapter id to chapter object or the same map
// nested under a "data" key; both spellings occur upstream. Chapter objects
// carry "content" plus a title under "title" or "origin_chapter_title".
type Extractor struct {
	// KeepMarkup preserves the body fragment of the content for packaged
	// (epub) output. When false, content is reduced to plain text.
	KeepMarkup bool
}

// chapterPayload is one chapter object as the upstream sends it.
type chapterPayload struct {
	Content            string `json:"content"`
	Title              string `json:"title"`
	OriginChapterTitle string `json:"origin_chapter_title"`
}

// Extract returns usable content per chapter id. Chapters missing from the
// payload, or present with empty content, are absent from the result.
func (e *Extractor) Extract(raw json.RawMessage) map[string]bookfetch.ChapterContent {
	out := map[string]bookfetch.ChapterContent{}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return out
	}
	items := top
	if data, ok := top["data"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(data, &nested); err == nil && nested != nil {
			items = nested
		}
	}

	for id, item := range items {
		var ch chapterPayload
		if err := json.Unmarshal(item, &ch); err != nil {
			continue
		}
		if strings.TrimSpace(ch.Content) == "" {
			continue
		}

		text := ch.Content
		if e.KeepMarkup {
			text = BodyFragment(text)
		} else {
			text = PlainText(text)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		title := ch.Title
		if title == "" {
			title = ch.OriginChapterTitle
		}
		if title == "" {
			title = id
		}
		out[id] = bookfetch.ChapterContent{Title: title, Text: text}
	}
	return out
}

// BodyFragment returns the inner markup of the document's <body>. Content
// arriving as a full HTML document is trimmed to just the fragment an epub
// chapter needs; content without a body parses into one anyway under the
// HTML5 algorithm.
func BodyFragment(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	body := findBody(doc)
	if body == nil {
		return content
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return content
		}
	}
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

// PlainText strips markup from chapter content, keeping paragraph breaks.
// Non-HTML input passes through with whitespace normalized.
func PlainText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}

	var lines []string
	paras := doc.Find("p")
	if paras.Length() > 0 {
		paras.Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				lines = append(lines, t)
			}
		})
		return strings.Join(lines, "\n")
	}

	for _, line := range strings.Split(doc.Text(), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}
