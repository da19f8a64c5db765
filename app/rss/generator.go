// Package rss renders collected messages as an RSS 2.0 document so a
// dataset can be followed in a feed reader while it is being labeled.
package rss

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/lysyi3m/tg-comb/app/dataset"
)

type Feed struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run writes one item per record, in record order.
func (g *Generator) Run(feed Feed, records []dataset.Record) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feed.Title, 4)
	g.writeElement(&buf, "link", feed.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(feed.Description, fmt.Sprintf("%d collected messages", len(records))), 4)

	if feed.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(feed.SelfLink)))
	}

	lastBuildDate := time.Now().In(time.Local)
	for _, r := range records {
		if r.Date != nil {
			lastBuildDate = *r.Date
			break
		}
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", "TG-Comb/"+cmp.Or(feed.Version, "dev"), 4)

	for _, r := range records {
		g.writeItem(&buf, r)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, r dataset.Record) {
	buf.WriteString("    <item>\n")

	link := ""
	if r.ChannelUsername != "" && r.MessageID > 0 {
		link = r.ChannelUsername + "/" + strconv.FormatInt(r.MessageID, 10)
	}

	if link != "" {
		buf.WriteString("      <guid isPermaLink=\"true\">")
		xml.EscapeText(buf, []byte(link))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", r.ChannelTitle, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", cmp.Or(r.Message, "No text"), 6)

	if r.Date != nil {
		g.writeElement(buf, "pubDate", r.Date.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", r.ChannelTitle, 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
