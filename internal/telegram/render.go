package telegram

import (
	"html"
	"strings"

	"github.com/Reso1992/DmoTimer/internal/chat"
)

// renderHTML flattens a payload into Telegram HTML. A leading zero-width link
// makes the client show the image as the link preview.
func renderHTML(p chat.Payload) string {
	var b strings.Builder
	if p.ImageURL != "" {
		b.WriteString(`<a href="` + html.EscapeString(p.ImageURL) + `">&#8203;</a>`)
	}
	var blocks []string
	if p.Content != "" {
		blocks = append(blocks, inlineCode(p.Content))
	}
	if p.Title != "" {
		blocks = append(blocks, "<b>"+html.EscapeString(p.Title)+"</b>")
	}
	if p.Description != "" {
		blocks = append(blocks, inlineCode(p.Description))
	}
	for _, f := range p.Fields {
		blocks = append(blocks, "<b>"+html.EscapeString(f.Name)+"</b>\n"+inlineCode(f.Value))
	}
	if p.Footer != "" {
		blocks = append(blocks, "<i>"+html.EscapeString(p.Footer)+"</i>")
	}
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String()
}

// inlineCode escapes s and turns `backticked` spans into <code> tags.
func inlineCode(s string) string {
	parts := strings.Split(s, "`")
	if len(parts)%2 == 0 {
		// Unbalanced backticks: leave them literal.
		return html.EscapeString(s)
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString("<code>" + html.EscapeString(part) + "</code>")
			continue
		}
		b.WriteString(html.EscapeString(part))
	}
	return b.String()
}
