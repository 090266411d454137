// Package view turns posts into the values the list and detail screens display.
package view

import (
	"strings"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/dfryer1193/blogeditor/editor"
)

const (
	PreviewLength = 120
	ellipsis      = "..."
	untitled      = "Untitled"

	shortDateLayout = "Jan 2, 2006"
	longDateLayout  = "January 2, 2006"
)

type Card struct {
	ID       string
	Title    string
	Preview  string
	Tags     []string
	Status   string
	Date     string
	ReadPath string
	EditPath string
}

// List holds the posts split by status, each group in the order the service returned
type List struct {
	Published []Card
	Drafts    []Card
}

type Paragraph struct {
	Text string
	// Break marks an empty line
	Break bool
}

type Detail struct {
	ID         string
	Title      string
	Date       string
	Status     string
	Tags       []string
	Paragraphs []Paragraph
	EditPath   string
}

func BuildList(posts []*domain.Post) List {
	list := List{
		Published: make([]Card, 0),
		Drafts:    make([]Card, 0),
	}

	for _, p := range posts {
		card := buildCard(p)
		if p.Status == domain.StatusPublished {
			list.Published = append(list.Published, card)
		} else {
			list.Drafts = append(list.Drafts, card)
		}
	}
	return list
}

func buildCard(p *domain.Post) Card {
	title := p.Title
	if title == "" {
		title = untitled
	}

	return Card{
		ID:       p.ID,
		Title:    title,
		Preview:  Truncate(p.Content, PreviewLength),
		Tags:     p.Tags,
		Status:   StatusLabel(p.Status),
		Date:     formatDate(p, shortDateLayout),
		ReadPath: editor.DetailPath(p.ID),
		EditPath: editor.EditorPath(p.ID),
	}
}

func BuildDetail(p *domain.Post) Detail {
	return Detail{
		ID:         p.ID,
		Title:      p.Title,
		Date:       formatDate(p, longDateLayout),
		Status:     StatusLabel(p.Status),
		Tags:       p.Tags,
		Paragraphs: Paragraphs(p.Content),
		EditPath:   editor.EditorPath(p.ID),
	}
}

// Truncate shortens s to at most n runes followed by "..."; shorter text is returned unchanged
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}

// Paragraphs splits content on line breaks. Empty lines become breaks.
func Paragraphs(content string) []Paragraph {
	lines := strings.Split(content, "\n")
	paragraphs := make([]Paragraph, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			paragraphs = append(paragraphs, Paragraph{Break: true})
			continue
		}
		paragraphs = append(paragraphs, Paragraph{Text: line})
	}
	return paragraphs
}

func StatusLabel(s domain.Status) string {
	if s == domain.StatusPublished {
		return "Published"
	}
	return "Draft"
}

func formatDate(p *domain.Post, layout string) string {
	if p.UpdatedAt.IsZero() {
		return ""
	}
	return p.UpdatedAt.Format(layout)
}
