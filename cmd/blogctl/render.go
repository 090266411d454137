package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dfryer1193/blogeditor/editor"
	"github.com/dfryer1193/blogeditor/editor/view"
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	cardStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

const savedAtLayout = "15:04:05"

func renderList(w io.Writer, list view.List) {
	if len(list.Published) == 0 && len(list.Drafts) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No posts yet. Start one with: blogctl edit"))
		return
	}

	renderCards(w, fmt.Sprintf("Published (%d)", len(list.Published)), list.Published)
	renderCards(w, fmt.Sprintf("Drafts (%d)", len(list.Drafts)), list.Drafts)
}

func renderCards(w io.Writer, heading string, cards []view.Card) {
	fmt.Fprintln(w, headingStyle.Render(heading))
	if len(cards) == 0 {
		fmt.Fprintln(w, cardStyle.Render(dimStyle.Render("none")))
		fmt.Fprintln(w)
		return
	}

	for _, card := range cards {
		lines := []string{
			titleStyle.Render(card.Title) + "  " + dimStyle.Render(card.Date),
		}
		if card.Preview != "" {
			lines = append(lines, card.Preview)
		}
		if len(card.Tags) > 0 {
			lines = append(lines, renderTags(card.Tags))
		}
		lines = append(lines, dimStyle.Render("id "+card.ID))

		fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n")))
		fmt.Fprintln(w)
	}
}

func renderDetail(w io.Writer, d view.Detail) {
	fmt.Fprintln(w, headingStyle.Render(d.Title))

	meta := d.Status
	if d.Date != "" {
		meta = d.Date + " · " + meta
	}
	fmt.Fprintln(w, dimStyle.Render(meta))

	if len(d.Tags) > 0 {
		fmt.Fprintln(w, renderTags(d.Tags))
	}
	fmt.Fprintln(w)

	for _, p := range d.Paragraphs {
		if p.Break {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, p.Text)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render("edit with: blogctl edit "+d.ID))
}

func renderTags(tags []string) string {
	rendered := make([]string, len(tags))
	for i, t := range tags {
		rendered[i] = tagStyle.Render("#" + t)
	}
	return strings.Join(rendered, " ")
}

func renderState(w io.Writer, s editor.State) {
	title := s.Draft.Title
	if title == "" {
		title = dimStyle.Render("(no title)")
	}

	id := s.ID
	if id == "" {
		id = "not saved yet"
	}

	fmt.Fprintln(w, titleStyle.Render("Title:   ")+title)
	fmt.Fprintln(w, titleStyle.Render("Tags:    ")+s.Draft.Tags)
	fmt.Fprintln(w, titleStyle.Render("Status:  ")+view.StatusLabel(s.Status)+dimStyle.Render(" · "+saveState(s)))
	fmt.Fprintln(w, titleStyle.Render("Post:    ")+dimStyle.Render(id))
	fmt.Fprintln(w, titleStyle.Render("Content: "))
	if s.Draft.Content == "" {
		fmt.Fprintln(w, cardStyle.Render(dimStyle.Render("(empty)")))
		return
	}
	fmt.Fprintln(w, cardStyle.Render(s.Draft.Content))
}

func saveState(s editor.State) string {
	switch {
	case s.Saving:
		return "saving..."
	case s.Modified:
		return "unsaved changes"
	case !s.LastSaved.IsZero():
		return "saved at " + s.LastSaved.Format(savedAtLayout)
	default:
		return "no changes"
	}
}
