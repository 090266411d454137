package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dfryer1193/blogeditor/editor"
	"github.com/dfryer1193/blogeditor/internal/config"
	"github.com/rs/zerolog/log"
)

const editHelp = `Commands:
  :title <text>     set the title
  :content <text>   replace the content
  :append <text>    add a line to the content (plain lines do the same)
  :tags <a, b, c>   set the comma separated tags
  :save             save the draft now
  :publish          publish and leave the editor
  :delete           ask to delete the post, then :confirm or :cancel
  :status           show the draft
  :help             show this help
  :quit             leave the editor, refused with unsaved changes
  :quit!            leave and discard unsaved changes`

// terminal prints notifications and route changes for a session.
// Its methods are called from save goroutines as well as the input loop.
type terminal struct {
	mu       sync.Mutex
	out      io.Writer
	location string
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

func (t *terminal) Success(msg string) {
	t.println(successStyle.Render("✓ " + msg))
}

func (t *terminal) Error(msg string) {
	t.println(errorStyle.Render("✗ " + msg))
}

func (t *terminal) Info(msg string) {
	t.println(dimStyle.Render(msg))
}

func (t *terminal) Replace(path string) {
	t.mu.Lock()
	t.location = path
	t.mu.Unlock()
	log.Debug().Str("path", path).Msg("Editor route replaced")
}

func (t *terminal) Navigate(path string) {
	t.mu.Lock()
	t.location = path
	t.mu.Unlock()
	t.println(dimStyle.Render("→ " + path))
}

func (t *terminal) prompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, promptStyle.Render(t.location+" > "))
}

func (t *terminal) render(f func(w io.Writer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f(t.out)
}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

func edit(ctx context.Context, service editor.PostService, cfg config.EditorConfig, id string, in io.Reader, out io.Writer) error {
	ui := newTerminal(out)
	sessionCfg := editor.Config{
		DebounceWindow: cfg.DebounceWindow,
		SaveInterval:   cfg.SaveInterval,
		Notifier:       ui,
		Navigator:      ui,
	}

	var session *editor.Session
	if id == "" {
		session = editor.NewSession(service, sessionCfg)
		ui.Replace(editor.NewEditorPath)
	} else {
		var err error
		session, err = editor.Open(ctx, service, id, sessionCfg)
		if err != nil {
			return err
		}
		ui.Replace(editor.EditorPath(id))
	}

	loop := &editLoop{session: session, ui: ui}
	return loop.run(ctx, in)
}

type editLoop struct {
	session *editor.Session
	ui      *terminal
}

// run reads commands until the session ends, the user quits or input runs out.
// Saves already running are waited for before returning.
func (l *editLoop) run(ctx context.Context, in io.Reader) error {
	defer func() {
		l.session.Wait()
		l.session.Close()
	}()

	l.ui.Info(editHelp)
	l.showState()

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	for {
		if l.session.State().Closed {
			return nil
		}
		l.ui.prompt()

		select {
		case <-ctx.Done():
			l.warnUnsaved()
			return nil
		case line, ok := <-lines:
			if !ok {
				l.warnUnsaved()
				return nil
			}
			if l.handle(ctx, line) {
				return nil
			}
		}
	}
}

func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("Failed to read editor input")
		}
	}()
	return lines
}

func (l *editLoop) warnUnsaved() {
	if l.session.NeedsLeaveWarning() {
		l.ui.Error("Leaving with unsaved changes")
	}
}

// handle runs one input line and reports whether the editor should exit
func (l *editLoop) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		l.appendLine(line)
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "title":
		l.set(editor.FieldTitle, arg)
	case "content":
		l.set(editor.FieldContent, arg)
	case "append":
		l.appendLine(arg)
	case "tags":
		l.set(editor.FieldTags, arg)
	case "save":
		if err := l.session.Save(); err != nil {
			l.ui.Error(err.Error())
			return false
		}
		l.session.Wait()
	case "publish":
		// failures are already reported through the notifier
		if err := l.session.Publish(ctx); err != nil {
			log.Debug().Err(err).Msg("Publish failed")
		}
	case "delete":
		l.requestDelete()
	case "confirm":
		err := l.session.ConfirmDelete(ctx)
		if errors.Is(err, editor.ErrDeleteNotRequested) {
			l.ui.Error("Nothing to confirm, use :delete first")
		}
	case "cancel":
		l.session.CancelDelete()
		l.ui.Info("Delete cancelled")
	case "status":
		l.showState()
	case "help":
		l.ui.Info(editHelp)
	case "quit":
		if l.session.NeedsLeaveWarning() {
			l.ui.Error("You have unsaved changes. Use :save, or :quit! to discard them")
			return false
		}
		return true
	case "quit!":
		return true
	default:
		l.ui.Error(fmt.Sprintf("Unknown command :%s, try :help", cmd))
	}
	return false
}

func (l *editLoop) showState() {
	state := l.session.State()
	l.ui.render(func(w io.Writer) { renderState(w, state) })
}

func (l *editLoop) set(field editor.Field, value string) {
	if err := l.session.SetField(field, value); err != nil {
		l.ui.Error(err.Error())
	}
}

func (l *editLoop) appendLine(line string) {
	content := l.session.State().Draft.Content
	if content != "" {
		content += "\n"
	}
	l.set(editor.FieldContent, content+line)
}

func (l *editLoop) requestDelete() {
	err := l.session.RequestDelete()
	switch {
	case errors.Is(err, editor.ErrNotPersisted):
		l.ui.Error("This post has not been saved, there is nothing to delete")
	case err != nil:
		l.ui.Error(err.Error())
	default:
		l.ui.Info("Delete this post? :confirm or :cancel")
	}
}
