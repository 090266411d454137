// Package editor coordinates autosaving of a single post being edited.
//
// A Session owns the local draft and decides when it is written back through a
// PostService. Edits re-arm a debounce timer; a periodic timer started with the
// first non-empty draft saves even while the user keeps typing. At most one save
// request is outstanding per session, and attempts made while one is running are
// dropped rather than queued.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDebounceWindow = time.Second
	DefaultSaveInterval   = 15 * time.Second
)

var (
	ErrTitleRequired      = fmt.Errorf("%w: please add a title before publishing", domain.ErrValidation)
	ErrContentRequired    = fmt.Errorf("%w: please add content before publishing", domain.ErrValidation)
	ErrNotPersisted       = errors.New("post has not been saved yet")
	ErrDeleteNotRequested = errors.New("delete was not requested")
	ErrSessionClosed      = errors.New("editing session is closed")
	ErrUnknownField       = errors.New("unknown field")
)

// Field names an editable part of the draft
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// Draft holds the editable fields. Tags is the raw comma separated text as typed.
type Draft struct {
	Title   string
	Content string
	Tags    string
}

// isEmpty matches what the service would store, which trims title and content
func (d Draft) isEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == ""
}

// snapshot serializes the fields that get persisted. Tags are compared parsed so
// that separator-only edits do not count as changes.
func (d Draft) snapshot() string {
	data, _ := json.Marshal(struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}{d.Title, d.Content, domain.ParseTags(d.Tags)})
	return string(data)
}

type Config struct {
	DebounceWindow time.Duration
	SaveInterval   time.Duration
	Clock          Clock
	Notifier       Notifier
	Navigator      Navigator
	Logger         *zerolog.Logger
}

// State is a point-in-time copy of a session for rendering
type State struct {
	ID              string
	Draft           Draft
	Status          domain.Status
	Modified        bool
	Saving          bool
	Pending         bool
	LastSaved       time.Time
	DeleteRequested bool
	Closed          bool
}

type Session struct {
	service   PostService
	clock     Clock
	notifier  Notifier
	navigator Navigator
	log       zerolog.Logger

	debounceWindow time.Duration
	saveInterval   time.Duration

	mu              sync.Mutex
	id              string
	status          domain.Status
	draft           Draft
	lastSnapshot    string
	modified        bool
	inFlight        bool
	pending         bool
	lastSaved       time.Time
	deleteRequested bool
	closed          bool

	debounce    Timer
	debounceGen uint64
	periodic    Timer

	saves sync.WaitGroup
}

// NewSession starts editing a post that does not exist yet
func NewSession(service PostService, cfg Config) *Session {
	s := newSession(service, cfg)
	s.status = domain.StatusDraft
	return s
}

// Open loads an existing post and starts editing it.
// The loaded fields become the last persisted snapshot, so an untouched draft is never saved.
func Open(ctx context.Context, service PostService, id string, cfg Config) (*Session, error) {
	post, err := service.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}

	s := newSession(service, cfg)
	s.id = post.ID
	s.status = post.Status
	s.draft = Draft{
		Title:   post.Title,
		Content: post.Content,
		Tags:    domain.FormatTags(post.Tags),
	}
	s.lastSnapshot = s.draft.snapshot()

	s.mu.Lock()
	if !s.draft.isEmpty() {
		s.startPeriodicLocked()
	}
	s.mu.Unlock()

	return s, nil
}

func newSession(service PostService, cfg Config) *Session {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Navigator == nil {
		cfg.Navigator = nopNavigator{}
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Session{
		service:        service,
		clock:          cfg.Clock,
		notifier:       cfg.Notifier,
		navigator:      cfg.Navigator,
		log:            logger.With().Str("component", "editor").Logger(),
		debounceWindow: cfg.DebounceWindow,
		saveInterval:   cfg.SaveInterval,
	}
}

// effects are notifier and navigator calls collected under the lock and run after it is released
type effects []func()

func (e effects) run() {
	for _, f := range e {
		f()
	}
}

// SetField records an edit and re-arms the debounce timer. It never contacts the service.
func (s *Session) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	switch field {
	case FieldTitle:
		s.draft.Title = value
	case FieldContent:
		s.draft.Content = value
	case FieldTags:
		s.draft.Tags = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	s.modified = true
	s.pending = true
	s.armDebounceLocked()

	if s.periodic == nil && !s.draft.isEmpty() {
		s.startPeriodicLocked()
	}
	return nil
}

func (s *Session) armDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
	}

	// a fire that raced with Stop carries an old generation and is ignored
	s.debounceGen++
	gen := s.debounceGen
	s.debounce = s.clock.AfterFunc(s.debounceWindow, func() {
		s.onDebounce(gen)
	})
}

func (s *Session) onDebounce(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.debounceGen {
		s.mu.Unlock()
		return
	}

	s.debounce = nil
	s.pending = false

	var after effects
	if s.modified && !s.inFlight {
		after = s.flushLocked(true)
	}
	s.mu.Unlock()

	after.run()
}

func (s *Session) startPeriodicLocked() {
	s.periodic = s.clock.AfterFunc(s.saveInterval, s.onPeriodic)
}

func (s *Session) onPeriodic() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.startPeriodicLocked()

	var after effects
	if s.modified && !s.inFlight {
		after = s.flushLocked(true)
	}
	s.mu.Unlock()

	after.run()
}

// Save flushes the draft now and reports the outcome through the notifier
func (s *Session) Save() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	after := s.flushLocked(false)
	s.mu.Unlock()

	after.run()
	return nil
}

func (s *Session) flushLocked(silent bool) effects {
	if s.inFlight {
		return nil
	}

	if s.draft.isEmpty() {
		if silent {
			return nil
		}
		return effects{func() { s.notifier.Error("Add a title or content before saving") }}
	}

	snap := s.draft.snapshot()
	if snap == s.lastSnapshot {
		s.modified = false
		if silent {
			return nil
		}
		return effects{func() { s.notifier.Success("No changes to save") }}
	}

	s.inFlight = true
	s.modified = false

	post := &domain.Post{
		ID:      s.id,
		Title:   s.draft.Title,
		Content: s.draft.Content,
		Tags:    domain.ParseTags(s.draft.Tags),
		Status:  domain.StatusDraft,
	}

	s.saves.Add(1)
	go s.save(post, snap, silent)
	return nil
}

// save runs outside the lock. Its result is dropped when the session closed meanwhile.
func (s *Session) save(post *domain.Post, snap string, silent bool) {
	defer s.saves.Done()

	saved, err := s.service.SaveDraft(context.Background(), post)
	if err == nil && saved == nil {
		err = errors.New("save returned no post")
	}

	s.mu.Lock()
	s.inFlight = false

	if s.closed {
		s.mu.Unlock()
		s.log.Debug().Err(err).Str("postID", post.ID).Msg("Discarding save result of closed session")
		return
	}

	var after effects
	if err != nil {
		s.modified = true
		s.log.Error().Err(err).Str("postID", post.ID).Bool("silent", silent).Msg("Failed to save draft")
		if !silent {
			after = append(after, func() { s.notifier.Error("Failed to save draft") })
		}
	} else {
		if s.id == "" && saved.ID != "" {
			s.id = saved.ID
			path := EditorPath(saved.ID)
			after = append(after, func() { s.navigator.Replace(path) })
		}
		if saved.Status.Valid() {
			s.status = saved.Status
		}
		s.lastSnapshot = snap
		s.lastSaved = s.clock.Now()
		s.log.Debug().Str("postID", s.id).Msg("Draft saved")
		if !silent {
			after = append(after, func() { s.notifier.Success("Draft saved") })
		}
	}
	s.mu.Unlock()

	after.run()
}

// Publish validates the draft and publishes it, ending the session on success.
// It does not wait for an autosave that is already running.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	var verr error
	switch {
	case strings.TrimSpace(s.draft.Title) == "":
		verr = ErrTitleRequired
	case strings.TrimSpace(s.draft.Content) == "":
		verr = ErrContentRequired
	}
	if verr != nil {
		s.mu.Unlock()
		s.notifier.Error(validationMessage(verr))
		return verr
	}

	draft := s.draft
	post := &domain.Post{
		ID:      s.id,
		Title:   draft.Title,
		Content: draft.Content,
		Tags:    domain.ParseTags(draft.Tags),
		Status:  domain.StatusPublished,
	}
	s.mu.Unlock()

	published, err := s.service.Publish(ctx, post)
	if err == nil && published == nil {
		err = errors.New("publish returned no post")
	}
	if err != nil {
		s.log.Error().Err(err).Str("postID", post.ID).Msg("Failed to publish post")
		s.notifier.Error("Failed to publish blog")
		return fmt.Errorf("failed to publish post: %w", err)
	}

	s.mu.Lock()
	s.id = published.ID
	s.status = published.Status
	s.lastSnapshot = draft.snapshot()
	s.modified = s.draft != draft
	s.closeLocked()
	s.mu.Unlock()

	s.notifier.Success("Blog published successfully")
	s.navigator.Navigate(ListPath)
	return nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrTitleRequired):
		return "Please add a title before publishing"
	case errors.Is(err, ErrContentRequired):
		return "Please add content before publishing"
	default:
		return err.Error()
	}
}

// RequestDelete is the first of the two delete steps. Only persisted posts can be deleted.
func (s *Session) RequestDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.id == "" {
		return ErrNotPersisted
	}

	s.deleteRequested = true
	return nil
}

// CancelDelete withdraws a pending delete request
func (s *Session) CancelDelete() {
	s.mu.Lock()
	s.deleteRequested = false
	s.mu.Unlock()
}

// ConfirmDelete deletes the post after RequestDelete and ends the session.
// A failed delete clears the request.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.deleteRequested {
		s.mu.Unlock()
		return ErrDeleteNotRequested
	}
	id := s.id
	s.mu.Unlock()

	if err := s.service.DeletePost(ctx, id); err != nil {
		s.mu.Lock()
		s.deleteRequested = false
		s.mu.Unlock()

		s.log.Error().Err(err).Str("postID", id).Msg("Failed to delete post")
		s.notifier.Error("Failed to delete blog")
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}

	s.mu.Lock()
	s.modified = false
	s.closeLocked()
	s.mu.Unlock()

	s.notifier.Success("Blog deleted successfully")
	s.navigator.Navigate(ListPath)
	return nil
}

// NeedsLeaveWarning reports whether leaving now could lose edits.
// Leaving never flushes the draft.
func (s *Session) NeedsLeaveWarning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified
}

// Close stops both timers. A save already running completes but its result is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}

	s.closed = true
	s.pending = false
	s.deleteRequested = false
	s.debounceGen++

	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.periodic != nil {
		s.periodic.Stop()
		s.periodic = nil
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ID:              s.id,
		Draft:           s.draft,
		Status:          s.status,
		Modified:        s.modified,
		Saving:          s.inFlight,
		Pending:         s.pending,
		LastSaved:       s.lastSaved,
		DeleteRequested: s.deleteRequested,
		Closed:          s.closed,
	}
}

// Wait blocks until no save is running
func (s *Session) Wait() {
	s.saves.Wait()
}
