// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/prompt"
)

// State is the client-observable phase of a customization session.
type State string

const (
	StateLoading        State = "loading"
	StateNeedsProfile   State = "needs_profile"
	StateReadyNoProfile State = "ready_no_profile"
	StateAutoApplying   State = "auto_applying"
	StateInteractive    State = "interactive"
	StateSaving         State = "saving"
)

// DefaultAutosaveInterval is the debounce window between the last edit and
// the automatic persistence call.
const DefaultAutosaveInterval = 5 * time.Second

// bootstrapInstruction is the fixed prompt used for the one-time profile
// auto-apply when a session opens on a fresh template.
const bootstrapInstruction = "Apply my profile information to this template."

// failureMessage is the user-visible system-chat entry for engine failures.
const failureMessage = "Failed to generate. Please try again."

// ErrTurnInFlight is returned when a turn arrives while another is still
// being processed. Sessions handle one turn at a time.
var ErrTurnInFlight = errors.New("editor: a turn is already in progress")

// ErrNotInteractive is returned for turns sent before the session has
// settled into the interactive state. The caller sent the request too
// early (or after a close); it is not a generation failure.
var ErrNotInteractive = errors.New("editor: session is not interactive")

// ErrEmptyTurn is returned when a turn carries no prompt, no image, and no
// field values.
var ErrEmptyTurn = errors.New("editor: empty turn, provide a prompt, image, or field values")

// Persister stores a customization snapshot. The store layer implements it;
// session tests substitute fakes.
type Persister interface {
	Save(ctx context.Context, c *models.Customization) error
}

// SessionConfig tunes a session. The zero value uses production defaults.
type SessionConfig struct {
	AutosaveInterval time.Duration
	Now              func() time.Time
}

// Turn is one user-submitted instruction: free text, an optional image
// attachment, and optional field value changes.
type Turn struct {
	Prompt     string
	Image      *ai.ImageRef
	FieldDelta models.ValueMap
}

// TurnResult reports what a turn did to the working document.
type TurnResult struct {
	HTML      string       `json:"html"`
	Changed   bool         `json:"changed"`
	NoChanges bool         `json:"no_changes"`
	Applied   []AppliedOp  `json:"applied,omitempty"`
	Engine    string       `json:"engine"` // "tool_call" or "merge"
	State     State        `json:"state"`
}

// Session is the customization lifecycle controller. It owns the working
// HTML document and the append-only prompt history and change log, routes
// each turn to the cheaper engine that can satisfy it, and debounces
// persistence. The working document is always a complete renderable HTML
// document: engines that fail leave it unchanged.
type Session struct {
	mu    sync.Mutex
	state State
	busy  bool
	dirty bool
	timer *time.Timer

	cust          *models.Customization
	tpl           *models.Template
	profileFields []models.ProfileField
	profileValues models.ValueMap

	merger  *Merger
	toolEd  *ToolEditor
	persist Persister
	cfg     SessionConfig
}

// NewSession opens a customization for editing. The working document is
// seeded from the persisted render when one exists, otherwise from the raw
// template HTML. The initial state decides whether the one-time profile
// auto-apply will run on Bootstrap.
func NewSession(cust *models.Customization, tpl *models.Template, profileFields []models.ProfileField, profileValues models.ValueMap, merger *Merger, toolEd *ToolEditor, persist Persister, cfg SessionConfig) *Session {
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = DefaultAutosaveInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	hadRender := cust.RenderedHTML != ""
	if !hadRender {
		cust.RenderedHTML = tpl.HTMLContent
	}

	s := &Session{
		state:         StateLoading,
		cust:          cust,
		tpl:           tpl,
		profileFields: profileFields,
		profileValues: profileValues,
		merger:        merger,
		toolEd:        toolEd,
		persist:       persist,
		cfg:           cfg,
	}

	switch {
	case hadRender:
		s.state = StateInteractive
	case s.profileComplete():
		s.state = StateAutoApplying
	case len(profileFields) > 0 && profileValues.Empty():
		s.state = StateNeedsProfile
	default:
		s.state = StateReadyNoProfile
	}

	return s
}

// profileComplete reports whether every required profile field carries a
// value and at least one value exists at all.
func (s *Session) profileComplete() bool {
	if s.profileValues.Empty() {
		return false
	}
	for _, f := range s.profileFields {
		if f.IsRequired && !s.profileValues.Has(f.FieldKey) {
			return false
		}
	}
	return true
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WorkingHTML returns the current working document.
func (s *Session) WorkingHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cust.RenderedHTML
}

// Rename changes the customization name. The change rides the next save.
func (s *Session) Rename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.cust.Name {
		return
	}
	s.cust.Name = name
	s.markDirtyLocked()
}

// Customization returns a snapshot of the persisted shape: working HTML,
// field values, prompt history, and change log.
func (s *Session) Customization() *models.Customization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Bootstrap runs the one-time profile auto-apply when the session opened in
// AutoApplying, then lands in Interactive. In all other opening states it
// just transitions to Interactive. On auto-apply success the result is
// persisted immediately (auto-save-and-redirect), skipping manual save.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAutoApplying {
		s.state = StateInteractive
		s.mu.Unlock()
		return nil
	}
	html := s.cust.RenderedHTML
	bindings := prompt.BindProfileFields(s.profileFields, s.profileValues)
	system := s.tpl.SystemPrompt
	s.mu.Unlock()

	out, err := s.merger.Apply(ctx, MergeInput{
		HTML:     html,
		Bindings: bindings,
		Prompt:   bootstrapInstruction,
		System:   system,
	})

	s.mu.Lock()
	s.state = StateInteractive
	if err != nil {
		s.appendSystemLocked(failureMessage)
		s.mu.Unlock()
		return fmt.Errorf("editor: profile auto-apply: %w", err)
	}

	s.cust.RenderedHTML = out
	s.appendUserLocked(bootstrapInstruction, "")
	s.appendSystemLocked("Applied your profile information to the template.")
	s.appendChangeLocked("Regenerated with field values")
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persist.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("editor: persist after auto-apply: %w", err)
	}
	return nil
}

// HandleTurn processes one user instruction. Routing rule: free text with
// no image and no field changes goes to the tool-call engine (cheap, no
// document drift); everything else regenerates through the merge engine.
// Exactly one turn may be in flight per session.
func (s *Session) HandleTurn(ctx context.Context, turn Turn) (*TurnResult, error) {
	s.mu.Lock()
	if s.state != StateInteractive {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w (state %s)", ErrNotInteractive, state)
	}
	if s.busy {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	if turn.Prompt == "" && turn.Image == nil && turn.FieldDelta.Empty() {
		s.mu.Unlock()
		return nil, ErrEmptyTurn
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if turn.Prompt != "" && turn.Image == nil && turn.FieldDelta.Empty() {
		return s.toolTurn(ctx, turn)
	}
	return s.mergeTurn(ctx, turn)
}

// toolTurn is the fast path: discrete tool-mediated edits.
func (s *Session) toolTurn(ctx context.Context, turn Turn) (*TurnResult, error) {
	s.mu.Lock()
	html := s.cust.RenderedHTML
	s.mu.Unlock()

	res, err := s.toolEd.Edit(ctx, html, turn.Prompt)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := res.HTML != html
	s.appendUserLocked(turn.Prompt, "")
	if res.NoChanges {
		s.appendSystemLocked("No changes detected.")
	} else {
		s.appendSystemLocked(fmt.Sprintf("Applied %d edit(s).", len(res.Applied)))
	}
	if changed {
		s.cust.RenderedHTML = res.HTML
		s.appendChangeLocked(truncateOp(turn.Prompt))
		s.markDirtyLocked()
	}

	return &TurnResult{
		HTML:      s.cust.RenderedHTML,
		Changed:   changed,
		NoChanges: res.NoChanges,
		Applied:   res.Applied,
		Engine:    "tool_call",
		State:     s.state,
	}, nil
}

// mergeTurn is the regeneration path, used whenever an image or field
// values are part of the turn.
func (s *Session) mergeTurn(ctx context.Context, turn Turn) (*TurnResult, error) {
	s.mu.Lock()
	html := s.cust.RenderedHTML
	var bindings []prompt.Binding
	var merged models.ValueMap
	fieldTurn := !turn.FieldDelta.Empty()
	if fieldTurn {
		// Merge into a copy; the session's values change only once the
		// engine has actually applied them, so a failed turn cannot leave
		// values on the record that no regeneration ever used.
		merged = s.cust.FieldValues.Merge(turn.FieldDelta)
		bindings = prompt.BindTemplateFields(s.tpl.Fields, merged)
	}
	system := s.tpl.SystemPrompt
	s.mu.Unlock()

	out, err := s.merger.Apply(ctx, MergeInput{
		HTML:     html,
		Bindings: bindings,
		Prompt:   turn.Prompt,
		Image:    turn.Image,
		System:   system,
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fieldTurn {
		s.cust.FieldValues = merged
		s.markDirtyLocked()
	}
	changed := out != html
	attached := ""
	if turn.Image != nil {
		attached = turn.Image.DataURL()
	}
	s.appendUserLocked(turn.Prompt, attached)
	if changed {
		s.cust.RenderedHTML = out
		s.appendSystemLocked("Updated the document.")
	} else {
		s.appendSystemLocked("No usable change was produced. The document is unchanged.")
	}
	if changed {
		if fieldTurn {
			s.appendChangeLocked("Regenerated with field values")
		} else {
			s.appendChangeLocked(truncateOp(turn.Prompt))
		}
		s.markDirtyLocked()
	}

	return &TurnResult{
		HTML:    s.cust.RenderedHTML,
		Changed: changed,
		Engine:  "merge",
		State:   s.state,
	}, nil
}

// recordFailure appends the user-visible failure entry. The working
// document is deliberately untouched — the user never loses their last
// good render.
func (s *Session) recordFailure(err error) {
	slog.Error("customization turn failed", "customization", s.cust.ID, "error", err)
	s.mu.Lock()
	s.appendSystemLocked(failureMessage)
	s.mu.Unlock()
}

// Save persists the current snapshot immediately. Errors surface to the
// caller (unlike autosave, which only logs).
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateSaving
	s.stopTimerLocked()
	s.dirty = false
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	err := s.persist.Save(ctx, snapshot)

	s.mu.Lock()
	s.state = StateInteractive
	if err != nil {
		s.dirty = true
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	return nil
}

// Close flushes a pending autosave synchronously and stops the timer.
// Call on session teardown so the last edit is never lost.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	s.stopTimerLocked()
	wasD := s.dirty
	s.dirty = false
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if wasD {
		if err := s.persist.Save(ctx, snapshot); err != nil {
			slog.Warn("flush on close failed", "customization", snapshot.ID, "error", err)
		}
	}
}

// markDirtyLocked arms the autosave debounce: every edit cancels and
// reschedules the timer, so persistence fires once, after the last edit.
func (s *Session) markDirtyLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.AutosaveInterval, s.autosave)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// autosave persists in the background. Failures are silent (logged only);
// the next edit re-arms the timer anyway.
func (s *Session) autosave() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persist.Save(context.Background(), snapshot); err != nil {
		slog.Warn("autosave failed", "customization", snapshot.ID, "error", err)
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// snapshotLocked copies the persisted shape so the store never races the
// session's own mutations.
func (s *Session) snapshotLocked() *models.Customization {
	out := *s.cust
	out.FieldValues = make(models.ValueMap, len(s.cust.FieldValues))
	for k, v := range s.cust.FieldValues {
		out.FieldValues[k] = v
	}
	out.PromptHistory = append([]models.PromptEntry(nil), s.cust.PromptHistory...)
	out.ChangeLog = append([]models.ChangeEntry(nil), s.cust.ChangeLog...)
	return &out
}

func (s *Session) appendUserLocked(text, attachedImage string) {
	s.cust.PromptHistory = append(s.cust.PromptHistory, models.PromptEntry{
		ID:            uuid.New(),
		Role:          models.PromptRoleUser,
		Text:          text,
		AttachedImage: attachedImage,
		Timestamp:     s.cfg.Now(),
	})
}

func (s *Session) appendSystemLocked(text string) {
	s.cust.PromptHistory = append(s.cust.PromptHistory, models.PromptEntry{
		ID:        uuid.New(),
		Role:      models.PromptRoleSystem,
		Text:      text,
		Timestamp: s.cfg.Now(),
	})
}

func (s *Session) appendChangeLocked(description string) {
	s.cust.ChangeLog = append(s.cust.ChangeLog, models.ChangeEntry{
		ID:          uuid.New(),
		Description: description,
		Timestamp:   s.cfg.Now(),
	})
}
