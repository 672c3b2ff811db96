// Package services implements the application services that sit between the
// UI-facing callers and the external link store.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/usecases"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/infrastructure/metrics"
)

const snapshotVersion = "1.0"

// LinkStateService owns the mutable client-side view of links for exactly one
// "current" exercise. Mutations are applied optimistically, pushed to the
// external store, and reconciled by reloading the authoritative snapshot,
// both to confirm success and to undo the optimistic change after failure.
//
// Each service instance is one session; construct one per editing context so
// multiple exercises can be edited without cross-contamination. Local state
// is guarded by a mutex, but the session is still meant for a single logical
// caller: concurrent mutations of the same exercise race at the store level.
type LinkStateService struct {
	store  usecases.LinkStore
	saver  snapshot.Saver
	logger *slog.Logger

	mu           sync.Mutex
	exerciseID   string
	exerciseName string
	links        []*link.ExerciseLink
	totalCount   int
	suggested    []*link.ExerciseLink

	loadingLinks       bool
	loadingSuggestions bool
	processing         bool
	saving             bool
	deleting           bool

	errorMessage   string
	successMessage string

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// Option configures a LinkStateService.
type Option func(*LinkStateService)

// WithSnapshotSaver enables session snapshot persistence.
func WithSnapshotSaver(saver snapshot.Saver) Option {
	return func(s *LinkStateService) { s.saver = saver }
}

// WithLogger sets the structured logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LinkStateService) { s.logger = logger }
}

// NewLinkStateService creates a session state manager backed by the given
// link store.
func NewLinkStateService(store usecases.LinkStore, opts ...Option) *LinkStateService {
	s := &LinkStateService{
		store:  store,
		logger: slog.Default(),
		subs:   make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a change observer. The returned channel receives a
// coalesced signal whenever observable state changes; the cancel function
// removes the subscription. Sends never block: a slow observer sees at least
// one pending signal, not every intermediate state.
func (s *LinkStateService) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *LinkStateService) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Initialize resets all session state to the given exercise and loads its
// links. It must be called before any mutation.
func (s *LinkStateService) Initialize(ctx context.Context, exerciseID, exerciseName string) error {
	s.mu.Lock()
	s.exerciseID = exerciseID
	s.exerciseName = exerciseName
	s.links = nil
	s.totalCount = 0
	s.suggested = nil
	s.errorMessage = ""
	s.successMessage = ""
	s.mu.Unlock()
	s.notify()

	return s.loadLinks(ctx, false)
}

// ClearContext drops the current exercise and all in-memory edges.
func (s *LinkStateService) ClearContext() {
	s.mu.Lock()
	s.exerciseID = ""
	s.exerciseName = ""
	s.links = nil
	s.totalCount = 0
	s.suggested = nil
	s.errorMessage = ""
	s.successMessage = ""
	s.mu.Unlock()
	s.notify()
}

// LoadLinks fetches the current snapshot from the store and replaces the
// in-memory set wholesale.
func (s *LinkStateService) LoadLinks(ctx context.Context) error {
	return s.loadLinks(ctx, false)
}

// loadLinks reloads the authoritative link set. When preserveError is true,
// an error message recorded before the reload survives it. That mode is used
// exclusively by the rollback path so that the reload undoing a failed
// optimistic mutation does not clear the error the user needs to see.
func (s *LinkStateService) loadLinks(ctx context.Context, preserveError bool) error {
	s.mu.Lock()
	if s.exerciseID == "" {
		s.errorMessage = "No exercise selected"
		s.mu.Unlock()
		s.notify()
		return dto.ErrNoExerciseSelected
	}
	existingError := ""
	if preserveError {
		existingError = s.errorMessage
	} else {
		s.errorMessage = ""
	}
	s.loadingLinks = true
	exerciseID := s.exerciseID
	s.mu.Unlock()
	s.notify()

	resp, err := s.store.GetLinks(ctx, exerciseID, dto.LinkQuery{IncludeDetails: true})

	s.mu.Lock()
	s.loadingLinks = false
	if err != nil {
		if errors.Is(err, link.ErrExerciseNotFound) || dto.StoreErrorKindOf(err) == dto.StoreErrNotFound {
			s.errorMessage = "Exercise not found"
		} else {
			s.errorMessage = FormatLinkError(err)
		}
		s.logger.Error("link reload failed", "exercise_id", exerciseID, "error", err)
	} else {
		s.links = cloneLinks(resp.Links)
		s.totalCount = resp.TotalCount
		if resp.ExerciseName != "" {
			s.exerciseName = resp.ExerciseName
		}
	}
	if preserveError && s.errorMessage == "" && existingError != "" {
		s.errorMessage = existingError
	}
	s.mu.Unlock()
	s.notify()
	metrics.IncReloads()
	return err
}

// LoadSuggestedLinks fetches up to count suggested links. Suggestions are not
// critical: failures are swallowed and leave an empty suggestion list.
func (s *LinkStateService) LoadSuggestedLinks(ctx context.Context, count int) {
	s.mu.Lock()
	if s.exerciseID == "" {
		s.mu.Unlock()
		return
	}
	s.loadingSuggestions = true
	exerciseID := s.exerciseID
	s.mu.Unlock()
	s.notify()

	suggested, err := s.store.GetSuggestedLinks(ctx, exerciseID, count)

	s.mu.Lock()
	s.loadingSuggestions = false
	if err != nil {
		s.suggested = nil
		s.logger.Debug("suggestion load failed", "exercise_id", exerciseID, "error", err)
	} else {
		s.suggested = cloneLinks(suggested)
	}
	s.mu.Unlock()
	s.notify()
}

// CreateLink optimistically appends a placeholder edge, issues the create
// call, and reconciles by reloading. The type-specific cap is checked locally
// first; hitting it issues no store call.
func (s *LinkStateService) CreateLink(ctx context.Context, req dto.CreateExerciseLinkRequest) error {
	linkType, err := link.ParseType(req.LinkType)
	if err != nil {
		s.setError(fmt.Sprintf("Unknown link type %q", req.LinkType))
		return err
	}

	s.mu.Lock()
	if s.exerciseID == "" {
		s.errorMessage = "No exercise selected"
		s.mu.Unlock()
		s.notify()
		return dto.ErrNoExerciseSelected
	}
	if linkType.IsCapped() && s.countLocked(linkType) >= link.MaxLinksPerType {
		s.errorMessage = fmt.Sprintf("Maximum number of %s links reached", strings.ToLower(linkType.String()))
		s.mu.Unlock()
		s.notify()
		metrics.ValidationFailure(dto.CodeMaxLinksReached)
		return link.ErrMaxLinksReached
	}

	s.processing = true
	s.clearMessagesLocked()
	exerciseID := s.exerciseID
	now := time.Now().UTC()
	optimistic := &link.ExerciseLink{
		ID:               "pending-" + uuid.NewString(),
		SourceExerciseID: exerciseID,
		TargetExerciseID: req.TargetExerciseID,
		Type:             linkType,
		DisplayOrder:     req.DisplayOrder,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.links = append(s.links, optimistic)
	s.totalCount++
	s.mu.Unlock()
	s.notify()
	metrics.IncOptimistic()

	defer s.clearProcessing()

	if _, err := s.store.CreateLink(ctx, exerciseID, req); err != nil {
		metrics.StoreFailure("create")
		metrics.IncRollbacks()
		s.setErrorQuiet(FormatLinkError(err))
		s.logger.Error("link create failed", "exercise_id", exerciseID,
			"target_id", req.TargetExerciseID, "link_type", req.LinkType, "error", err)
		_ = s.loadLinks(ctx, true)
		return err
	}

	metrics.StoreMutation("create")
	if err := s.loadLinks(ctx, false); err != nil {
		return err
	}

	s.setSuccess(fmt.Sprintf("%s link created successfully", linkType))
	return nil
}

// UpdateLink mutates the local edge in place, issues the update call, and
// reconciles by reloading.
func (s *LinkStateService) UpdateLink(ctx context.Context, linkID string, req dto.UpdateExerciseLinkRequest) error {
	s.mu.Lock()
	if s.exerciseID == "" {
		s.errorMessage = "No exercise selected"
		s.mu.Unlock()
		s.notify()
		return dto.ErrNoExerciseSelected
	}
	s.processing = true
	s.clearMessagesLocked()
	exerciseID := s.exerciseID
	for _, l := range s.links {
		if l.ID == linkID {
			l.DisplayOrder = req.DisplayOrder
			l.IsActive = true // always active, no reachable soft-delete
			l.UpdatedAt = time.Now().UTC()
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	metrics.IncOptimistic()

	defer s.clearProcessing()

	if _, err := s.store.UpdateLink(ctx, exerciseID, linkID, req); err != nil {
		metrics.StoreFailure("update")
		metrics.IncRollbacks()
		s.setErrorQuiet(FormatLinkError(err))
		s.logger.Error("link update failed", "exercise_id", exerciseID, "link_id", linkID, "error", err)
		_ = s.loadLinks(ctx, true)
		return err
	}

	metrics.StoreMutation("update")
	if err := s.loadLinks(ctx, false); err != nil {
		return err
	}

	s.setSuccess("Link updated successfully")
	return nil
}

// DeleteLink removes the edge optimistically, issues the delete call, and
// reconciles by reloading.
func (s *LinkStateService) DeleteLink(ctx context.Context, linkID string) error {
	s.mu.Lock()
	if s.exerciseID == "" {
		s.errorMessage = "No exercise selected"
		s.mu.Unlock()
		s.notify()
		return dto.ErrNoExerciseSelected
	}
	s.processing = true
	s.deleting = true
	s.clearMessagesLocked()
	exerciseID := s.exerciseID

	linkTypeText := "Link"
	for i, l := range s.links {
		if l.ID == linkID {
			linkTypeText = l.Type.String()
			s.links = append(s.links[:i], s.links[i+1:]...)
			s.totalCount--
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	metrics.IncOptimistic()

	defer func() {
		s.mu.Lock()
		s.processing = false
		s.deleting = false
		s.mu.Unlock()
		s.notify()
	}()

	if err := s.store.DeleteLink(ctx, exerciseID, linkID); err != nil {
		metrics.StoreFailure("delete")
		metrics.IncRollbacks()
		s.setErrorQuiet(FormatLinkError(err))
		s.logger.Error("link delete failed", "exercise_id", exerciseID, "link_id", linkID, "error", err)
		_ = s.loadLinks(ctx, true)
		return err
	}

	metrics.StoreMutation("delete")
	if err := s.loadLinks(ctx, false); err != nil {
		return err
	}

	s.setSuccess(fmt.Sprintf("%s link removed successfully", linkTypeText))
	return nil
}

// ReorderLinks applies a new display order to every link of the given type
// whose order actually changes, issues the queued update calls concurrently,
// and reloads once after all of them settle. A partial failure is treated as
// a total failure: one rollback reload, one generic error message.
func (s *LinkStateService) ReorderLinks(ctx context.Context, linkType link.Type, orders map[string]int) error {
	s.mu.Lock()
	if s.exerciseID == "" || s.links == nil {
		s.mu.Unlock()
		return nil
	}
	s.processing = true
	s.clearMessagesLocked()
	exerciseID := s.exerciseID

	var queued []dto.LinkUpdate
	for _, l := range s.links {
		newOrder, ok := orders[l.ID]
		if !ok || l.Type != linkType || l.DisplayOrder == newOrder {
			continue
		}
		l.DisplayOrder = newOrder // optimistic
		queued = append(queued, dto.LinkUpdate{
			LinkID:  l.ID,
			Request: dto.UpdateExerciseLinkRequest{DisplayOrder: newOrder, IsActive: true},
		})
	}
	s.mu.Unlock()

	defer s.clearProcessing()

	if len(queued) == 0 {
		return nil
	}
	s.notify()
	metrics.IncOptimistic()

	if err := s.updateAll(ctx, exerciseID, queued); err != nil {
		metrics.StoreFailure("reorder")
		metrics.IncRollbacks()
		s.setErrorQuiet("Failed to reorder links: " + FormatLinkError(err))
		s.logger.Error("link reorder failed", "exercise_id", exerciseID,
			"link_type", linkType.String(), "updates", len(queued), "error", err)
		_ = s.loadLinks(ctx, true)
		return err
	}

	metrics.StoreMutation("reorder")
	if err := s.loadLinks(ctx, false); err != nil {
		return err
	}

	s.setSuccess(fmt.Sprintf("%s links reordered successfully", linkType))
	return nil
}

// UpdateMultipleLinks issues all updates concurrently, awaits all of them,
// then reloads once. All-or-nothing: any failure rolls the whole batch back
// to the store's truth.
func (s *LinkStateService) UpdateMultipleLinks(ctx context.Context, updates []dto.LinkUpdate) error {
	if len(updates) == 0 {
		return dto.ErrEmptyBatch
	}

	s.mu.Lock()
	if s.exerciseID == "" {
		s.errorMessage = "No exercise selected"
		s.mu.Unlock()
		s.notify()
		return dto.ErrNoExerciseSelected
	}
	s.processing = true
	s.saving = true
	s.clearMessagesLocked()
	exerciseID := s.exerciseID
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		s.processing = false
		s.saving = false
		s.mu.Unlock()
		s.notify()
	}()

	if err := s.updateAll(ctx, exerciseID, updates); err != nil {
		metrics.StoreFailure("bulk_update")
		s.setErrorQuiet(FormatLinkError(err))
		s.logger.Error("bulk link update failed", "exercise_id", exerciseID,
			"updates", len(updates), "error", err)
		_ = s.loadLinks(ctx, true)
		return err
	}

	metrics.StoreMutation("bulk_update")
	if err := s.loadLinks(ctx, false); err != nil {
		return err
	}

	s.setSuccess("Links updated successfully")
	return nil
}

// updateAll issues the update calls concurrently with no ordering guarantee
// among them and waits for all to settle before returning.
func (s *LinkStateService) updateAll(ctx context.Context, exerciseID string, updates []dto.LinkUpdate) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(updates))

	for _, u := range updates {
		wg.Add(1)
		go func(u dto.LinkUpdate) {
			defer wg.Done()
			if _, err := s.store.UpdateLink(ctx, exerciseID, u.LinkID, u.Request); err != nil {
				errCh <- err
			}
		}(u)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SaveSnapshot captures the current session view through the configured
// snapshot saver and returns the snapshot ID.
func (s *LinkStateService) SaveSnapshot(ctx context.Context) (string, error) {
	if s.saver == nil {
		return "", snapshot.ErrSaveFailed
	}

	s.mu.Lock()
	if s.exerciseID == "" {
		s.mu.Unlock()
		return "", dto.ErrNoExerciseSelected
	}
	snap := &snapshot.Snapshot{
		ID:           uuid.NewString(),
		ExerciseID:   s.exerciseID,
		ExerciseName: s.exerciseName,
		Links:        flattenLinks(s.links),
		Metadata:     snapshot.Metadata{Source: "link-session"},
		TakenAt:      time.Now().UTC(),
		Version:      snapshotVersion,
	}
	s.mu.Unlock()

	if err := s.saver.Save(ctx, snap); err != nil {
		return "", err
	}
	metrics.IncSnapshots()
	return snap.ID, nil
}

// RestoreSnapshot replaces the session view with the most recent snapshot
// for the current exercise. Used for offline recovery; the next reload still
// wins over a restored view.
func (s *LinkStateService) RestoreSnapshot(ctx context.Context) error {
	if s.saver == nil {
		return snapshot.ErrLoadFailed
	}

	s.mu.Lock()
	exerciseID := s.exerciseID
	s.mu.Unlock()
	if exerciseID == "" {
		return dto.ErrNoExerciseSelected
	}

	snap, err := s.saver.LoadLatest(ctx, exerciseID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.exerciseName = snap.ExerciseName
	s.links = make([]*link.ExerciseLink, 0, len(snap.Links))
	for i := range snap.Links {
		s.links = append(s.links, snap.Links[i].Clone())
	}
	s.totalCount = len(s.links)
	s.mu.Unlock()
	s.notify()
	return nil
}

// --- observable state ---

// CurrentExerciseID returns the session's exercise identity.
func (s *LinkStateService) CurrentExerciseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exerciseID
}

// CurrentExerciseName returns the session's exercise display name.
func (s *LinkStateService) CurrentExerciseName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exerciseName
}

// WarmupLinks returns the warmup edges ordered by display order.
func (s *LinkStateService) WarmupLinks() []*link.ExerciseLink {
	return s.sequencedLinks(link.TypeWarmup)
}

// CooldownLinks returns the cooldown edges ordered by display order.
func (s *LinkStateService) CooldownLinks() []*link.ExerciseLink {
	return s.sequencedLinks(link.TypeCooldown)
}

// AlternativeLinks returns the alternative edges. They are unordered; the
// slice preserves store order.
func (s *LinkStateService) AlternativeLinks() []*link.ExerciseLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*link.ExerciseLink
	for _, l := range s.links {
		if l.Type == link.TypeAlternative {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *LinkStateService) sequencedLinks(t link.Type) []*link.ExerciseLink {
	s.mu.Lock()
	var out []*link.ExerciseLink
	for _, l := range s.links {
		if l.Type == t {
			out = append(out, l.Clone())
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// SuggestedLinks returns the current suggestion list.
func (s *LinkStateService) SuggestedLinks() []*link.ExerciseLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLinks(s.suggested)
}

// WarmupLinkCount returns the number of warmup edges in the session view.
func (s *LinkStateService) WarmupLinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(link.TypeWarmup)
}

// CooldownLinkCount returns the number of cooldown edges in the session view.
func (s *LinkStateService) CooldownLinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(link.TypeCooldown)
}

// AlternativeLinkCount returns the number of alternative edges.
func (s *LinkStateService) AlternativeLinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(link.TypeAlternative)
}

// TotalCount returns the store-reported total, adjusted by optimistic edits.
func (s *LinkStateService) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCount
}

// HasMaxWarmupLinks reports whether the warmup cap is reached.
func (s *LinkStateService) HasMaxWarmupLinks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(link.TypeWarmup) >= link.MaxLinksPerType
}

// HasMaxCooldownLinks reports whether the cooldown cap is reached.
func (s *LinkStateService) HasMaxCooldownLinks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(link.TypeCooldown) >= link.MaxLinksPerType
}

// IsLoading reports whether any load is in flight.
func (s *LinkStateService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingLinks || s.loadingSuggestions
}

// IsProcessing reports whether a mutation is in flight. The flag is cleared
// on every exit path so the UI can disable controls deterministically.
func (s *LinkStateService) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// IsSaving reports whether a bulk save is in flight.
func (s *LinkStateService) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// IsDeleting reports whether a delete is in flight.
func (s *LinkStateService) IsDeleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting
}

// ErrorMessage returns the current user-facing error, if any.
func (s *LinkStateService) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorMessage
}

// SuccessMessage returns the current user-facing success note, if any.
func (s *LinkStateService) SuccessMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successMessage
}

// ClearError clears the error message.
func (s *LinkStateService) ClearError() {
	s.mu.Lock()
	s.errorMessage = ""
	s.mu.Unlock()
	s.notify()
}

// ClearSuccess clears the success message.
func (s *LinkStateService) ClearSuccess() {
	s.mu.Lock()
	s.successMessage = ""
	s.mu.Unlock()
	s.notify()
}

// ClearMessages clears both feedback messages.
func (s *LinkStateService) ClearMessages() {
	s.mu.Lock()
	s.clearMessagesLocked()
	s.mu.Unlock()
	s.notify()
}

// SetError records an error message supplied by the caller (e.g. a local
// validation failure surfaced by the UI).
func (s *LinkStateService) SetError(message string) {
	s.mu.Lock()
	s.errorMessage = message
	s.successMessage = ""
	s.mu.Unlock()
	s.notify()
}

// --- internal helpers ---

func (s *LinkStateService) countLocked(t link.Type) int {
	n := 0
	for _, l := range s.links {
		if l.Type == t && l.IsActive {
			n++
		}
	}
	return n
}

func (s *LinkStateService) clearMessagesLocked() {
	s.errorMessage = ""
	s.successMessage = ""
}

func (s *LinkStateService) clearProcessing() {
	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()
	s.notify()
}

func (s *LinkStateService) setError(message string) {
	s.mu.Lock()
	s.errorMessage = message
	s.mu.Unlock()
	s.notify()
}

// setErrorQuiet records an error without notifying; the rollback reload that
// always follows carries the notification.
func (s *LinkStateService) setErrorQuiet(message string) {
	s.mu.Lock()
	s.errorMessage = message
	s.mu.Unlock()
}

func (s *LinkStateService) setSuccess(message string) {
	s.mu.Lock()
	s.successMessage = message
	s.mu.Unlock()
	s.notify()
}

func cloneLinks(in []*link.ExerciseLink) []*link.ExerciseLink {
	if in == nil {
		return nil
	}
	out := make([]*link.ExerciseLink, 0, len(in))
	for _, l := range in {
		out = append(out, l.Clone())
	}
	return out
}

func flattenLinks(in []*link.ExerciseLink) []link.ExerciseLink {
	out := make([]link.ExerciseLink, 0, len(in))
	for _, l := range in {
		if l != nil {
			out = append(out, *l)
		}
	}
	return out
}
