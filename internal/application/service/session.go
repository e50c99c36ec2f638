package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/dispatcher"
	"github.com/garyjia/mrsl-intake/internal/application/port"
	appwf "github.com/garyjia/mrsl-intake/internal/application/workflow"
	"github.com/garyjia/mrsl-intake/internal/domain/event"
	domainwf "github.com/garyjia/mrsl-intake/internal/domain/workflow"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/internal/review"
)

// Notification texts shown to the user
const (
	MsgExtracted        = "Data extracted successfully!"
	MsgSubmitted        = "Data submitted successfully."
	MsgSubmissionFailed = "Submission failed. Please try again."
)

// Upload is a file handed over by a front end
type Upload struct {
	Name      string
	MediaType string
	Content   []byte
	Source    intake.Source
}

// Session owns the state of one interactive review session and sequences
// intake, extraction, review and submission.
type Session interface {
	// SelectFile accepts a PDF and runs extraction. Non-PDF files leave the session unchanged.
	SelectFile(ctx context.Context, upload Upload) (Snapshot, error)

	// SelectDocument runs extraction on an already accepted document
	SelectDocument(ctx context.Context, doc *intake.Document) (Snapshot, error)

	// Edit replaces one field of the working record with a new snapshot
	Edit(ctx context.Context, field, value string) (Snapshot, error)

	// EditAll applies a batch of field values
	EditAll(ctx context.Context, values map[string]string) (Snapshot, error)

	// Submit posts the working record to the webhook
	Submit(ctx context.Context) (Snapshot, error)

	// Clear discards the file and record from any state
	Clear(ctx context.Context) Snapshot

	// Snapshot returns the current state
	Snapshot() Snapshot
}

// state is the mutable session value guarded by sessionImpl.mu
type state struct {
	file   *intake.Document
	form   *review.Form
	// generation changes whenever the file is replaced or cleared so late results can be dropped
	generation uint64
	updatedAt  time.Time
}

type sessionImpl struct {
	mu         sync.Mutex
	id         string
	machine    domainwf.StateMachine
	st         state
	intake     *intake.Intake
	extractor  port.Extractor
	submitter  port.Submitter
	dispatcher dispatcher.Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// NewSession creates a session positioned at IDLE
func NewSession(
	in *intake.Intake,
	extractor port.Extractor,
	submitter port.Submitter,
	events dispatcher.Dispatcher,
	logger *zap.Logger,
) Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = dispatcher.NewDispatcher(dispatcher.WithLogger(logger))
	}
	s := &sessionImpl{
		id:         uuid.NewString(),
		intake:     in,
		extractor:  extractor,
		submitter:  submitter,
		dispatcher: events,
		now:        time.Now,
		logger:     logger,
	}
	s.machine = appwf.BuildSessionStateMachine(domainwf.StateIdle, s.logTransition)
	s.st.updatedAt = s.now()
	return s
}

func (s *sessionImpl) logTransition(_ context.Context, t domainwf.Transition) {
	s.logger.Debug("Session transition",
		zap.String("session_id", s.id),
		zap.String("from", t.From.String()),
		zap.String("to", t.To.String()),
		zap.String("trigger", string(t.Trigger)))
}

func (s *sessionImpl) SelectFile(ctx context.Context, upload Upload) (Snapshot, error) {
	doc, err := s.intake.Accept(upload.Name, upload.MediaType, upload.Content, upload.Source)
	if err != nil {
		return s.Snapshot(), err
	}
	return s.SelectDocument(ctx, doc)
}

func (s *sessionImpl) SelectDocument(ctx context.Context, doc *intake.Document) (Snapshot, error) {
	s.mu.Lock()
	if s.machine.State().IsBusy() {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Info("Ignoring file selection while busy",
			zap.String("session_id", s.id),
			zap.String("filename", doc.Name),
			zap.String("state", snap.State.String()))
		return snap, ErrBusy
	}
	if err := s.machine.Fire(ctx, domainwf.TriggerSelectFile); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.st.file = doc
	s.st.form = nil
	s.st.generation++
	gen := s.st.generation
	s.touch()
	s.mu.Unlock()

	s.publish(ctx, event.NewEvent(event.TypeFileAccepted, s.id, "Processing...").
		WithPayload("filename", doc.Name).
		WithPayload("source", string(doc.Source)))

	record, err := s.extractor.Extract(ctx, port.ExtractRequest{
		Filename:  doc.Name,
		MediaType: doc.MediaType,
		Content:   doc.Content,
	})

	s.mu.Lock()
	if s.st.generation != gen {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Info("Discarding extraction result for a cleared session",
			zap.String("session_id", s.id),
			zap.String("filename", doc.Name))
		return snap, ErrDiscarded
	}

	if err != nil {
		_ = s.machine.Fire(ctx, domainwf.TriggerExtractionFailed)
		_ = s.machine.Fire(ctx, domainwf.TriggerReset)
		s.st.file = nil
		s.st.form = nil
		s.touch()
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.publish(ctx, event.NewEvent(event.TypeExtractionFailed, s.id, err.Error()).
			WithPayload("filename", doc.Name))
		return snap, err
	}

	_ = s.machine.Fire(ctx, domainwf.TriggerExtractionSucceeded)
	form := review.NewForm(record)
	s.st.form = &form
	s.touch()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ctx, event.NewEvent(event.TypeExtractionSucceeded, s.id, MsgExtracted).
		WithPayload("filename", doc.Name))
	return snap, nil
}

func (s *sessionImpl) Edit(ctx context.Context, field, value string) (Snapshot, error) {
	return s.EditAll(ctx, map[string]string{field: value})
}

func (s *sessionImpl) EditAll(ctx context.Context, values map[string]string) (Snapshot, error) {
	s.mu.Lock()
	if s.machine.State().IsBusy() {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrBusy
	}
	if s.st.form == nil || !s.machine.CanFire(domainwf.TriggerEdit) {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNoRecord
	}

	next, changed, err := s.st.form.ApplyAll(values)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	if len(changed) == 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	if err := s.machine.Fire(ctx, domainwf.TriggerEdit); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.st.form = &next
	s.touch()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fields := make([]string, len(changed))
	for i, f := range changed {
		fields[i] = f.String()
	}
	s.publish(ctx, event.NewEvent(event.TypeRecordEdited, s.id, "").WithPayload("fields", fields))
	return snap, nil
}

func (s *sessionImpl) Submit(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.machine.State().IsBusy() {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrBusy
	}
	if s.st.form == nil || s.st.file == nil || !s.machine.CanFire(domainwf.TriggerSubmit) {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNoRecord
	}
	if err := s.machine.Fire(ctx, domainwf.TriggerSubmit); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	record := s.st.form.Record()
	filename := s.st.file.Name
	gen := s.st.generation
	s.touch()
	s.mu.Unlock()

	err := s.submitter.Submit(ctx, record, filename)

	s.mu.Lock()
	if s.st.generation != gen {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Info("Discarding submission result for a cleared session", zap.String("session_id", s.id))
		return snap, ErrDiscarded
	}

	if err != nil {
		_ = s.machine.Fire(ctx, domainwf.TriggerSubmissionFailed)
		_ = s.machine.Fire(ctx, domainwf.TriggerRecover)
		s.touch()
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Warn("Submission failed", zap.String("session_id", s.id), zap.Error(err))
		s.publish(ctx, event.NewEvent(event.TypeSubmissionFailed, s.id, MsgSubmissionFailed).
			WithPayload("error", err.Error()))
		return snap, fmt.Errorf("submit %s: %w", filename, err)
	}

	_ = s.machine.Fire(ctx, domainwf.TriggerSubmissionSucceeded)
	s.touch()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ctx, event.NewEvent(event.TypeSubmissionSucceeded, s.id, MsgSubmitted).
		WithPayload("filename", filename))
	return snap, nil
}

func (s *sessionImpl) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	_ = s.machine.Fire(ctx, domainwf.TriggerClear)
	s.st.file = nil
	s.st.form = nil
	s.st.generation++
	s.touch()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ctx, event.NewEvent(event.TypeSessionCleared, s.id, ""))
	return snap
}

func (s *sessionImpl) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *sessionImpl) snapshotLocked() Snapshot {
	current := s.machine.State()
	snap := Snapshot{
		SessionID:    s.id,
		State:        current,
		IsExtracting: current == domainwf.StateExtracting,
		IsSubmitting: current == domainwf.StateSubmitting,
		File:         fileInfo(s.st.file),
		UpdatedAt:    s.st.updatedAt,
	}
	if s.st.form != nil {
		record := s.st.form.Record()
		snap.Record = &record
	}
	return snap
}

func (s *sessionImpl) touch() {
	s.st.updatedAt = s.now()
}

// publish dispatches outside the session lock so handlers may read snapshots
func (s *sessionImpl) publish(ctx context.Context, evt *event.Event) {
	if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		s.logger.Warn("Event dispatch failed",
			zap.String("event_type", evt.Type.String()),
			zap.Error(err))
	}
}
