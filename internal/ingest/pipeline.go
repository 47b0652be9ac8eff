package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/events"
	"github.com/fpang/selection-upload/internal/filehandler"
	"github.com/fpang/selection-upload/internal/jobs"
	"github.com/fpang/selection-upload/internal/objectstore"
	"github.com/fpang/selection-upload/internal/store"
)

// State is a coordinator state. States only move forward.
type State string

const (
	StateInit              State = "Init"
	StateSelectionCreated  State = "SelectionCreated"
	StateMetadataExtracted State = "MetadataExtracted"
	StateUploaded          State = "Uploaded"
	StateURLsGenerated     State = "UrlsGenerated"
	StateItemsWritten      State = "ItemsWritten"
	StateEventUpdated      State = "EventUpdated"
	StateDone              State = "Done"

	StateNoImagesFound State = "NoImagesFound"
	StateFailed        State = "Failed"
)

// Options is the validated configuration of one run.
type Options struct {
	Directory         string
	Username          string
	EventID           string
	EventTitle        string
	MaxNumberOfPhotos int

	// Concurrency caps per-item work in each stage; <= 0 is unbounded.
	Concurrency int
	URLRetry    RetryPolicy

	// DryRun stops after extraction without any external call.
	DryRun bool
}

// Deps are the collaborators a run talks to. They are built once and shared
// by every item.
type Deps struct {
	Objects  objectstore.Store
	Records  store.SelectionStore
	Notifier events.Notifier

	Now   func() time.Time
	NewID func() string
}

// Pipeline drives one ingestion run.
type Pipeline struct {
	opts  Options
	deps  Deps
	state State
}

// New returns a pipeline in the Init state. Missing Now, NewID and Notifier
// fall back to the wall clock, random UUIDs and no notifications.
func New(opts Options, deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = jobs.NewSelectionID
	}
	if deps.Notifier == nil {
		deps.Notifier = events.Nop{}
	}
	return &Pipeline{opts: opts, deps: deps, state: StateInit}
}

// State returns the state reached so far.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) advance(r *Report, s State) {
	log.Debug().Str("from", string(p.state)).Str("to", string(s)).Msg("Pipeline state change")
	p.state = s
	r.State = s
}

func (p *Pipeline) fail(r *Report, err error) (*Report, error) {
	p.advance(r, StateFailed)
	r.Error = err.Error()
	p.finish(r)
	log.Error().Err(err).Str("selectionId", r.SelectionID).Msg("Selection run failed")
	return r, err
}

func (p *Pipeline) finish(r *Report) {
	r.DurationMs = p.deps.Now().Sub(r.StartedAt).Milliseconds()
}

// Run executes the pipeline. The report is always returned; err is one of
// *ConfigurationError, *SelectionCreationError or *EventUpdateError.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	o := p.opts
	r := &Report{
		State:     p.state,
		Username:  o.Username,
		EventID:   o.EventID,
		Directory: o.Directory,
		DryRun:    o.DryRun,
		Failures:  []ItemFailure{},
		StartedAt: p.deps.Now(),
	}

	dir, err := filehandler.ValidateDirectory(o.Directory)
	if err != nil {
		return p.fail(r, &ConfigurationError{Field: "directory", Err: err})
	}
	r.Directory = dir

	if o.DryRun {
		return p.dryRun(r, dir)
	}

	r.Storage = p.deps.Objects.Location()
	createdAt := p.deps.Now()
	selection := NewSelection(p.deps.NewID(), o.Username, o.EventID, o.EventTitle, o.MaxNumberOfPhotos, createdAt)
	if err := p.deps.Records.PutSelection(ctx, selection); err != nil {
		return p.fail(r, &SelectionCreationError{SelectionID: selection.SelectionID, Err: err})
	}
	r.SelectionID = selection.SelectionID
	p.advance(r, StateSelectionCreated)
	log.Info().Str("selectionId", selection.SelectionID).Str("eventId", o.EventID).Msg("Selection created")

	images, err := filehandler.ScanDirectory(dir)
	if err != nil {
		return p.fail(r, &ConfigurationError{Field: "directory", Err: err})
	}
	p.advance(r, StateMetadataExtracted)
	r.ImagesFound = len(images)
	r.Files = fileNames(images)
	if len(images) == 0 {
		p.advance(r, StateNoImagesFound)
		p.finish(r)
		log.Warn().Str("directory", dir).Msg("No eligible images found")
		return r, nil
	}
	r.addFailures(DegradedFiles(images))
	images, unnamed := RejectEmptyNames(images)
	r.addFailures(unnamed)
	images, dupes := RejectDuplicateNames(images)
	r.addFailures(dupes)

	uploaded, failures := UploadImages(ctx, p.deps.Objects, images, o.Username, o.EventID, o.Concurrency)
	r.addFailures(failures)
	r.Uploaded = len(uploaded)
	p.advance(r, StateUploaded)

	withURLs, failures := GenerateAccessURLs(ctx, p.deps.Objects, uploaded, o.Concurrency, o.URLRetry)
	r.addFailures(failures)
	r.URLsGenerated = len(withURLs) - len(failures)
	p.advance(r, StateURLsGenerated)

	rc := RecordContext{
		SelectionID: selection.SelectionID,
		EventID:     o.EventID,
		Username:    o.Username,
		CreatedAt:   createdAt,
	}
	written, failures := WriteItems(ctx, p.deps.Records, withURLs, rc, o.Concurrency)
	r.addFailures(failures)
	r.ItemsAttempted = len(withURLs)
	r.ItemsWritten = written
	p.advance(r, StateItemsWritten)

	if err := FinalizeSession(ctx, p.deps.Records, o.EventID); err != nil {
		return p.fail(r, err)
	}
	r.EventUpdated = true
	p.advance(r, StateEventUpdated)

	err = announce(ctx, p.deps.Notifier, events.SelectionAvailable{
		SelectionID:  selection.SelectionID,
		EventID:      o.EventID,
		Username:     o.Username,
		ImageCount:   r.Uploaded,
		ItemsWritten: written,
		CompletedAt:  p.deps.Now().UTC(),
	})
	if err != nil {
		r.NotifyError = err.Error()
	}

	p.advance(r, StateDone)
	p.finish(r)
	log.Info().
		Str("selectionId", r.SelectionID).
		Int("found", r.ImagesFound).
		Int("uploaded", r.Uploaded).
		Int("written", r.ItemsWritten).
		Int("failures", len(r.Failures)).
		Msg("Selection run complete")
	return r, nil
}

// dryRun extracts metadata and reports what would be published.
func (p *Pipeline) dryRun(r *Report, dir string) (*Report, error) {
	images, err := filehandler.ScanDirectory(dir)
	if err != nil {
		return p.fail(r, &ConfigurationError{Field: "directory", Err: err})
	}
	p.advance(r, StateMetadataExtracted)
	r.ImagesFound = len(images)
	r.Files = fileNames(images)
	if len(images) == 0 {
		p.advance(r, StateNoImagesFound)
	} else {
		r.addFailures(DegradedFiles(images))
		named, unnamed := RejectEmptyNames(images)
		r.addFailures(unnamed)
		_, dupes := RejectDuplicateNames(named)
		r.addFailures(dupes)
	}
	p.finish(r)
	return r, nil
}

func fileNames(images []filehandler.ImageFile) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.FileName
	}
	return names
}
