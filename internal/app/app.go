package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glabrego/memefeed-cli/internal/feed"
	"github.com/glabrego/memefeed-cli/internal/feedapi"
	"github.com/glabrego/memefeed-cli/internal/logging"
	"github.com/glabrego/memefeed-cli/internal/storage"
)

type FeedClient interface {
	Status(ctx context.Context) (feedapi.Status, error)
	Recommend(ctx context.Context) ([]feedapi.Recommendation, error)
	SendFeedback(ctx context.Context, index int, action feedapi.Action) (feedapi.Ack, error)
	ImageURL(index int) string
	FetchImage(ctx context.Context, index int) ([]byte, error)
}

type Journal interface {
	RecordBatch(ctx context.Context, rec storage.BatchRecord) error
	RecordFeedback(ctx context.Context, rec storage.FeedbackRecord) error
	Summary(ctx context.Context, sessionID string) (storage.Summary, error)
}

// Remote adapts the HTTP client to the controller's view of the service.
type Remote struct {
	client FeedClient
}

func NewRemote(client FeedClient) Remote {
	return Remote{client: client}
}

func (r Remote) Status(ctx context.Context) (feed.Status, error) {
	status, err := r.client.Status(ctx)
	if err != nil {
		return feed.Status{}, fmt.Errorf("fetch status from feed service: %w", err)
	}
	return feed.Status{TotalItems: status.PathsLoaded, LikedCount: status.LikedCount}, nil
}

func (r Remote) Recommend(ctx context.Context) ([]feed.Item, error) {
	recs, err := r.client.Recommend(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch recommendations from feed service: %w", err)
	}
	items := make([]feed.Item, len(recs))
	for i, rec := range recs {
		items[i] = feed.Item{
			SourcePath: rec.Path,
			Index:      rec.Index,
			DisplayURL: r.client.ImageURL(rec.Index),
		}
	}
	return items, nil
}

func (r Remote) SendFeedback(ctx context.Context, index int, action feed.Action) error {
	if _, err := r.client.SendFeedback(ctx, index, feedapi.Action(action)); err != nil {
		return fmt.Errorf("send %s feedback for item %d: %w", action, index, err)
	}
	return nil
}

// journalTimeout bounds each journal write. Writes run on their own
// deadline so a request that timed out still gets recorded.
const journalTimeout = 2 * time.Second

func journalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
}

// Service runs one feed session and journals what it does. Journal writes
// are best effort and never fail a feed operation.
type Service struct {
	client     FeedClient
	controller *feed.Controller
	journal    Journal
	sessionID  string
	log        zerolog.Logger
}

func NewService(client FeedClient, journal Journal, opts ...feed.Option) *Service {
	id := uuid.NewString()
	return &Service{
		client:     client,
		controller: feed.NewController(NewRemote(client), feed.NewSession(), opts...),
		journal:    journal,
		sessionID:  id,
		log:        logging.With().Str("session", id).Logger(),
	}
}

func (s *Service) SessionID() string {
	return s.sessionID
}

func (s *Service) Snapshot() feed.Snapshot {
	return s.controller.Session().Snapshot()
}

func (s *Service) Start(ctx context.Context) (feed.Status, error) {
	return s.controller.Start(ctx)
}

func (s *Service) LoadMore(ctx context.Context, trigger feed.Trigger) (feed.BatchResult, error) {
	res, err := s.controller.LoadMore(ctx, trigger)
	s.recordBatch(ctx, res, err)
	return res, err
}

func (s *Service) Refresh(ctx context.Context) (feed.BatchResult, error) {
	res, err := s.controller.Refresh(ctx)
	s.recordBatch(ctx, res, err)
	return res, err
}

func (s *Service) ToggleLike(ctx context.Context, index int) (feed.ToggleResult, error) {
	res, err := s.controller.ToggleLike(ctx, index)
	if errors.Is(err, feed.ErrToggleInFlight) {
		return res, err
	}
	if s.journal != nil {
		rec := storage.FeedbackRecord{
			SessionID: s.sessionID,
			ItemIndex: index,
			Action:    string(res.Action),
			OK:        err == nil,
		}
		jctx, cancel := journalContext(ctx)
		defer cancel()
		if jerr := s.journal.RecordFeedback(jctx, rec); jerr != nil {
			s.log.Warn().Err(jerr).Int("index", index).Msg("journal feedback failed")
		}
	}
	return res, err
}

func (s *Service) ImageURL(index int) string {
	return s.client.ImageURL(index)
}

func (s *Service) FetchImage(ctx context.Context, index int) ([]byte, error) {
	data, err := s.client.FetchImage(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("fetch image %d: %w", index, err)
	}
	return data, nil
}

// Summary reports what this session did, or a zero summary without a journal.
func (s *Service) Summary(ctx context.Context) (storage.Summary, error) {
	if s.journal == nil {
		return storage.Summary{}, nil
	}
	summary, err := s.journal.Summary(ctx, s.sessionID)
	if err != nil {
		return storage.Summary{}, fmt.Errorf("load session summary: %w", err)
	}
	return summary, nil
}

func (s *Service) recordBatch(ctx context.Context, res feed.BatchResult, err error) {
	if s.journal == nil || !res.Started {
		return
	}
	rec := storage.BatchRecord{
		SessionID: s.sessionID,
		Trigger:   string(res.Trigger),
		Fetched:   res.Fetched,
		Added:     res.Added,
		OK:        err == nil,
	}
	jctx, cancel := journalContext(ctx)
	defer cancel()
	if jerr := s.journal.RecordBatch(jctx, rec); jerr != nil {
		s.log.Warn().Err(jerr).Str("trigger", string(res.Trigger)).Msg("journal batch failed")
	}
}
