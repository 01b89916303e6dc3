package feed

import (
	"context"
	"time"

	"github.com/glabrego/memefeed-cli/internal/logging"
)

// DefaultRefreshDelay is how long after a successful like the follow-up
// recommendation fetch is scheduled.
const DefaultRefreshDelay = 500 * time.Millisecond

// Remote is the feed service as seen by the controller.
type Remote interface {
	Status(ctx context.Context) (Status, error)
	Recommend(ctx context.Context) ([]Item, error)
	SendFeedback(ctx context.Context, index int, action Action) error
}

type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerNearEnd Trigger = "near_end"
	TriggerLike    Trigger = "like"
	TriggerRefresh Trigger = "refresh"
)

type BatchResult struct {
	Trigger Trigger
	// Started is false when the fetch guard was already held and the request
	// was dropped.
	Started bool
	Fetched int
	Added   int
}

type ToggleResult struct {
	Index     int
	Action    Action
	Liked     bool
	LikeCount int
	// RefreshAfter is non-zero when a recommendation refresh should follow.
	RefreshAfter time.Duration
}

type Controller struct {
	remote       Remote
	session      *Session
	refreshDelay time.Duration
}

type Option func(*Controller)

func WithRefreshDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.refreshDelay = d
		}
	}
}

func NewController(remote Remote, session *Session, opts ...Option) *Controller {
	if session == nil {
		session = NewSession()
	}
	c := &Controller{
		remote:       remote,
		session:      session,
		refreshDelay: DefaultRefreshDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Session() *Session {
	return c.session
}

// Start seeds the session from the service status. Any failure is an
// InitializationFailure; the caller follows up with LoadMore(TriggerInitial).
func (c *Controller) Start(ctx context.Context) (Status, error) {
	status, err := c.remote.Status(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("feed status failed")
		return Status{}, &Error{Kind: InitializationFailure, Err: err}
	}
	c.session.Seed(status)
	logging.Info().Int("total", status.TotalItems).Int("liked", status.LikedCount).Msg("feed session started")
	return status, nil
}

// LoadMore fetches one recommendation batch unless another fetch is in
// flight. The guard is released whatever the outcome.
func (c *Controller) LoadMore(ctx context.Context, trigger Trigger) (BatchResult, error) {
	result := BatchResult{Trigger: trigger}
	if !c.session.TryBeginFetch() {
		logging.Debug().Str("trigger", string(trigger)).Msg("fetch in flight, ignoring trigger")
		return result, nil
	}
	result.Started = true

	batch, err := c.remote.Recommend(ctx)
	if err != nil {
		c.session.EndFetch(nil)
		logging.Error().Err(err).Str("trigger", string(trigger)).Msg("batch fetch failed")
		return result, &Error{Kind: BatchFetchFailure, Err: err}
	}
	if batch == nil {
		batch = []Item{}
	}
	result.Fetched = len(batch)
	result.Added = c.session.EndFetch(batch)
	logging.Debug().
		Str("trigger", string(trigger)).
		Int("fetched", result.Fetched).
		Int("added", result.Added).
		Int("queue", c.session.Len()).
		Msg("batch merged")
	return result, nil
}

// Refresh clears the queue and requests a fresh batch. A fetch already in
// flight is not cancelled and will merge into the emptied queue.
func (c *Controller) Refresh(ctx context.Context) (BatchResult, error) {
	c.session.Reset()
	logging.Info().Msg("queue reset for manual refresh")
	return c.LoadMore(ctx, TriggerRefresh)
}

// ToggleLike flips the like state of index. Local state changes only after
// the service confirms; on failure nothing is mutated.
func (c *Controller) ToggleLike(ctx context.Context, index int) (ToggleResult, error) {
	action, err := c.session.BeginToggle(index)
	if err != nil {
		return ToggleResult{Index: index}, err
	}

	if err := c.remote.SendFeedback(ctx, index, action); err != nil {
		liked, count := c.session.CompleteToggle(index, action, false)
		logging.Error().Err(err).Int("index", index).Str("action", string(action)).Msg("feedback failed")
		return ToggleResult{Index: index, Action: action, Liked: liked, LikeCount: count}, &Error{Kind: FeedbackFailure, Err: err}
	}

	liked, count := c.session.CompleteToggle(index, action, true)
	result := ToggleResult{Index: index, Action: action, Liked: liked, LikeCount: count}
	if action == ActionLike {
		result.RefreshAfter = c.refreshDelay
	}
	logging.Info().Int("index", index).Str("action", string(action)).Int("liked_count", count).Msg("feedback sent")
	return result, nil
}
