package feed

import "sync"

// Session owns all mutable feed state. Every mutation goes through one method
// holding mu; the lock is never held across a network call.
type Session struct {
	mu        sync.Mutex
	queue     *Queue
	liked     map[int]struct{}
	pending   map[int]struct{}
	likeSeed  int
	likeCount int
	total     int
	fetching  bool
	started   bool
}

func NewSession() *Session {
	return &Session{
		queue:   NewQueue(),
		liked:   make(map[int]struct{}),
		pending: make(map[int]struct{}),
	}
}

// Seed applies the start-of-session status. The like counter starts from the
// server's count, which includes likes from earlier sessions that are not in
// the local liked set.
func (s *Session) Seed(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = status.TotalItems
	s.likeSeed = status.LikedCount
	s.likeCount = status.LikedCount + len(s.liked)
	s.started = true
}

func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// TryBeginFetch sets the fetch guard. It returns false when a fetch is
// already in flight, in which case the caller must not fetch.
func (s *Session) TryBeginFetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetching {
		return false
	}
	s.fetching = true
	return true
}

// EndFetch clears the fetch guard and merges batch, returning the number of
// new items. A nil batch (failed fetch) only clears the guard.
func (s *Session) EndFetch(batch []Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false
	if batch == nil {
		return 0
	}
	return s.queue.Merge(batch)
}

func (s *Session) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// MergeBatch merges outside of the fetch protocol.
func (s *Session) MergeBatch(batch []Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Merge(batch)
}

// Reset empties the queue. Likes and the fetch guard are left alone, so an
// in-flight fetch still lands in the emptied queue.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Reset()
}

func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.IsEmpty()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *Session) Indices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Indices()
}

func (s *Session) Item(position int) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if position < 0 || position >= s.queue.Len() {
		return Item{}, false
	}
	return s.queue.items[position], true
}

// IsLiked reports the confirmed like state of an item.
func (s *Session) IsLiked(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liked[index]
	return ok
}

func (s *Session) LikeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likeCount
}

// LikedIndices returns the confirmed liked item indices, unordered.
func (s *Session) LikedIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.liked))
	for idx := range s.liked {
		out = append(out, idx)
	}
	return out
}

// BeginToggle marks index as having a feedback request in flight and returns
// the action to send. A second toggle on the same index while the first is
// pending gets ErrToggleInFlight.
func (s *Session) BeginToggle(index int) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[index]; busy {
		return "", ErrToggleInFlight
	}
	s.pending[index] = struct{}{}
	if _, ok := s.liked[index]; ok {
		return ActionSkip, nil
	}
	return ActionLike, nil
}

// CompleteToggle clears the pending mark and, when ok, applies action to the
// liked set and counter. It returns the resulting liked state and counter.
func (s *Session) CompleteToggle(index int, action Action, ok bool) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, index)
	if ok {
		switch action {
		case ActionLike:
			if _, already := s.liked[index]; !already {
				s.liked[index] = struct{}{}
				s.likeCount++
			}
		case ActionSkip:
			if _, was := s.liked[index]; was {
				delete(s.liked, index)
				s.likeCount--
			}
		}
	}
	_, liked := s.liked[index]
	return liked, s.likeCount
}

// TogglePending reports whether feedback for index is awaiting a reply.
func (s *Session) TogglePending(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[index]
	return ok
}

// Consistent reports whether the counter matches the liked set relative to
// the server seed. Only meaningful when no toggle is pending.
func (s *Session) Consistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likeCount-s.likeSeed == len(s.liked)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.queue.Len()
	items := make([]ViewItem, n)
	for i, item := range s.queue.items {
		_, liked := s.liked[item.Index]
		_, pending := s.pending[item.Index]
		items[i] = ViewItem{
			Index:      item.Index,
			DisplayURL: item.DisplayURL,
			Filename:   item.Filename(),
			Position:   i + 1,
			QueueLen:   n,
			Liked:      liked,
			Pending:    pending,
		}
	}
	return Snapshot{
		Items:      items,
		TotalItems: s.total,
		LikeCount:  s.likeCount,
		Fetching:   s.fetching,
		Started:    s.started,
	}
}
