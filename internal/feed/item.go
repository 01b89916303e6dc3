// Package feed holds the client-side feed state machine: the de-duplicated
// display queue, the liked set, the fetch guard, and the controller that
// drives pagination and like toggles against the remote service.
package feed

import "strings"

// Item is one recommended entry. Index is the server-assigned identifier used
// for dedup and feedback; SourcePath only feeds Filename.
type Item struct {
	SourcePath string
	Index      int
	DisplayURL string
}

// Filename is the last path segment of SourcePath, accepting both / and \
// separators since the service may run on either platform.
func (i Item) Filename() string {
	p := i.SourcePath
	if j := strings.LastIndexAny(p, `/\`); j >= 0 {
		p = p[j+1:]
	}
	return p
}

type Action string

const (
	ActionLike Action = "like"
	ActionSkip Action = "skip"
)

// Status seeds a session.
type Status struct {
	TotalItems int
	LikedCount int
}

// ViewItem is what the renderer consumes for one row.
type ViewItem struct {
	Index      int
	DisplayURL string
	Filename   string
	Position   int // 1-based
	QueueLen   int
	Liked      bool
	Pending    bool
}

type Snapshot struct {
	Items      []ViewItem
	TotalItems int
	LikeCount  int
	Fetching   bool
	Started    bool
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
