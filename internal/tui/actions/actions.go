package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/memefeed-cli/internal/feed"
)

// Service is what the TUI drives. *app.Service satisfies it.
type Service interface {
	Start(ctx context.Context) (feed.Status, error)
	LoadMore(ctx context.Context, trigger feed.Trigger) (feed.BatchResult, error)
	Refresh(ctx context.Context) (feed.BatchResult, error)
	ToggleLike(ctx context.Context, index int) (feed.ToggleResult, error)
	FetchImage(ctx context.Context, index int) ([]byte, error)
	Snapshot() feed.Snapshot
}

const defaultTimeout = 10 * time.Second

type StartSuccessMsg struct {
	Status   feed.Status
	Duration time.Duration
}

type StartErrorMsg struct {
	Err error
}

type BatchSuccessMsg struct {
	Result   feed.BatchResult
	Duration time.Duration
}

type BatchErrorMsg struct {
	Trigger feed.Trigger
	Err     error
}

type ToggleSuccessMsg struct {
	Result feed.ToggleResult
	Status string
}

type ToggleErrorMsg struct {
	Index int
	Err   error
}

// RefreshDueMsg fires after the post-like delay. Seq identifies the like
// that scheduled it so only the latest one refreshes.
type RefreshDueMsg struct {
	Seq int
}

type ImageLoadedMsg struct {
	Index int
	Data  []byte
}

type ImageErrorMsg struct {
	Index int
	Err   error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

func StartCmd(service Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(timeout))
		defer cancel()
		start := time.Now()

		status, err := service.Start(ctx)
		if err != nil {
			return StartErrorMsg{Err: err}
		}
		return StartSuccessMsg{Status: status, Duration: time.Since(start)}
	}
}

func LoadMoreCmd(service Service, trigger feed.Trigger, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(timeout))
		defer cancel()
		start := time.Now()

		res, err := service.LoadMore(ctx, trigger)
		if err != nil {
			return BatchErrorMsg{Trigger: trigger, Err: err}
		}
		return BatchSuccessMsg{Result: res, Duration: time.Since(start)}
	}
}

func RefreshCmd(service Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(timeout))
		defer cancel()
		start := time.Now()

		res, err := service.Refresh(ctx)
		if err != nil {
			return BatchErrorMsg{Trigger: feed.TriggerRefresh, Err: err}
		}
		return BatchSuccessMsg{Result: res, Duration: time.Since(start)}
	}
}

func ToggleLikeCmd(service Service, index int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(timeout))
		defer cancel()

		res, err := service.ToggleLike(ctx, index)
		if err != nil {
			return ToggleErrorMsg{Index: index, Err: err}
		}

		status := "Unliked"
		if res.Liked {
			status = "Liked"
		}
		return ToggleSuccessMsg{Result: res, Status: status}
	}
}

// RefreshAfterCmd schedules a RefreshDueMsg carrying seq.
func RefreshAfterCmd(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return RefreshDueMsg{Seq: seq}
	})
}

func FetchImageCmd(service Service, index int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(timeout))
		defer cancel()

		data, err := service.FetchImage(ctx, index)
		if err != nil {
			return ImageErrorMsg{Index: index, Err: err}
		}
		return ImageLoadedMsg{Index: index, Data: data}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened image in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}
