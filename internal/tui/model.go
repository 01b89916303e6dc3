package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/memefeed-cli/internal/feed"
	"github.com/glabrego/memefeed-cli/internal/logging"
	"github.com/glabrego/memefeed-cli/internal/tui/actions"
	"github.com/glabrego/memefeed-cli/internal/tui/platform"
	"github.com/glabrego/memefeed-cli/internal/tui/state"
	tuitheme "github.com/glabrego/memefeed-cli/internal/tui/theme"
	"github.com/glabrego/memefeed-cli/internal/tui/view"
)

type clearStatusMsg struct {
	id int
}

type inlineImagePreviewSuccessMsg struct {
	index   int
	preview string
}

type inlineImagePreviewErrorMsg struct {
	index int
	err   error
}

// Options carries the config values the model needs.
type Options struct {
	BaseURL          string
	RequestTimeout   time.Duration
	NearEndLookahead int
	ImagePreview     bool
}

type Model struct {
	service actions.Service
	opts    Options
	theme   tuitheme.Theme
	keys    keyMap
	spinner spinner.Model

	snap       feed.Snapshot
	cursor     int
	selected   int
	starting   bool
	initErr    error
	refreshSeq int

	showHelp      bool
	inDetail      bool
	detailTop     int
	clearGraphics bool
	width         int
	height        int

	status   string
	statusID int
	warning  string
	notice   *notice

	openURLFn     func(string) error
	copyURLFn     func(string) error
	renderImageFn func([]byte, int) (string, error)

	imagePreview        map[int]string
	imagePreviewErr     map[int]string
	imagePreviewLoading map[int]bool
}

// notice blocks all input until any key dismisses it.
type notice struct {
	title string
	body  string
}

func NewModel(service actions.Service, opts Options) Model {
	if opts.NearEndLookahead < 0 {
		opts.NearEndLookahead = 0
	}
	th := tuitheme.Default()
	m := Model{
		service:             service,
		opts:                opts,
		theme:               th,
		keys:                defaultKeyMap(),
		spinner:             spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(th.StateLoad)),
		selected:            -1,
		openURLFn:           platform.OpenURLInBrowser,
		copyURLFn:           platform.CopyURLToClipboard,
		renderImageFn:       view.RenderInlineImagePreview,
		imagePreview:        make(map[int]string),
		imagePreviewErr:     make(map[int]string),
		imagePreviewLoading: make(map[int]bool),
	}
	if service != nil {
		m.starting = true
		m.snap = service.Snapshot()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tea.Batch(actions.StartCmd(m.service, m.opts.RequestTimeout), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.clearGraphics = false
	m.sync()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case actions.StartSuccessMsg:
		m.starting = false
		m.initErr = nil
		m.sync()
		logging.Debug().Dur("took", msg.Duration).Msg("status loaded, requesting first batch")
		return m, actions.LoadMoreCmd(m.service, feed.TriggerInitial, m.opts.RequestTimeout)
	case actions.StartErrorMsg:
		m.starting = false
		m.initErr = msg.Err
		return m, nil
	case actions.BatchSuccessMsg:
		m.sync()
		if msg.Result.Trigger == feed.TriggerRefresh {
			m.cursor = 0
			m.detailTop = 0
			m.selectCurrent()
		}
		m.warning = ""
		if msg.Result.Started && msg.Result.Added > 0 {
			return m.setStatus(fmt.Sprintf("Loaded %d new", msg.Result.Added), 2*time.Second)
		}
		return m, nil
	case actions.BatchErrorMsg:
		m.sync()
		m.warning = fmt.Sprintf("Could not load recommendations (%s): %v", msg.Trigger, msg.Err)
		return m, nil
	case actions.ToggleSuccessMsg:
		m.sync()
		var cmds []tea.Cmd
		if msg.Result.RefreshAfter > 0 {
			m.refreshSeq++
			cmds = append(cmds, actions.RefreshAfterCmd(msg.Result.RefreshAfter, m.refreshSeq))
		}
		next, cmd := m.setStatus(msg.Status, 2*time.Second)
		return next, tea.Batch(append(cmds, cmd)...)
	case actions.ToggleErrorMsg:
		m.sync()
		if errors.Is(msg.Err, feed.ErrToggleInFlight) {
			return m.setStatus("Still sending feedback for this item", 2*time.Second)
		}
		m.notice = &notice{
			title: "Feedback failed",
			body:  fmt.Sprintf("Could not update item %d: %v", msg.Index, msg.Err),
		}
		return m, nil
	case actions.RefreshDueMsg:
		if msg.Seq != m.refreshSeq || m.service == nil {
			return m, nil
		}
		return m, actions.LoadMoreCmd(m.service, feed.TriggerLike, m.opts.RequestTimeout)
	case actions.ImageLoadedMsg:
		return m, inlineImagePreviewCmd(msg.Index, msg.Data, m.contentWidth(), m.renderImageFn)
	case actions.ImageErrorMsg:
		delete(m.imagePreviewLoading, msg.Index)
		m.imagePreviewErr[msg.Index] = msg.Err.Error()
		return m, nil
	case inlineImagePreviewSuccessMsg:
		delete(m.imagePreviewLoading, msg.index)
		delete(m.imagePreviewErr, msg.index)
		m.imagePreview[msg.index] = msg.preview
		return m, nil
	case inlineImagePreviewErrorMsg:
		delete(m.imagePreviewLoading, msg.index)
		m.imagePreviewErr[msg.index] = msg.err.Error()
		return m, nil
	case actions.OpenURLSuccessMsg:
		return m.setStatus(msg.Status, 3*time.Second)
	case actions.OpenURLErrorMsg:
		return m.setStatus("Error: "+msg.Err.Error(), 4*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.notice != nil {
		m.notice = nil
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.snap.Started {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh) && m.initErr != nil && !m.starting && m.service != nil:
			m.initErr = nil
			m.starting = true
			return m, tea.Batch(actions.StartCmd(m.service, m.opts.RequestTimeout), m.spinner.Tick)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.showHelp = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	if m.inDetail {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		return m.moveDown(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursorBy(-1)
	case key.Matches(msg, m.keys.PageDown):
		return m.moveDown(m.listPageStep())
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursorBy(-m.listPageStep())
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.selectCurrent()
	case key.Matches(msg, m.keys.Bottom):
		return m.moveDown(len(m.snap.Items))
	case key.Matches(msg, m.keys.Open):
		if len(m.snap.Items) == 0 {
			return m, nil
		}
		m.inDetail = true
		m.detailTop = 0
		return m, m.ensureInlineImagePreviewCmd()
	case key.Matches(msg, m.keys.Like):
		return m.toggleLikeCurrent()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.OpenURL):
		return m.openCurrentURL()
	case key.Matches(msg, m.keys.CopyURL):
		return m.copyCurrentURL()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if view.ContainsKittyGraphicsEscape(m.imagePreview[m.selected]) {
			m.clearGraphics = true
		}
		m.inDetail = false
		m.detailTop = 0
	case key.Matches(msg, m.keys.Up):
		if m.detailTop > 0 {
			m.detailTop--
		}
	case key.Matches(msg, m.keys.Down):
		if m.detailTop < view.DetailMaxTop(len(m.currentDetailLines()), m.detailBodyHeight()) {
			m.detailTop++
		}
	case key.Matches(msg, m.keys.Prev):
		if m.cursor > 0 {
			m.moveCursorBy(-1)
			m.detailTop = 0
			return m, m.ensureInlineImagePreviewCmd()
		}
	case key.Matches(msg, m.keys.Next):
		next, cmd := m.moveDown(1)
		nm := next.(Model)
		nm.detailTop = 0
		return nm, tea.Batch(cmd, nm.ensureInlineImagePreviewCmd())
	case key.Matches(msg, m.keys.Like):
		return m.toggleLikeCurrent()
	case key.Matches(msg, m.keys.OpenURL):
		return m.openCurrentURL()
	case key.Matches(msg, m.keys.CopyURL):
		return m.copyCurrentURL()
	}
	return m, nil
}

// moveDown advances the cursor and asks for the next batch once the cursor is
// close to the end. A press at the last row also counts.
func (m Model) moveDown(delta int) (tea.Model, tea.Cmd) {
	m.moveCursorBy(delta)
	if m.service == nil || m.snap.Fetching {
		return m, nil
	}
	if !state.NearEnd(m.cursor, len(m.snap.Items), m.opts.NearEndLookahead) {
		return m, nil
	}
	return m, actions.LoadMoreCmd(m.service, feed.TriggerNearEnd, m.opts.RequestTimeout)
}

func (m Model) toggleLikeCurrent() (tea.Model, tea.Cmd) {
	item, ok := m.currentItem()
	if !ok || m.service == nil {
		return m, nil
	}
	if item.Pending {
		return m.setStatus("Still sending feedback for this item", 2*time.Second)
	}
	return m, actions.ToggleLikeCmd(m.service, item.Index, m.opts.RequestTimeout)
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.service == nil {
		return m, nil
	}
	m.warning = ""
	// a pending post-like refresh is superseded
	m.refreshSeq++
	return m, actions.RefreshCmd(m.service, m.opts.RequestTimeout)
}

func (m Model) openCurrentURL() (tea.Model, tea.Cmd) {
	item, ok := m.currentItem()
	if !ok {
		return m, nil
	}
	url, err := platform.ValidateImageURL(item.DisplayURL)
	if err != nil {
		return m.setStatus("Error: "+err.Error(), 4*time.Second)
	}
	return m, actions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCurrentURL() (tea.Model, tea.Cmd) {
	item, ok := m.currentItem()
	if !ok {
		return m, nil
	}
	url, err := platform.ValidateImageURL(item.DisplayURL)
	if err != nil {
		return m.setStatus("Error: "+err.Error(), 4*time.Second)
	}
	return m, actions.CopyURLCmd(url, m.copyURLFn)
}

func (m Model) setStatus(status string, after time.Duration) (tea.Model, tea.Cmd) {
	m.status = status
	m.statusID++
	return m, clearStatusCmd(m.statusID, after)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// sync pulls the session snapshot and keeps the cursor on the same item when
// that item is still queued.
func (m *Model) sync() {
	if m.service == nil {
		return
	}
	m.snap = m.service.Snapshot()
	if m.selected >= 0 {
		if pos := state.CursorForIndex(m.indices(), m.selected); pos >= 0 {
			m.cursor = pos
		}
	}
	m.cursor = state.ClampCursor(m.cursor, len(m.snap.Items))
	m.selectCurrent()
	if len(m.snap.Items) == 0 {
		m.inDetail = false
	}
}

func (m *Model) selectCurrent() {
	if item, ok := m.currentItem(); ok {
		m.selected = item.Index
		return
	}
	m.selected = -1
}

func (m *Model) moveCursorBy(delta int) {
	m.cursor = state.ClampCursor(m.cursor+delta, len(m.snap.Items))
	m.selectCurrent()
}

func (m Model) currentItem() (feed.ViewItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Items) {
		return feed.ViewItem{}, false
	}
	return m.snap.Items[m.cursor], true
}

func (m Model) indices() []int {
	out := make([]int, len(m.snap.Items))
	for i, item := range m.snap.Items {
		out[i] = item.Index
	}
	return out
}

func (m Model) loading() bool {
	return m.starting || m.snap.Fetching
}

func (m Model) listPageStep() int {
	return state.PageStep(m.height, m.status != "" || m.warning != "")
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		usedByChrome := 6
		if h := m.height - usedByChrome; h > 3 {
			return h
		}
	}
	return 16
}

func (m Model) listBodyHeight() int {
	if m.height > 0 {
		if h := m.height - 6; h > 3 {
			return h
		}
	}
	return 0
}

func (m *Model) ensureInlineImagePreviewCmd() tea.Cmd {
	if !m.opts.ImagePreview || m.service == nil {
		return nil
	}
	item, ok := m.currentItem()
	if !ok {
		return nil
	}
	if _, ok := m.imagePreview[item.Index]; ok {
		return nil
	}
	if m.imagePreviewLoading[item.Index] {
		return nil
	}
	m.imagePreviewLoading[item.Index] = true
	delete(m.imagePreviewErr, item.Index)
	return actions.FetchImageCmd(m.service, item.Index, m.opts.RequestTimeout)
}

func inlineImagePreviewCmd(index int, data []byte, width int, renderFn func([]byte, int) (string, error)) tea.Cmd {
	if renderFn == nil {
		return nil
	}
	return func() tea.Msg {
		preview, err := renderFn(data, width)
		if err != nil {
			return inlineImagePreviewErrorMsg{index: index, err: err}
		}
		return inlineImagePreviewSuccessMsg{index: index, preview: preview}
	}
}
