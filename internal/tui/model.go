package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chrisant-go/list/internal/content"
	"github.com/chrisant-go/list/internal/observability"
)

type browseMode int

const (
	browseModeChooser browseMode = iota
	browseModeViewer
)

// Model is the top-level program model, switching between the Chooser and
// the Viewer the same way the teacher's Model switches between its
// workspace and single-run views.
type Model struct {
	mode    browseMode
	chooser *Chooser
	viewer  *Viewer

	multibyteEnabled bool
	maxLineLength    int
	logger           *observability.CoreLogger

	width, height int
	err           error
}

// ModelParams configures a new top-level Model.
type ModelParams struct {
	StartDir         string
	StartFile        string
	StartSource      content.Source // overrides StartFile's os.Open, e.g. a captured pipe
	StartLine        int            // 1-based; 0 means "don't jump"
	StartOffset      int64
	HasStartOffset   bool
	MaxLineLength    int
	MultibyteEnabled bool
	Logger           *observability.CoreLogger
}

// NewModel builds the top-level Model, starting in the Chooser unless
// StartFile (or StartSource) names a file to open directly (the
// --input-file / positional filespec CLI surface).
func NewModel(params ModelParams) (*Model, error) {
	dir := params.StartDir
	if dir == "" {
		dir = "."
	}
	c, err := newChooser(dir, params.MultibyteEnabled, params.Logger)
	if err != nil {
		return nil, err
	}

	m := &Model{
		chooser:          c,
		mode:             browseModeChooser,
		multibyteEnabled: params.MultibyteEnabled,
		maxLineLength:    params.MaxLineLength,
		logger:           params.Logger,
	}

	switch {
	case params.StartSource != nil:
		if err := m.openSource(params.StartFile, params.StartSource); err != nil {
			return nil, err
		}
	case params.StartFile != "":
		if err := m.openFile(params.StartFile); err != nil {
			return nil, err
		}
	}

	if m.viewer != nil {
		if params.StartLine > 0 {
			m.viewer.topLine = params.StartLine - 1
		} else if params.HasStartOffset {
			if idx, err := m.viewer.cache.OffsetToLine(uint64(params.StartOffset)); err == nil {
				m.viewer.topLine = idx
			}
		}
	}

	return m, nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsMsg.Width, wsMsg.Height
	}

	switch msg := msg.(type) {
	case OpenFileMsg:
		if err := m.openFile(msg.Path); err != nil {
			m.err = err
			return m, nil
		}
		return m, func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }
	case ChooserQuitMsg:
		return m, tea.Quit
	case ViewerClosedMsg:
		m.closeViewer()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case browseModeChooser:
		_, cmd = m.chooser.Update(msg)
	case browseModeViewer:
		_, cmd = m.viewer.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	switch m.mode {
	case browseModeViewer:
		if m.viewer != nil {
			return m.viewer.View()
		}
	}
	return m.chooser.View()
}

func (m *Model) openFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	source, err := content.NewFileSource(f)
	if err != nil {
		f.Close()
		return err
	}
	return m.openSource(path, source)
}

func (m *Model) openSource(path string, source content.Source) error {
	v, err := NewViewer(path, source, m.multibyteEnabled, m.logger)
	if err != nil {
		source.Close()
		return err
	}
	if m.maxLineLength > 0 {
		v.cache.SetMaxLineLength(m.maxLineLength)
	}
	m.viewer = v
	m.mode = browseModeViewer
	return nil
}

func (m *Model) closeViewer() {
	m.viewer = nil
	m.mode = browseModeChooser
}
