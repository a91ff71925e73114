package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chrisant-go/list/internal/chooser"
	"github.com/chrisant-go/list/internal/observability"
)

var chooserKeyMap = buildKeyMap(ChooserKeyBindings())

var taggedStyle = lipgloss.NewStyle().Bold(true)
var selectedStyle = lipgloss.NewStyle().Reverse(true)

// OpenFileMsg asks the top-level Model to switch to the Viewer for path.
type OpenFileMsg struct{ Path string }

// ChooserQuitMsg asks the top-level Model (and ultimately the program) to
// exit, mirroring the Viewer's typed-message mode switch.
type ChooserQuitMsg struct{}

// Chooser is the directory-navigation half of the browser: it lists one
// directory's entries and lets the user move into subdirectories, tag
// entries, change sort order, and open a file into the Viewer.
type Chooser struct {
	dir     string
	entries []chooser.Entry
	sortKey chooser.SortKey
	reverse bool

	detect           *chooser.DetectionCache
	multibyteEnabled bool
	logger           *observability.CoreLogger

	cursor int
	top    int

	width, height int
	err           error
}

// NewChooser lists dir and returns a ready Chooser.
func NewChooser(dir string, logger *observability.CoreLogger) (*Chooser, error) {
	return newChooser(dir, false, logger)
}

func newChooser(dir string, multibyteEnabled bool, logger *observability.CoreLogger) (*Chooser, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	entries, err := chooser.List(abs)
	if err != nil {
		return nil, err
	}
	detect, err := chooser.NewDetectionCache(512)
	if err != nil {
		return nil, err
	}
	c := &Chooser{
		dir:              abs,
		entries:          entries,
		detect:           detect,
		multibyteEnabled: multibyteEnabled,
		logger:           logger,
	}
	chooser.Sort(c.entries, c.sortKey, c.reverse)
	return c, nil
}

func (c *Chooser) Init() tea.Cmd { return nil }

func (c *Chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height-1
		return c, nil
	case tea.KeyMsg:
		if handler, ok := chooserKeyMap[msg.String()]; ok {
			return c, handler(c, msg)
		}
	}
	return c, nil
}

func (c *Chooser) reload() {
	entries, err := chooser.List(c.dir)
	if err != nil {
		c.err = err
		return
	}
	c.entries = entries
	chooser.Sort(c.entries, c.sortKey, c.reverse)
	if c.cursor >= len(c.entries) {
		c.cursor = len(c.entries) - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

func (c *Chooser) selected() (chooser.Entry, bool) {
	if c.cursor < 0 || c.cursor >= len(c.entries) {
		return chooser.Entry{}, false
	}
	return c.entries[c.cursor], true
}

func (c *Chooser) updateScroll() {
	if c.height <= 0 {
		return
	}
	if c.cursor < c.top {
		c.top = c.cursor
	}
	if c.cursor >= c.top+c.height {
		c.top = c.cursor - c.height + 1
	}
}

// --- handlers (KeyBinding[Chooser].Handler shape) ---

func (c *Chooser) handleQuit(tea.KeyMsg) tea.Cmd {
	return func() tea.Msg { return ChooserQuitMsg{} }
}

func (c *Chooser) handleOpen(tea.KeyMsg) tea.Cmd {
	entry, ok := c.selected()
	if !ok {
		return nil
	}
	path := filepath.Join(c.dir, entry.Name)
	if entry.IsDir {
		c.dir = path
		c.cursor, c.top = 0, 0
		c.reload()
		return nil
	}
	return func() tea.Msg { return OpenFileMsg{Path: path} }
}

func (c *Chooser) handleUpDir(tea.KeyMsg) tea.Cmd {
	parent := filepath.Dir(c.dir)
	if parent == c.dir {
		return nil
	}
	prev := filepath.Base(c.dir)
	c.dir = parent
	c.cursor, c.top = 0, 0
	c.reload()
	for i, e := range c.entries {
		if e.Name == prev {
			c.cursor = i
			break
		}
	}
	return nil
}

func (c *Chooser) handleUp(tea.KeyMsg) tea.Cmd {
	if c.cursor > 0 {
		c.cursor--
	}
	c.updateScroll()
	return nil
}

func (c *Chooser) handleDown(tea.KeyMsg) tea.Cmd {
	if c.cursor < len(c.entries)-1 {
		c.cursor++
	}
	c.updateScroll()
	return nil
}

func (c *Chooser) handleToggleTag(tea.KeyMsg) tea.Cmd {
	chooser.Toggle(c.entries, c.cursor)
	if c.cursor < len(c.entries)-1 {
		c.cursor++
		c.updateScroll()
	}
	return nil
}

func (c *Chooser) handleCycleSort(tea.KeyMsg) tea.Cmd {
	c.sortKey = (c.sortKey + 1) % 4
	chooser.Sort(c.entries, c.sortKey, c.reverse)
	return nil
}

func (c *Chooser) handleReverseSort(tea.KeyMsg) tea.Cmd {
	c.reverse = !c.reverse
	chooser.Sort(c.entries, c.sortKey, c.reverse)
	return nil
}

func (c *Chooser) View() string {
	var b strings.Builder
	b.WriteString(c.dir)
	b.WriteByte('\n')

	end := c.top + c.height
	if end > len(c.entries) || c.height <= 0 {
		end = len(c.entries)
	}
	for i := c.top; i < end; i++ {
		e := c.entries[i]
		line := formatEntryLine(e)
		if !e.IsDir {
			if enc, err := c.detect.Detect(filepath.Join(c.dir, e.Name), c.multibyteEnabled); err == nil {
				line = fmt.Sprintf("%-60s %s", line, enc.Name)
			}
		}
		if e.Tagged {
			line = taggedStyle.Render(line)
		}
		if i == c.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if c.err != nil {
		fmt.Fprintf(&b, "ERROR: %s\n", c.err)
	}
	return b.String()
}

func formatEntryLine(e chooser.Entry) string {
	if e.IsDir {
		return fmt.Sprintf("%-40s %s", e.Name+string(os.PathSeparator), "<DIR>")
	}
	return fmt.Sprintf("%-40s %10d  %s", e.Name, e.Size, e.ModTime.Format("2006-01-02 15:04"))
}
