package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chrisant-go/list/internal/chooser"
	"github.com/chrisant-go/list/internal/content"
	"github.com/chrisant-go/list/internal/observability"
)

type viewerMode int

const (
	viewerNormal viewerMode = iota
	viewerHelp
	viewerJump
	viewerFind
	viewerFindRegex
	viewerEncodingMenu
)

// ViewerClosedMsg is emitted when the Viewer should hand control back to
// the Chooser, mirroring the teacher's top-level Model switching on a typed
// message rather than a shared boolean flag.
type ViewerClosedMsg struct{}

var viewerKeyMap = buildKeyMap(ViewerKeyBindings())

const bytesPerHexRow = 16

// Viewer is the content-inspection half of the browser: it owns a
// content.Cache for the open file and renders a scrolling window of either
// reflowed text or hex rows over it.
type Viewer struct {
	cache *content.Cache
	path  string
	logger *observability.CoreLogger

	width, height int
	topLine       int
	hexMode       bool
	wrapEnabled   bool

	mode      viewerMode
	jump      *JumpPrompt
	findInput textinput.Model
	findRegex bool

	lastSearcher content.Searcher
	lastQuery    string
	lastFind     *content.FindResult

	encodingMenu *chooser.PopupList

	err error
}

// NewViewer builds a content.Cache over source, which the caller has
// already opened for path, and returns a ready Viewer, or the error
// content.Open reports when the source can't be read.
func NewViewer(path string, source content.Source, multibyteEnabled bool, logger *observability.CoreLogger) (*Viewer, error) {
	cache, err := content.Open(source, multibyteEnabled)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "Find: "

	v := &Viewer{
		cache:       cache,
		path:        path,
		logger:      logger,
		wrapEnabled: true,
		hexMode:     cache.Encoding().IsBinary,
		jump:        NewJumpPrompt(),
		findInput:   ti,
	}
	return v, nil
}

func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height-1 // one row reserved for the status line
		if v.wrapEnabled {
			v.cache.SetWrapWidth(v.width)
		}
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case viewerJump:
			return v.updateJump(msg)
		case viewerFind, viewerFindRegex:
			return v.updateFind(msg)
		case viewerHelp:
			if msg.String() == "esc" || msg.String() == "h" || msg.String() == "?" {
				v.mode = viewerNormal
			}
			return v, nil
		case viewerEncodingMenu:
			return v.updateEncodingMenu(msg)
		default:
			if msg.String() == "h" || msg.String() == "?" {
				v.mode = viewerHelp
				return v, nil
			}
			if handler, ok := viewerKeyMap[msg.String()]; ok {
				return v, handler(v, msg)
			}
			return v, nil
		}
	}
	return v, nil
}

func (v *Viewer) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.jump.Deactivate()
		v.mode = viewerNormal
		return v, nil
	case tea.KeyEnter:
		kind, value, ok := v.jump.Resolve()
		v.jump.Deactivate()
		v.mode = viewerNormal
		if !ok {
			return v, nil
		}
		if kind == JumpToLine {
			v.topLine = int(value) - 1
		} else if v.hexMode {
			v.topLine = int(uint64(value) / bytesPerHexRow)
		} else if idx, err := v.cache.OffsetToLine(uint64(value)); err == nil {
			v.topLine = idx
		}
		if v.topLine < 0 {
			v.topLine = 0
		}
		return v, nil
	}
	return v, v.jump.Update(msg)
}

func (v *Viewer) updateFind(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.mode = viewerNormal
		return v, nil
	case tea.KeyEnter:
		pattern := v.findInput.Value()
		v.mode = viewerNormal
		if pattern == "" {
			return v, nil
		}
		v.lastQuery = pattern
		if v.findRegex {
			s, err := content.NewRegexSearcher(pattern, false)
			if err != nil {
				v.err = err
				return v, nil
			}
			v.lastSearcher = s
		} else {
			v.lastSearcher = content.NewLiteralSearcher(pattern, false)
		}
		v.runFind(v.topLine, 0, true)
		return v, nil
	}
	var cmd tea.Cmd
	v.findInput, cmd = v.findInput.Update(msg)
	return v, cmd
}

func (v *Viewer) updateEncodingMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = viewerNormal
	case "up":
		v.encodingMenu.MoveUp()
	case "down":
		v.encodingMenu.MoveDown()
	case "enter":
		cps := []content.Codepage{content.CodepageUTF8, content.CodepageUTF16LE, content.CodepageUTF16BE, content.CodepageOEMUS}
		if sel := v.encodingMenu.Selected(); sel >= 0 && sel < len(cps) {
			v.cache.SetEncodingOverride(cps[sel])
		}
		v.mode = viewerNormal
	}
	return v, nil
}

func (v *Viewer) runFind(fromLine, fromCol int, forward bool) {
	if v.lastSearcher == nil {
		return
	}
	res, err := v.cache.FindFrom(v.lastSearcher, fromLine, fromCol, forward)
	if err != nil {
		v.err = err
		return
	}
	if res == nil {
		return
	}
	v.lastFind = res
	v.topLine = res.LineIndex
}

// --- handlers (KeyBinding[Viewer].Handler shape) ---

func (v *Viewer) handleQuit(tea.KeyMsg) tea.Cmd {
	return func() tea.Msg { return ViewerClosedMsg{} }
}

func (v *Viewer) handleLineUp(tea.KeyMsg) tea.Cmd {
	if v.topLine > 0 {
		v.topLine--
	}
	return nil
}

func (v *Viewer) handleLineDown(tea.KeyMsg) tea.Cmd {
	v.topLine++
	return nil
}

func (v *Viewer) handlePageUp(tea.KeyMsg) tea.Cmd {
	v.topLine -= v.height
	if v.topLine < 0 {
		v.topLine = 0
	}
	return nil
}

func (v *Viewer) handlePageDown(tea.KeyMsg) tea.Cmd {
	v.topLine += v.height
	return nil
}

func (v *Viewer) handleTop(tea.KeyMsg) tea.Cmd {
	v.topLine = 0
	return nil
}

func (v *Viewer) handleBottom(tea.KeyMsg) tea.Cmd {
	if err := v.cache.ProcessToEnd(); err != nil {
		v.err = err
		return nil
	}
	v.topLine = v.cache.LineCount() - v.height
	if v.topLine < 0 {
		v.topLine = 0
	}
	return nil
}

func (v *Viewer) handleJumpPrompt(tea.KeyMsg) tea.Cmd {
	v.mode = viewerJump
	v.jump.Activate()
	return nil
}

func (v *Viewer) handleToggleWrap(tea.KeyMsg) tea.Cmd {
	v.wrapEnabled = !v.wrapEnabled
	if v.wrapEnabled {
		v.cache.SetWrapWidth(v.width)
	} else {
		v.cache.SetWrapWidth(0)
	}
	return nil
}

func (v *Viewer) handleToggleHex(tea.KeyMsg) tea.Cmd {
	v.hexMode = !v.hexMode
	return nil
}

func (v *Viewer) handleEncodingMenu(tea.KeyMsg) tea.Cmd {
	names := []string{"UTF-8", "UTF-16 LE", "UTF-16 BE", "OEM United States"}
	v.encodingMenu = chooser.NewPopupList("Encoding", names, 0, chooser.PopupListNone)
	v.mode = viewerEncodingMenu
	return nil
}

func (v *Viewer) handleFindPrompt(tea.KeyMsg) tea.Cmd {
	v.mode = viewerFind
	v.findRegex = false
	v.findInput.SetValue("")
	v.findInput.Focus()
	return nil
}

func (v *Viewer) handleFindRegexPrompt(tea.KeyMsg) tea.Cmd {
	v.mode = viewerFindRegex
	v.findRegex = true
	v.findInput.SetValue("")
	v.findInput.Focus()
	return nil
}

func (v *Viewer) handleFindNext(tea.KeyMsg) tea.Cmd {
	fromCol := 0
	if v.lastFind != nil {
		fromCol = int(v.lastFind.Offset) + v.lastFind.Length
	}
	v.runFind(v.topLine, fromCol, true)
	return nil
}

func (v *Viewer) handleFindPrev(tea.KeyMsg) tea.Cmd {
	v.runFind(v.topLine-1, 0, false)
	return nil
}

func (v *Viewer) handleSave(tea.KeyMsg) tea.Cmd {
	if err := v.cache.Save(); err != nil {
		v.err = err
	}
	return nil
}

func (v *Viewer) handleUndoSave(tea.KeyMsg) tea.Cmd {
	if err := v.cache.UndoSave(); err != nil {
		v.err = err
	}
	return nil
}

func (v *Viewer) handleNextEdit(tea.KeyMsg) tea.Cmd {
	row, ok := v.cache.NextEditedByteRow(uint64(v.topLine*bytesPerHexRow), true, bytesPerHexRow)
	if ok {
		v.topLine = int(row) / bytesPerHexRow
	}
	return nil
}

func (v *Viewer) View() string {
	var b strings.Builder

	if v.hexMode {
		for i := 0; i < v.height; i++ {
			off := uint64((v.topLine + i) * bytesPerHexRow)
			row, err := v.cache.FormatHexData(off, bytesPerHexRow)
			if err != nil {
				break
			}
			groups := content.FormatHexGroups(row, 8)
			fmt.Fprintf(&b, "%08X  %s  %s\n", row.Offset, strings.Join(groups, "  "), row.Text)
		}
	} else {
		for i := 0; i < v.height; i++ {
			line, err := v.cache.FormatLineData(v.topLine+i, v.lastFind)
			if err != nil {
				break
			}
			text := line.Text
			if line.FoundLength > 0 {
				text = text[:line.FoundStart] +
					lipgloss.NewStyle().Reverse(true).Render(text[line.FoundStart:line.FoundStart+line.FoundLength]) +
					text[line.FoundStart+line.FoundLength:]
			}
			b.WriteString(text)
			b.WriteByte('\n')
		}
	}

	status := v.path + "  " + v.cache.Encoding().String()
	if v.err != nil {
		status += "  ERROR: " + v.err.Error()
	}
	b.WriteString(status)

	switch v.mode {
	case viewerJump:
		b.WriteByte('\n')
		b.WriteString(v.jump.View())
	case viewerFind, viewerFindRegex:
		b.WriteByte('\n')
		b.WriteString(v.findInput.View())
	case viewerHelp:
		b.WriteByte('\n')
		b.WriteString(renderHelp(ViewerKeyBindings()))
	case viewerEncodingMenu:
		if v.encodingMenu != nil {
			b.WriteByte('\n')
			b.WriteString(v.encodingMenu.View())
		}
	}

	return b.String()
}

func renderHelp[T any](categories []BindingCategory[T]) string {
	var b strings.Builder
	for _, cat := range categories {
		b.WriteString(cat.Name)
		b.WriteByte('\n')
		for _, bind := range cat.Bindings {
			fmt.Fprintf(&b, "  %-20s %s\n", strings.Join(bind.Keys, ", "), bind.Description)
		}
	}
	return b.String()
}
