package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// JumpTarget is what a JumpPrompt resolved to.
type JumpTarget int

const (
	JumpToLine JumpTarget = iota
	JumpToOffset
)

// JumpPrompt is the small modal that reads "go to line N" or "go to offset
// 0xNN", supplementing the distilled spec with the original's jump-to
// command (original_source/input.cpp's line/offset prompt handling).
type JumpPrompt struct {
	input  textinput.Model
	active bool
}

// NewJumpPrompt creates an inactive prompt.
func NewJumpPrompt() *JumpPrompt {
	ti := textinput.New()
	ti.Prompt = "Go to line (or 0x offset): "
	ti.CharLimit = 32
	return &JumpPrompt{input: ti}
}

func (p *JumpPrompt) Activate() {
	p.active = true
	p.input.SetValue("")
	p.input.Focus()
}

func (p *JumpPrompt) Deactivate() {
	p.active = false
	p.input.Blur()
}

func (p *JumpPrompt) Active() bool { return p.active }

func (p *JumpPrompt) View() string { return p.input.View() }

// Update feeds msg to the embedded text input.
func (p *JumpPrompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// Resolve parses the current input as either a 1-based line number or, with
// a "0x" prefix, a hex byte offset.
func (p *JumpPrompt) Resolve() (kind JumpTarget, value int64, ok bool) {
	s := strings.TrimSpace(p.input.Value())
	if s == "" {
		return 0, 0, false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseInt(s[2:], 16, 64)
		if err != nil {
			return 0, 0, false
		}
		return JumpToOffset, n, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return JumpToLine, n, true
}
