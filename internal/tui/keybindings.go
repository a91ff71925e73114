package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding defines a key binding for a particular target model type. If
// Handler is nil the binding is shown in help but dispatched by a child
// component instead of the top-level key map.
type KeyBinding[T any] struct {
	Keys        []string
	Description string
	Handler     func(*T, tea.KeyMsg) tea.Cmd
}

// BindingCategory groups related bindings, for the help screen.
type BindingCategory[T any] struct {
	Name     string
	Bindings []KeyBinding[T]
}

// buildKeyMap flattens categories into a fast key-string lookup.
func buildKeyMap[T any](categories []BindingCategory[T]) map[string]func(*T, tea.KeyMsg) tea.Cmd {
	keyMap := make(map[string]func(*T, tea.KeyMsg) tea.Cmd)
	for _, category := range categories {
		for _, binding := range category.Bindings {
			if binding.Handler == nil {
				continue
			}
			for _, key := range binding.Keys {
				keyMap[normalizeKey(key)] = binding.Handler
			}
		}
	}
	return keyMap
}

// normalizeKey normalizes bubbletea's KeyMsg.String() into a stable key.
func normalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// ViewerKeyBindings returns the Viewer's key bindings.
func ViewerKeyBindings() []BindingCategory[Viewer] {
	return []BindingCategory[Viewer]{
		{
			Name: "General",
			Bindings: []KeyBinding[Viewer]{
				{Keys: []string{"q", "esc"}, Description: "Back to chooser", Handler: (*Viewer).handleQuit},
				{Keys: []string{"h", "?"}, Description: "Toggle this help screen"},
			},
		},
		{
			Name: "Navigation",
			Bindings: []KeyBinding[Viewer]{
				{Keys: []string{"up", "k"}, Description: "Line up", Handler: (*Viewer).handleLineUp},
				{Keys: []string{"down", "j"}, Description: "Line down", Handler: (*Viewer).handleLineDown},
				{Keys: []string{"pgup"}, Description: "Page up", Handler: (*Viewer).handlePageUp},
				{Keys: []string{"pgdown", "space"}, Description: "Page down", Handler: (*Viewer).handlePageDown},
				{Keys: []string{"home", "g"}, Description: "Top of file", Handler: (*Viewer).handleTop},
				{Keys: []string{"end", "G"}, Description: "Bottom of file", Handler: (*Viewer).handleBottom},
				{Keys: []string{"ctrl+g"}, Description: "Jump to line/offset", Handler: (*Viewer).handleJumpPrompt},
			},
		},
		{
			Name: "Display",
			Bindings: []KeyBinding[Viewer]{
				{Keys: []string{"w"}, Description: "Toggle line wrapping", Handler: (*Viewer).handleToggleWrap},
				{Keys: []string{"x"}, Description: "Toggle hex view", Handler: (*Viewer).handleToggleHex},
				{Keys: []string{"e"}, Description: "Choose encoding", Handler: (*Viewer).handleEncodingMenu},
			},
		},
		{
			Name: "Search",
			Bindings: []KeyBinding[Viewer]{
				{Keys: []string{"/"}, Description: "Find (literal)", Handler: (*Viewer).handleFindPrompt},
				{Keys: []string{"ctrl+f"}, Description: "Find (regex)", Handler: (*Viewer).handleFindRegexPrompt},
				{Keys: []string{"n"}, Description: "Find next", Handler: (*Viewer).handleFindNext},
				{Keys: []string{"N"}, Description: "Find previous", Handler: (*Viewer).handleFindPrev},
			},
		},
		{
			Name: "Hex edit",
			Bindings: []KeyBinding[Viewer]{
				{Keys: []string{"ctrl+s"}, Description: "Save edits", Handler: (*Viewer).handleSave},
				{Keys: []string{"ctrl+z"}, Description: "Undo all saved edits", Handler: (*Viewer).handleUndoSave},
				{Keys: []string{"tab"}, Description: "Next edited byte", Handler: (*Viewer).handleNextEdit},
			},
		},
	}
}

// ChooserKeyBindings returns the Chooser's key bindings.
func ChooserKeyBindings() []BindingCategory[Chooser] {
	return []BindingCategory[Chooser]{
		{
			Name: "General",
			Bindings: []KeyBinding[Chooser]{
				{Keys: []string{"q", "ctrl+c"}, Description: "Quit", Handler: (*Chooser).handleQuit},
				{Keys: []string{"enter"}, Description: "Open selected entry", Handler: (*Chooser).handleOpen},
				{Keys: []string{"backspace", "left"}, Description: "Up one directory", Handler: (*Chooser).handleUpDir},
			},
		},
		{
			Name: "Navigation",
			Bindings: []KeyBinding[Chooser]{
				{Keys: []string{"up", "k"}, Description: "Move up", Handler: (*Chooser).handleUp},
				{Keys: []string{"down", "j"}, Description: "Move down", Handler: (*Chooser).handleDown},
			},
		},
		{
			Name: "Selection",
			Bindings: []KeyBinding[Chooser]{
				{Keys: []string{"space"}, Description: "Tag/untag entry", Handler: (*Chooser).handleToggleTag},
			},
		},
		{
			Name: "Sorting",
			Bindings: []KeyBinding[Chooser]{
				{Keys: []string{"s"}, Description: "Cycle sort key", Handler: (*Chooser).handleCycleSort},
				{Keys: []string{"S"}, Description: "Reverse sort order", Handler: (*Chooser).handleReverseSort},
			},
		},
	}
}
