package chooser

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// PopupListFlags tune PopupList behavior (ported from
// original_source/popuplist.h's PopupListFlags enum; only the subset the
// Viewer/Chooser surface actually uses is carried over).
type PopupListFlags int

const (
	PopupListNone PopupListFlags = 0
	// PopupListFilter enables incremental type-to-filter.
	PopupListFilter PopupListFlags = 1 << iota
)

// PopupResult reports how a PopupList session ended.
type PopupResult int

const (
	PopupCanceled PopupResult = iota
	PopupAccepted
)

// PopupList is a filterable single-select list: the generic list-picker
// widget original_source/popuplist.cpp implements for things like the
// encoding menu, sort-key menu, and jump target list.
type PopupList struct {
	Title string
	flags PopupListFlags

	items    []string
	filtered []int // indices into items; nil means "no filter applied"

	index int
	top   int
	rows  int

	filter textinput.Model
}

// NewPopupList creates a list over items with selectedIndex preselected.
func NewPopupList(title string, items []string, selectedIndex int, flags PopupListFlags) *PopupList {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type to filter"

	p := &PopupList{
		Title:  title,
		flags:  flags,
		items:  items,
		index:  selectedIndex,
		rows:   10,
		filter: ti,
	}
	if p.index < 0 || p.index >= len(items) {
		p.index = 0
	}
	return p
}

// SetVisibleRows configures how many rows are shown at once, driving
// scrolling (update_top in the original).
func (p *PopupList) SetVisibleRows(rows int) {
	if rows < 1 {
		rows = 1
	}
	p.rows = rows
	p.updateTop()
}

func (p *PopupList) activeCount() int {
	if p.filtered != nil {
		return len(p.filtered)
	}
	return len(p.items)
}

func (p *PopupList) originalIndex(i int) int {
	if p.filtered != nil {
		if i < 0 || i >= len(p.filtered) {
			return -1
		}
		return p.filtered[i]
	}
	return i
}

// ItemText returns the display text of row i (in the currently filtered
// view), or "" if out of range.
func (p *PopupList) ItemText(i int) string {
	oi := p.originalIndex(i)
	if oi < 0 || oi >= len(p.items) {
		return ""
	}
	return p.items[oi]
}

// VisibleRange returns [top, top+rows) clamped to the active item count,
// for a view to render.
func (p *PopupList) VisibleRange() (int, int) {
	end := p.top + p.rows
	if n := p.activeCount(); end > n {
		end = n
	}
	return p.top, end
}

func (p *PopupList) Index() int { return p.index }

// Selected returns the original-list index currently highlighted.
func (p *PopupList) Selected() int { return p.originalIndex(p.index) }

func (p *PopupList) MoveDown() {
	if p.index < p.activeCount()-1 {
		p.index++
	}
	p.updateTop()
}

func (p *PopupList) MoveUp() {
	if p.index > 0 {
		p.index--
	}
	p.updateTop()
}

func (p *PopupList) Home() {
	p.index = 0
	p.updateTop()
}

func (p *PopupList) End() {
	p.index = p.activeCount() - 1
	if p.index < 0 {
		p.index = 0
	}
	p.updateTop()
}

func (p *PopupList) updateTop() {
	if p.index < p.top {
		p.top = p.index
	}
	if p.rows > 0 && p.index >= p.top+p.rows {
		p.top = p.index - p.rows + 1
	}
}

// SetFilter applies needle as a case-insensitive substring filter over the
// item list, preserving original order (filter_items in the original).
func (p *PopupList) SetFilter(needle string) {
	if needle == "" {
		p.filtered = nil
		p.index = 0
		p.top = 0
		return
	}

	needle = strings.ToLower(needle)
	var filtered []int
	for i, item := range p.items {
		if strings.Contains(strings.ToLower(item), needle) {
			filtered = append(filtered, i)
		}
	}
	p.filtered = filtered
	p.index = 0
	p.top = 0
}

// ClearFilter restores the unfiltered item list (clear_filter).
func (p *PopupList) ClearFilter() {
	p.filtered = nil
	p.filter.SetValue("")
}

// View renders the popup: its title, the optional filter input, and the
// currently visible rows with the selected one marked.
func (p *PopupList) View() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte('\n')
	if p.flags&PopupListFilter != 0 {
		b.WriteString(p.filter.View())
		b.WriteByte('\n')
	}
	start, end := p.VisibleRange()
	for i := start; i < end; i++ {
		marker := "  "
		if i == p.index {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(p.ItemText(i))
		b.WriteByte('\n')
	}
	return b.String()
}
