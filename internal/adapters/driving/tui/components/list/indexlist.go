// Package list provides the document picker list for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// IndexList shows indexed documents with a cursor and a checked set.
type IndexList struct {
	items    []driving.IndexInfo
	checked  map[string]bool
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewIndexList creates an empty list.
func NewIndexList(s *styles.Styles) *IndexList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &IndexList{
		checked: make(map[string]bool),
		styles:  s,
		width:   80,
		height:  10,
	}
}

// View renders the visible rows.
func (l *IndexList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No documents indexed. Use 'docqa upload' to add some.")
	}

	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Documents (%d)", len(l.items))), "")

	visible := max(l.height-4, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (l *IndexList) renderRow(i int) string {
	item := l.items[i]

	cursor := "  "
	if i == l.selected {
		cursor = "> "
	}
	box := "[ ]"
	if l.checked[item.FileID] {
		box = "[x]"
	}

	name := item.Filename
	if name == "" {
		name = item.FileID
	}
	maxName := max(l.width-24, 10)
	if len([]rune(name)) > maxName {
		name = string([]rune(name)[:maxName-3]) + "..."
	}

	row := fmt.Sprintf("%s%s %s %-*s", cursor, box, item.Icon, maxName, name)
	chunks := fmt.Sprintf("%d chunks", item.Chunks)
	if i == l.selected {
		return l.styles.Selected.Render(row + "  " + chunks)
	}
	return l.styles.Normal.Render(row+"  ") + l.styles.Muted.Render(chunks)
}

// SetItems replaces the list. Checked ids that no longer exist are dropped.
func (l *IndexList) SetItems(items []driving.IndexInfo) {
	l.items = items
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.FileID] = true
	}
	for id := range l.checked {
		if !present[id] {
			delete(l.checked, id)
		}
	}
	if l.selected >= len(items) {
		l.selected = max(len(items)-1, 0)
	}
}

// Items returns the listed documents.
func (l *IndexList) Items() []driving.IndexInfo {
	return l.items
}

// Toggle flips the checked state of the row under the cursor.
func (l *IndexList) Toggle() {
	if len(l.items) == 0 {
		return
	}
	id := l.items[l.selected].FileID
	if l.checked[id] {
		delete(l.checked, id)
	} else {
		l.checked[id] = true
	}
}

// SetChecked replaces the checked set.
func (l *IndexList) SetChecked(ids []string) {
	l.checked = make(map[string]bool, len(ids))
	for _, id := range ids {
		l.checked[id] = true
	}
}

// ClearChecked unchecks every row.
func (l *IndexList) ClearChecked() {
	l.checked = make(map[string]bool)
}

// Checked returns the checked file ids in list order.
func (l *IndexList) Checked() []string {
	var ids []string
	for _, it := range l.items {
		if l.checked[it.FileID] {
			ids = append(ids, it.FileID)
		}
	}
	return ids
}

// Selected returns the cursor position.
func (l *IndexList) Selected() int {
	return l.selected
}

// MoveUp moves the cursor up.
func (l *IndexList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *IndexList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the available space.
func (l *IndexList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of rows.
func (l *IndexList) Count() int {
	return len(l.items)
}
