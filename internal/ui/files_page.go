package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/files"
)

// File table column widths.
const (
	fileSizeWidth     = 10
	fileModifiedWidth = 16
)

// listing returns the derived listing of page's backend for the selected
// printer.
func (m Model) listing(page string) (files.Backend, files.Listing) {
	lister, ok := m.listers[page]
	if !ok {
		return files.Backend{}, files.Listing{}
	}
	pc, in := m.printerContext()
	return lister.Backend, lister.Get(in, pc)
}

func refreshControl(b files.Backend) string {
	return "refresh:" + string(b.Kind)
}

func fileControl(b files.Backend, op string) string {
	return op + ":" + string(b.Kind)
}

// selectedEntry returns the entry under the cursor of page.
func (m Model) selectedEntry(page string, listing files.Listing) (files.Entry, bool) {
	if len(listing.Entries) == 0 {
		return files.Entry{}, false
	}
	row := minInt(m.fileRows[page], len(listing.Entries)-1)
	return listing.Entries[row], true
}

// handleFilesKey handles navigation and file actions on a file page.
func (m Model) handleFilesKey(msg tea.KeyMsg, page string) (tea.Model, tea.Cmd) {
	backend, listing := m.listing(page)
	count := len(listing.Entries)
	row := minInt(m.fileRows[page], maxInt(count-1, 0))

	switch {
	case key.Matches(msg, m.keys.Down):
		if row < count-1 {
			row++
		}
	case key.Matches(msg, m.keys.Up):
		if row > 0 {
			row--
		}
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = maxInt(count-1, 0)

	case key.Matches(msg, m.keys.Refresh):
		if !backend.Caps.Has(files.CapRefresh) || listing.Refresh == "" {
			return m, nil
		}
		d := m.dispatcher
		pc, _ := m.printerContext()
		return m, m.startAction(refreshControl(backend), func(ctx context.Context) action.Outcome {
			out, err := backend.Refresh(ctx, d, pc.Entities, pc.Part)
			if err != nil {
				return action.Outcome{Err: err}
			}
			return out
		})

	case key.Matches(msg, m.keys.Delete):
		entry, ok := m.selectedEntry(page, listing)
		if !ok {
			return m, nil
		}
		req, ok := backend.DeleteRequest(m.selection().Device, entry)
		if !ok {
			return m, nil
		}
		m.modal = &confirmModal{
			title:   "Delete file",
			prompt:  fmt.Sprintf("Delete %q from %s?", entry.Name, strings.ToLower(backend.Title)),
			control: fileControl(backend, "delete"),
			request: req,
		}
		return m, nil

	case key.Matches(msg, m.keys.Download):
		entry, ok := m.selectedEntry(page, listing)
		if !ok {
			return m, nil
		}
		req, err := backend.DownloadRequest(m.selection().Device, entry)
		if err != nil {
			// Backends without CapDownload never reach the dispatcher.
			return m, nil
		}
		return m, m.sendRequest(fileControl(backend, "download"), req)
	}

	m.fileRows[page] = row
	return m, nil
}

// renderFilesPage renders a backend's file table.
func (m Model) renderFilesPage(page string) string {
	height := m.contentHeight()
	backend, listing := m.listing(page)

	title := fmt.Sprintf("%s (%d)", backend.Title, len(listing.Entries))
	content := m.renderFileTable(page, listing, m.width-2, height-3)
	box := m.renderTitledBox(title, content, m.width, height-1, true)
	return box + "\n" + m.renderFileStatus(backend, listing)
}

// renderFileTable renders the visible window of the listing.
func (m Model) renderFileTable(page string, listing files.Listing, width, rows int) string {
	styles := m.theme.Styles()
	bgColor := m.theme.FocusBg
	bg := NewBgStyle(bgColor)

	if len(listing.Entries) == 0 {
		msg := "No files"
		if listing.Refresh != "" {
			msg += ", press r to request the list"
		}
		return bg.FillLine(bg.Space()+bg.Render(msg, styles.MutedText), width)
	}

	nameWidth := maxInt(width-fileSizeWidth-fileModifiedWidth-4, 10)
	header := bg.Space() +
		bg.Render(padRight("Name", nameWidth), styles.FaintText) + bg.Space() +
		bg.Render(padRight("Size", fileSizeWidth), styles.FaintText) + bg.Space() +
		bg.Render("Modified", styles.FaintText)
	lines := []string{bg.FillLine(header, width)}

	selected := minInt(m.fileRows[page], len(listing.Entries)-1)
	rows = maxInt(rows-1, 1)
	start := 0
	if selected >= rows {
		start = selected - rows + 1
	}
	end := minInt(start+rows, len(listing.Entries))

	for i := start; i < end; i++ {
		entry := listing.Entries[i]
		rowBg := bgColor
		nameStyle, mutedStyle := styles.Text, styles.MutedText
		if i == selected {
			rowBg = m.theme.SelectionBg
			selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			nameStyle, mutedStyle = selText, selText
		}
		rb := NewBgStyle(rowBg)
		line := rb.Space() +
			rb.Render(padRight(truncateMiddle(entry.Name, nameWidth), nameWidth), nameStyle) + rb.Space() +
			rb.Render(padRight(formatSize(entry.Size), fileSizeWidth), mutedStyle) + rb.Space() +
			rb.Render(formatModified(entry), mutedStyle)
		lines = append(lines, rb.FillLine(line, width))
	}
	return strings.Join(lines, "\n")
}

// renderFileStatus renders the action line below the table.
func (m Model) renderFileStatus(backend files.Backend, listing files.Listing) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("caps", styles.FaintText) + bg.Space() + bg.Render(backend.Caps.String(), styles.MutedText)}
	if listing.Refresh == "" {
		parts = append(parts, bg.Render("no refresh entity", styles.FaintText))
	}
	for _, op := range []struct{ label, control string }{
		{"refresh", refreshControl(backend)},
		{"delete", fileControl(backend, "delete")},
		{"download", fileControl(backend, "download")},
	} {
		if label := m.statusLabel(op.control, styles, bg); label != "" {
			parts = append(parts, bg.Render(op.label, styles.MutedText)+bg.Space()+label)
		}
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

func formatSize(size int64) string {
	if size <= 0 {
		return "--"
	}
	return humanize.Bytes(uint64(size))
}

func formatModified(entry files.Entry) string {
	if entry.Modified.IsZero() {
		return "--"
	}
	return humanize.Time(entry.Modified)
}
