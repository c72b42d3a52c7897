package console

import (
	"fmt"
	"io"
	"sync"

	"giveaway-grid/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders results to a terminal
type Table struct {
	mu         sync.Mutex
	out        io.Writer
	showImages bool
}

// NewTable creates a console render target writing to out
func NewTable(out io.Writer, showImages bool) *Table {
	return &Table{out: out, showImages: showImages}
}

// ShowLoading implements results.View
func (t *Table) ShowLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "Fetching giveaways...")
}

// ShowItems implements results.View
func (t *Table) ShowItems(items []models.DisplayItem) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tw := table.NewWriter()
	tw.SetOutputMirror(t.out)

	header := table.Row{"#", "Name", "Link", "Expires"}
	if t.showImages {
		header = append(header, "Image")
	}
	tw.AppendHeader(header)

	for i, item := range items {
		row := table.Row{i + 1, item.Name, item.URL, item.ExpirationDate}
		if t.showImages {
			row = append(row, item.ImageURL)
		}
		tw.AppendRow(row)
	}

	tw.AppendFooter(table.Row{"", models.GiveawayCount(len(items))})
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.Render()
}

// ShowEmpty implements results.View
func (t *Table) ShowEmpty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "No entries found.")
}

// ShowError implements results.View
func (t *Table) ShowError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Error: %s\n", message)
}
