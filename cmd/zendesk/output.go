package main

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jmerrifield20/zendesk/pkg/api"
)

// titleKeys are tried in order for the second column of text output.
var titleKeys = []string{"subject", "name", "title", "raw_title"}

// detailKeys are tried in order for the third column.
var detailKeys = []string{"status", "email", "result_type", "active"}

// maxCellRunes caps a text cell; longer values end in "...".
const maxCellRunes = 80

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []api.Record) error {
	if outputFormat == "json" {
		return printJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No records found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "TITLE", "DETAIL"})
	for _, r := range records {
		t.AppendRow(table.Row{r.ID(), firstOf(r, titleKeys), firstOf(r, detailKeys)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d records", len(records)), ""})
	t.Render()
	return nil
}

func firstOf(r api.Record, keys []string) string {
	for _, k := range keys {
		if v := r.String(k); v != "" {
			if utf8.RuneCountInString(v) > maxCellRunes {
				v = text.Trim(v, maxCellRunes-3) + "..."
			}
			return v
		}
	}
	return ""
}
