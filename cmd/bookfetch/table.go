package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bookfetch/internal/download"
)

// tableColumn describes one rendered column. Status columns are coloured by
// download outcome when colour is enabled.
type tableColumn struct {
	title  string
	align  text.Align
	status bool
}

var fetchColumns = []tableColumn{
	{title: "#", align: text.AlignRight},
	{title: "Asset", align: text.AlignLeft},
	{title: "Source", align: text.AlignLeft},
	{title: "Status", align: text.AlignLeft, status: true},
	{title: "Size", align: text.AlignRight},
}

var collectionColumns = []tableColumn{
	{title: "Collection ID", align: text.AlignLeft},
	{title: "Description", align: text.AlignLeft},
	{title: "Blockchain", align: text.AlignLeft},
	{title: "Network", align: text.AlignLeft},
}

var statusColors = map[string]text.Colors{
	string(download.StatusDownloaded): {text.FgGreen},
	string(download.StatusSkipped):    {text.FgHiBlack},
	string(download.StatusFailed):     {text.FgRed},
	pendingStatus:                     {text.FgYellow},
}

func renderTable(columns []tableColumn, rows [][]string, colorize bool) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: col.align, AlignHeader: text.AlignLeft}
		if col.status && colorize {
			configs[i].Transformer = colorStatus
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func colorStatus(value any) string {
	status, _ := value.(string)
	if colors, ok := statusColors[status]; ok {
		return colors.Sprint(status)
	}
	return status
}
