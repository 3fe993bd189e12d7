package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/mystream/cluster"
	"github.com/cwbudde/mystream/engine"
	"github.com/cwbudde/mystream/stats"
)

// Columns is the CSV header.
var Columns = []string{
	"Test",
	"Avg. Time [ms]",
	"Bandwidth [GB/s]",
	"Std. Dev. [ms]",
	"Max [ms]",
	"Min [ms]",
	"Streamed Memory [MB]",
}

// Row is one CSV line.
type Row struct {
	Test       string
	AvgTimeMS  float64
	Bandwidth  float64 // GB/s
	StdDevMS   float64
	MaxMS      float64
	MinMS      float64
	StreamedMB float64
}

// Rows converts the results of a local run.
func Rows(r *engine.Report) []Row {
	rows := make([]Row, len(r.Results))
	for i, res := range r.Results {
		rows[i] = Row{
			Test:       res.Kernel.Label(),
			AvgTimeMS:  res.MeanMS,
			Bandwidth:  res.Bandwidth / stats.GiB,
			StdDevMS:   res.Summary.StdDev,
			MaxMS:      res.Summary.Max,
			MinMS:      res.Summary.Min,
			StreamedMB: res.StreamedBytes / stats.MiB,
		}
	}
	return rows
}

// ClusterRows converts aggregated distributed results. Time statistics
// describe the spread of the ranks' mean clocks.
func ClusterRows(totals []cluster.Total) []Row {
	rows := make([]Row, len(totals))
	for i, t := range totals {
		rows[i] = Row{
			Test:       t.Kernel.Label(),
			AvgTimeMS:  t.MeanClockMS,
			Bandwidth:  t.TotalBandwidth / stats.GiB,
			StdDevMS:   t.StdDevClockMS,
			MaxMS:      t.MaxClockMS,
			MinMS:      t.MinClockMS,
			StreamedMB: t.StreamedBytes / stats.MiB,
		}
	}
	return rows
}

func (r Row) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{r.Test, f(r.AvgTimeMS), f(r.Bandwidth), f(r.StdDevMS), f(r.MaxMS), f(r.MinMS), f(r.StreamedMB)}
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SerializeCSV returns the CSV document for rows.
func SerializeCSV(rows []Row) string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = WriteCSV(&b, rows)
	return b.String()
}
