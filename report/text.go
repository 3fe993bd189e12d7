package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cwbudde/mystream/cluster"
	"github.com/cwbudde/mystream/engine"
	"github.com/cwbudde/mystream/stats"
	"github.com/cwbudde/mystream/stream"
)

const rule = "-----------------------------------------------------------\n"

// Header describes the run before any kernel results.
type Header struct {
	Mode        string
	CPUs        int
	SIMD        string
	Workers     int
	World       int // ranks in a distributed run, 0 otherwise
	Requested   int
	Elements    int
	Repetitions int
}

// HeaderOf returns the header of a local run.
func HeaderOf(r *engine.Report) Header {
	return Header{
		Mode:        r.Mode.String(),
		CPUs:        r.LogicalCPUs,
		SIMD:        r.SIMD.String(),
		Workers:     r.Workers,
		Requested:   r.Requested,
		Elements:    r.Elements,
		Repetitions: r.Repetitions,
	}
}

// ClusterHeaderOf returns the header of a distributed run as seen by rank 0.
func ClusterHeaderOf(out *cluster.Outcome, requested int) Header {
	h := HeaderOf(out.Local)
	h.Mode = "distributed"
	h.World = out.World
	h.Workers = out.World
	h.Requested = requested
	h.Elements = out.Elements
	return h
}

// WriteHeader prints the run description: processor, array sizes and
// repetitions. Numbers use English digit grouping.
func WriteHeader(w io.Writer, h Header) error {
	p := message.NewPrinter(language.English)
	vectorBytes := float64(stream.Bytes(h.Elements))

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = p.Fprintf(w, format, args...)
		}
	}
	printf(rule)
	printf("Mode:                      %s\n", h.Mode)
	printf("Number of CPU:             %d\n", h.CPUs)
	printf("SIMD level:                %s\n", h.SIMD)
	if h.World > 0 {
		printf("Ranks:                     %d\n", h.World)
	} else {
		printf("Workers:                   %d\n", h.Workers)
	}
	printf("Requested vector size:     %d\n", h.Requested)
	printf("Adjusted vector size:      %d\n", h.Elements)
	printf("MB Vector size:            %.3f [MB]\n", vectorBytes/stats.MiB)
	printf("GB Vector size:            %.3f [GB]\n", vectorBytes/stats.GiB)
	printf("GB Total allocated memory: %.3f [GB]\n", 4*vectorBytes/stats.GiB)
	printf("Repetitions:               %d\n", h.Repetitions)
	printf(rule)
	return err
}

// WriteResults prints one row per kernel of a local run followed by the
// consume checksum.
func WriteResults(w io.Writer, r *engine.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	p := message.NewPrinter(language.English)

	p.Fprintf(tw, "Test\tBandwidth [GB/s]\tBandwidth [MB/s]\tMean time [ms]\tStreamed [MB]\tBackend\t\n")
	for _, res := range r.Results {
		p.Fprintf(tw, "%s:\t%.3f\t%.1f\t%.3f\t%.1f\t%s\t\n",
			res.Kernel.Label(),
			res.Bandwidth/stats.GiB,
			res.Bandwidth/stats.MiB,
			res.MeanMS,
			res.StreamedBytes/stats.MiB,
			res.Backend)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%sConsume: %g\n", rule, r.Consume())
	return err
}

// WriteClusterResults prints the aggregated rows of a distributed run.
func WriteClusterResults(w io.Writer, totals []cluster.Total) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	p := message.NewPrinter(language.English)

	var consume float64
	p.Fprintf(tw, "Test\tBandwidth [GB/s]\tBandwidth [MB/s]\tAvg. Clock [ms]\tStreamed [MB]\tRanks\t\n")
	for _, t := range totals {
		p.Fprintf(tw, "%s:\t%.3f\t%.1f\t%.3f\t%.1f\t%d\t\n",
			t.Kernel.Label(),
			t.TotalBandwidth/stats.GiB,
			t.TotalBandwidth/stats.MiB,
			t.MeanClockMS,
			t.StreamedBytes/stats.MiB,
			t.Ranks)
		consume += t.Consume
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%sConsume: %g\n", rule, consume)
	return err
}
