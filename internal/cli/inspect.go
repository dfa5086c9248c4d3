package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/hupe1980/megamerge/codec"
)

// FrameSummary totals a frame stream.
type FrameSummary struct {
	Frames      int
	Results     int
	EmptyFrames int
	Bytes       int64
}

func (a *App) inspectCommand() *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "inspect LOCATION",
		Short: "Summarize a frame output file",
		Long:  "Inspect decodes a frame file written by `scan --format frame`, verifying every checksum. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.Context(), args[0], summaryOnly)
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print totals only")
	return cmd
}

func (a *App) openInput(ctx context.Context, uri string) (io.ReadCloser, error) {
	if uri == "-" {
		return io.NopCloser(a.Stdin), nil
	}
	loc, err := a.resolver.Resolve(ctx, uri)
	if err != nil {
		return nil, err
	}
	b, err := loc.Store.Open(ctx, loc.Name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &blobReader{ReadCloser: rc, blob: b}, nil
}

type blobReader struct {
	io.ReadCloser
	blob io.Closer
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) runInspect(ctx context.Context, uri string, summaryOnly bool) error {
	in, err := a.openInput(ctx, uri)
	if err != nil {
		return err
	}
	defer in.Close()

	cr := &countingReader{r: in}
	fr := codec.NewFrameReader(cr)
	var sum FrameSummary

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	if !summaryOnly {
		fmt.Fprintln(tw, "SEGMENT\tFROM\tTO\tRESULTS\tCOMPRESSION\tBLOCK")
	}

	for {
		b, err := fr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = tw.Flush()
			return fmt.Errorf("frame %d: %w", sum.Frames, err)
		}

		info := fr.Info()
		sum.Frames++
		sum.Results += b.Len()
		if b.Len() == 0 {
			sum.EmptyFrames++
		}

		if !summaryOnly {
			fmt.Fprintf(tw, "%d\t%g\t%g\t%d\t%s\t%s\n",
				b.Segment, b.Interval.From, b.Interval.To, b.Len(), info.Compression, units.HumanSize(float64(info.BlockSize)))
		}
	}
	sum.Bytes = cr.n

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Stdout, "frames: %d (%d empty), results: %d, size: %s\n",
		sum.Frames, sum.EmptyFrames, sum.Results, units.HumanSize(float64(sum.Bytes)))
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
