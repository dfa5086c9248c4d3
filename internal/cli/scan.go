package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/megamerge"
	"github.com/hupe1980/megamerge/blobstore"
	"github.com/hupe1980/megamerge/blobstore/s3"
	"github.com/hupe1980/megamerge/internal/sink"
	"github.com/hupe1980/megamerge/matrix"
)

type scanFlags struct {
	segmentation string
	data         string
	out          string
	manifest     string
	scan         ScanConfig
}

func (a *App) scanCommand() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a data set against a segmentation",
		Long: `Scan reads two n x 2 interval matrices (CSV, TSV or .npy) and writes, for every
segmentation interval, the data intervals whose overlap exceeds the threshold.

Locations are local paths, s3://bucket/key or minio://bucket/key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.cfg.Scan
			f.apply(cmd, &s)
			if err := s.Validate(); err != nil {
				return err
			}
			return a.runScan(cmd.Context(), f, s)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.segmentation, "segmentation", "s", "", "segmentation matrix location")
	fl.StringVarP(&f.data, "data", "d", "", "data matrix location")
	fl.StringVarP(&f.out, "out", "o", "-", "output location, - for stdout")
	fl.StringVar(&f.manifest, "manifest", "", "manifest location (default: next to --out)")
	fl.Float64VarP(&f.scan.Threshold, "threshold", "t", 0, "minimum overlap, exclusive")
	fl.IntVarP(&f.scan.Workers, "workers", "w", 0, "scan goroutines (0: GOMAXPROCS, 1: sequential)")
	fl.IntVar(&f.scan.ChunkSize, "chunk-size", 0, "data intervals per task (0: default)")
	fl.StringVar(&f.scan.MemoryLimit, "memory-limit", "", "cap for the scanner's interval copies, e.g. 512MiB")
	fl.StringVar(&f.scan.IOLimit, "io-limit", "", "output write rate per second, e.g. 20MiB")
	fl.StringVarP(&f.scan.Format, "format", "f", DefaultFormat, fmt.Sprintf("output format %v", sink.Formats()))
	fl.StringVar(&f.scan.Compression, "compression", DefaultCompression, "frame compression (none, lz4, zstd)")
	fl.IntVar(&f.scan.Limit, "limit", 0, "stop after N batches (0: all)")
	fl.StringVar(&f.scan.CommitTable, "commit-table", "", "DynamoDB table for the CURRENT run pointer")
	_ = cmd.MarkFlagRequired("segmentation")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// apply copies explicitly set flags over the config values.
func (f *scanFlags) apply(cmd *cobra.Command, s *ScanConfig) {
	changed := cmd.Flags().Changed
	if changed("threshold") {
		s.Threshold = f.scan.Threshold
	}
	if changed("workers") {
		s.Workers = f.scan.Workers
	}
	if changed("chunk-size") {
		s.ChunkSize = f.scan.ChunkSize
	}
	if changed("memory-limit") {
		s.MemoryLimit = f.scan.MemoryLimit
	}
	if changed("io-limit") {
		s.IOLimit = f.scan.IOLimit
	}
	if changed("format") {
		s.Format = f.scan.Format
	}
	if changed("compression") {
		s.Compression = f.scan.Compression
	}
	if changed("limit") {
		s.Limit = f.scan.Limit
	}
	if changed("commit-table") {
		s.CommitTable = f.scan.CommitTable
	}
}

type loadedMatrix struct {
	m     *matrix.Dense
	bytes int64
}

func loadMatrix(ctx context.Context, loc Location) (loadedMatrix, error) {
	data, err := blobstore.ReadAll(ctx, loc.Store, loc.Name)
	if err != nil {
		return loadedMatrix{}, fmt.Errorf("read %s: %w", loc.URI, err)
	}
	m, err := matrix.DecodeBytes(loc.Name, data)
	if err != nil {
		return loadedMatrix{}, fmt.Errorf("decode %s: %w", loc.URI, err)
	}
	return loadedMatrix{m: m, bytes: int64(len(data))}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (a *App) runScan(ctx context.Context, f scanFlags, s ScanConfig) error {
	lim, err := s.limits()
	if err != nil {
		return err
	}

	segLoc, err := a.resolver.Resolve(ctx, f.segmentation)
	if err != nil {
		return err
	}
	dataLoc, err := a.resolver.Resolve(ctx, f.data)
	if err != nil {
		return err
	}

	var seg, data loadedMatrix
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seg, err = loadMatrix(gctx, segLoc)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = loadMatrix(gctx, dataLoc)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	metrics := &megamerge.BasicMetricsCollector{}
	sc, err := megamerge.New(seg.m, data.m, s.Threshold,
		megamerge.WithWorkers(s.Workers),
		megamerge.WithChunkSize(s.ChunkSize),
		megamerge.WithMemoryLimit(lim.memory),
		megamerge.WithLogger(a.logger),
		megamerge.WithMetricsCollector(metrics),
	)
	if err != nil {
		return err
	}
	defer sc.Close()

	var (
		outLoc *Location
		out    io.WriteCloser
	)
	if f.out == "" || f.out == "-" {
		out = nopWriteCloser{a.Stdout}
	} else {
		loc, err := a.resolver.Resolve(ctx, f.out)
		if err != nil {
			return err
		}
		outLoc = &loc
		wb, err := blobstore.NewThrottledStore(loc.Store, lim.io).Create(ctx, loc.Name)
		if err != nil {
			return fmt.Errorf("create %s: %w", loc.URI, err)
		}
		out = wb
	}

	cw := &countingWriter{w: out}
	snk, err := sink.New(s.Format, cw, sink.Options{Compression: lim.compression})
	if err != nil {
		_ = blobstore.Abort(out)
		return err
	}

	start := time.Now()
	distinct := roaring64.New()
	batches := 0
	brokenPipe := false

	for _, b := range sc.All() {
		if err := snk.WriteBatch(b); err != nil {
			if sink.IsBrokenPipe(err) {
				brokenPipe = true
				break
			}
			_ = blobstore.Abort(out)
			return err
		}
		distinct.Or(b.IndexSet())
		batches++
		if s.Limit > 0 && batches >= s.Limit {
			break
		}
	}

	if err := snk.Close(); err != nil && !sink.IsBrokenPipe(err) {
		_ = blobstore.Abort(out)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	elapsed := time.Since(start)

	stats := metrics.GetStats()
	run := RunStats{
		Batches:        batches,
		Complete:       sc.Exhausted(),
		MatchedPairs:   stats.MatchedPairs,
		DistinctData:   int64(distinct.GetCardinality()),
		EmptyBatches:   stats.EmptyBatches,
		ElapsedNanos:   elapsed.Nanoseconds(),
		AdvanceAvgNano: stats.AdvanceAvgNanos,
	}

	a.logger.Info("scan finished",
		"batches", run.Batches,
		"segments", sc.Len(),
		"matched", run.MatchedPairs,
		"distinct_data", run.DistinctData,
		"output_bytes", units.HumanSize(float64(cw.n)),
		"elapsed", elapsed,
	)

	if brokenPipe || outLoc == nil {
		return nil
	}

	comp := ""
	if s.Format == "frame" {
		comp = lim.compression.String()
	}
	m := Manifest{
		Version:      ManifestVersion,
		CreatedAt:    time.Now().UTC(),
		Segmentation: Input{URI: segLoc.URI, Intervals: sc.Len(), Bytes: seg.bytes},
		Data:         Input{URI: dataLoc.URI, Intervals: sc.DataLen(), Bytes: data.bytes},
		Threshold:    s.Threshold,
		Output:       Output{URI: outLoc.URI, Format: s.Format, Compression: comp, Bytes: cw.n},
		Stats:        run,
	}

	manLoc := outLoc.Sibling(".manifest.json")
	if f.manifest != "" {
		if manLoc, err = a.resolver.Resolve(ctx, f.manifest); err != nil {
			return err
		}
	}
	if err := WriteManifest(ctx, manLoc, m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if s.CommitTable != "" {
		if err := a.commit(ctx, manLoc, s.CommitTable); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) commit(ctx context.Context, manLoc Location, table string) error {
	ddb, err := a.NewDDBClient(ctx, a.cfg.S3.Region)
	if err != nil {
		return err
	}
	store := s3.NewDDBCommitStore(manLoc.Store, ddb, table, manLoc.Base)
	version, err := store.Commit(ctx, manLoc.Name)
	if err != nil {
		return fmt.Errorf("commit %s: %w", manLoc.URI, err)
	}
	a.logger.Info("run committed", "table", table, "base", manLoc.Base, "version", version, "manifest", manLoc.Name)
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
