package cli

import (
	"context"
	"time"

	"github.com/hupe1980/megamerge/blobstore"
	"github.com/hupe1980/megamerge/codec"
)

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// Manifest describes one scan run. It is written next to the output.
type Manifest struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Segmentation Input     `json:"segmentation"`
	Data         Input     `json:"data"`
	Threshold    float64   `json:"threshold"`
	Output       Output    `json:"output"`
	Stats        RunStats  `json:"stats"`
}

// Input describes one input matrix.
type Input struct {
	URI       string `json:"uri"`
	Intervals int    `json:"intervals"`
	Bytes     int64  `json:"bytes"`
}

// Output describes the written result object.
type Output struct {
	URI         string `json:"uri"`
	Format      string `json:"format"`
	Compression string `json:"compression,omitempty"`
	Bytes       int64  `json:"bytes"`
}

// RunStats summarizes a run.
type RunStats struct {
	Batches        int   `json:"batches"`
	Complete       bool  `json:"complete"`
	MatchedPairs   int64 `json:"matched_pairs"`
	DistinctData   int64 `json:"distinct_data_intervals"`
	EmptyBatches   int64 `json:"empty_batches"`
	ElapsedNanos   int64 `json:"elapsed_nanos"`
	AdvanceAvgNano int64 `json:"advance_avg_nanos"`
}

// WriteManifest encodes m with the default codec and stores it.
func WriteManifest(ctx context.Context, loc Location, m Manifest) error {
	data, err := codec.Default.Marshal(m)
	if err != nil {
		return err
	}
	return loc.Store.Put(ctx, loc.Name, data)
}

// ReadManifest loads a manifest.
func ReadManifest(ctx context.Context, loc Location) (Manifest, error) {
	var m Manifest
	data, err := blobstore.ReadAll(ctx, loc.Store, loc.Name)
	if err != nil {
		return m, err
	}
	err = codec.Default.Unmarshal(data, &m)
	return m, err
}
