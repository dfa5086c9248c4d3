package megamerge_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/megamerge"
	"github.com/hupe1980/megamerge/matrix"
)

// Example demonstrates scanning a data set against a segmentation.
func Example() {
	seg, _ := matrix.FromRows([][]float64{{0, 10}, {10, 20}})
	data, _ := matrix.FromRows([][]float64{{5, 15}, {20, 30}, {12, 14}})

	sc, err := megamerge.New(seg, data, 0)
	if err != nil {
		log.Fatal(err)
	}
	defer sc.Close()

	for i, batch := range sc.All() {
		for _, r := range batch.Results {
			fmt.Printf("segment %d: data %d overlap %.1f (%.2f of data, %.2f of segment)\n",
				i, r.DataIndex, r.Overlap, r.OverDataLength, r.OverSegmentLength)
		}
	}
	// Output:
	// segment 0: data 0 overlap 5.0 (0.50 of data, 0.50 of segment)
	// segment 1: data 0 overlap 5.0 (0.50 of data, 0.50 of segment)
	// segment 1: data 2 overlap 2.0 (1.00 of data, 0.20 of segment)
}

// ExampleScanner_Next demonstrates the explicit cursor API.
func ExampleScanner_Next() {
	seg, _ := matrix.FromRows([][]float64{{0, 10}})
	data, _ := matrix.FromRows([][]float64{{5, 15}})

	sc, err := megamerge.New(seg, data, 5, megamerge.WithWorkers(1))
	if err != nil {
		log.Fatal(err)
	}
	defer sc.Close()

	for {
		batch, ok := sc.Next()
		if !ok {
			fmt.Println("exhausted")
			break
		}
		fmt.Printf("segment %d: %d matches\n", batch.Segment, batch.Len())
	}
	// Output:
	// segment 0: 0 matches
	// exhausted
}
