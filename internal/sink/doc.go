// Package sink writes scan batches to an output stream in one of the
// registered formats (tsv, jsonl, frame).
package sink
