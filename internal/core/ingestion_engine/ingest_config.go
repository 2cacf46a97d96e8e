package ingestion_engine

// IngestConfig tunes the ingestion pipeline.
//
// MaxChunkChars: upper bound for a chunk (a single longer sentence may
//                exceed it, as its own chunk).
// EmbedBatch:    how many embedding calls run concurrently; a batch completes
//                or fails before the next one starts, bounding in-flight
//                requests against the hosted model's rate limits.
// EmbedDim:      expected vector width; must match the store's column.
type IngestConfig struct {
	MaxChunkChars int
	EmbedBatch    int
	EmbedDim      int
}

func (c *IngestConfig) withDefaults() IngestConfig {
	out := *c
	if out.MaxChunkChars <= 0 {
		out.MaxChunkChars = 500
	}
	if out.EmbedBatch <= 0 {
		out.EmbedBatch = 5
	}
	return out
}
