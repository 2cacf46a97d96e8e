package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/models"
)

// Ingestor turns an uploaded document into a complete, queryable set of
// chunks exactly once per successful run.
type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string) error
	ProcessOne(ctx context.Context, docID string) error
}

// DocumentIngestor drives download → extract → chunk → embed → store for one
// document at a time per worker. Documents are disjoint key spaces, so
// concurrent runs over different documents need no coordination.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor DocumentExtractor
	cfg       IngestConfig
	jobs      chan string
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, extractor DocumentExtractor, cfg *IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, embedder: emb, extractor: extractor,
		cfg:  cfg.withDefaults(),
		jobs: make(chan string, 64),
	}
}

// Start runs worker goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("ingestor: worker %d shutting down", w)
					return
				case docID := <-i.jobs:
					log.Printf("ingestor: worker %d processing document %s", w, docID)
					if err := i.ProcessOne(ctx, docID); err != nil {
						log.Printf("ingestor: document %s failed: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion without blocking. A full
// queue is reported to the caller rather than stalling the upload path; the
// document stays in its current status and can be re-queued later.
func (i *DocumentIngestor) Enqueue(docID string) error {
	select {
	case i.jobs <- docID:
		return nil
	default:
		return fmt.Errorf("ingestion queue is full")
	}
}

// ProcessOne ingests a single document. Any prior partial chunks are cleared
// first, so re-running after a failed attempt is idempotent. On failure the
// document ends in the failed state and is never marked ready; chunks
// persisted by completed batches of this attempt remain until the next run
// cleans them up.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	proctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	doc, err := i.db.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", docID)
	}

	fail := func(cause error) error {
		if err := i.db.UpdateDocumentStatus(ctx, docID, models.StatusFailed); err != nil {
			log.Printf("ingestor: could not mark document %s failed: %v", docID, err)
		}
		return cause
	}

	_ = i.db.UpdateDocumentStatus(proctx, docID, models.StatusExtracting)

	bucket, key := ParseS3URL(doc.StorageURL)
	data, err := i.obj.GetFile(proctx, bucket, key)
	if err != nil {
		return fail(fmt.Errorf("download document: %w", err))
	}

	pages, err := i.extractor.ExtractPages(proctx, data, doc.ContentType)
	if err != nil {
		return fail(err)
	}

	_ = i.db.UpdateDocumentStatus(proctx, docID, models.StatusChunking)

	chunks := ChunkPages(pages, i.cfg.MaxChunkChars)
	if len(chunks) == 0 {
		return fail(&errs.ExtractionError{Reason: "no text content found"})
	}
	if err := i.db.SetDocumentPageCount(proctx, docID, lastPage(pages)); err != nil {
		return fail(fmt.Errorf("record page count: %w", err))
	}

	// Clear rows from any earlier attempt before inserting this one.
	if err := i.db.DeleteChunksByDocument(proctx, docID); err != nil {
		return fail(fmt.Errorf("clear stale chunks: %w", err))
	}

	_ = i.db.UpdateDocumentStatus(proctx, docID, models.StatusEmbedding)

	persisted := 0
	for start := 0; start < len(chunks); start += i.cfg.EmbedBatch {
		end := start + i.cfg.EmbedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vecs := make([][]float32, len(batch))
		g, gctx := errgroup.WithContext(proctx)
		for j := range batch {
			j := j
			g.Go(func() error {
				vec, err := i.embedder.EmbedText(gctx, batch[j].Text)
				if err != nil {
					return err
				}
				vecs[j] = vec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fail(&errs.PartialIngestionFailure{
				DocumentID: docID, ChunksPersisted: persisted, Err: err,
			})
		}

		rows := make([]models.DocumentChunk, len(batch))
		for j := range batch {
			rows[j] = models.DocumentChunk{
				ID:         uuid.NewString(),
				DocumentID: docID,
				UserID:     doc.UserID,
				ChunkIndex: batch[j].Index,
				PageNumber: batch[j].Page,
				Text:       batch[j].Text,
				Embedding:  vecs[j],
			}
		}
		if err := i.db.InsertDocumentChunks(proctx, rows); err != nil {
			return fail(&errs.PartialIngestionFailure{
				DocumentID: docID, ChunksPersisted: persisted, Err: err,
			})
		}
		persisted += len(batch)
	}

	log.Printf("ingestor: document %s stored %d chunks from %d pages", docID, persisted, len(pages))
	return i.db.UpdateDocumentStatus(proctx, docID, models.StatusReady)
}

func lastPage(pages []PageText) int {
	if len(pages) == 0 {
		return 0
	}
	return pages[len(pages)-1].Page
}

// ParseS3URL extracts the bucket and key from a typical virtual-hosted style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func ParseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

var _ Ingestor = (*DocumentIngestor)(nil)
