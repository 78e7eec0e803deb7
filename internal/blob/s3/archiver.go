package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// archiveBatchLimit caps how many rows one archive pass exports per table.
const archiveBatchLimit = 10000

// BlobWriter is the upload capability the archiver needs.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver queries the domain stores for old records, serializes them to
// JSONL, and uploads the result to object storage.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here; that is a separate, explicit step to be executed after
// the archive has been verified.
type Archiver struct {
	writer        BlobWriter
	opportunities domain.OpportunityStore
	orders        domain.OrderStore
	imbalances    domain.ImbalanceStore
	logger        *slog.Logger
}

// NewArchiver creates a new Archiver.
func NewArchiver(
	writer BlobWriter,
	opportunities domain.OpportunityStore,
	orders domain.OrderStore,
	imbalances domain.ImbalanceStore,
	logger *slog.Logger,
) *Archiver {
	return &Archiver{
		writer:        writer,
		opportunities: opportunities,
		orders:        orders,
		imbalances:    imbalances,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveAll exports opportunities, orders, and imbalances older than the
// cutoff. It returns the total number of records uploaded.
func (a *Archiver) ArchiveAll(ctx context.Context, before time.Time) (int64, error) {
	var total int64

	n, err := a.ArchiveOpportunities(ctx, before)
	if err != nil {
		return total, err
	}
	total += n

	n, err = a.ArchiveOrders(ctx, before)
	if err != nil {
		return total, err
	}
	total += n

	n, err = a.ArchiveImbalances(ctx, before)
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}

// ArchiveOpportunities uploads opportunities older than the cutoff to
// archive/opportunities/YYYY-MM.jsonl.
func (a *Archiver) ArchiveOpportunities(ctx context.Context, before time.Time) (int64, error) {
	records, err := a.opportunities.ListBefore(ctx, before, archiveBatchLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities query: %w", err)
	}
	return upload(ctx, a, "opportunities", before, records)
}

// ArchiveOrders uploads orders older than the cutoff to
// archive/orders/YYYY-MM.jsonl.
func (a *Archiver) ArchiveOrders(ctx context.Context, before time.Time) (int64, error) {
	records, err := a.orders.ListBefore(ctx, before, archiveBatchLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders query: %w", err)
	}
	return upload(ctx, a, "orders", before, records)
}

// ArchiveImbalances uploads imbalance records older than the cutoff to
// archive/imbalances/YYYY-MM.jsonl.
func (a *Archiver) ArchiveImbalances(ctx context.Context, before time.Time) (int64, error) {
	records, err := a.imbalances.ListBefore(ctx, before, archiveBatchLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive imbalances query: %w", err)
	}
	return upload(ctx, a, "imbalances", before, records)
}

func upload[T any](ctx context.Context, a *Archiver, kind string, before time.Time, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive %s marshal: %w", kind, err)
	}

	path := archivePath(kind, before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive %s upload: %w", kind, err)
	}

	count := int64(len(records))
	a.logger.InfoContext(ctx, "archive uploaded",
		slog.String("path", path),
		slog.Int64("count", count),
	)
	return count, nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/opportunities/2026-01.jsonl
//	archive/orders/2026-01.jsonl
//	archive/imbalances/2026-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
