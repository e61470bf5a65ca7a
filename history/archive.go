package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/numspeak/objstore"
)

const archiveContentType = "application/x-ndjson"

// Archiver exports recent entries to an object store as JSON lines.
type Archiver struct {
	Store   Store
	Objects objstore.ObjectStore
	Bucket  string
	Now     func() time.Time
}

// Export writes up to limit recent entries to a new object and returns its
// name and the number of entries written.
func (a *Archiver) Export(ctx context.Context, limit int) (string, int, error) {
	if a == nil || a.Objects == nil {
		return "", 0, ErrNoArchive
	}

	entries, err := a.Store.Recent(ctx, limit)
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return "", 0, fmt.Errorf("encode history entry: %w", err)
		}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	name := ObjectName(now(), uuid.New())

	if err := a.Objects.Put(ctx, a.Bucket, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), archiveContentType); err != nil {
		return "", 0, err
	}
	return name, len(entries), nil
}

// ObjectName is history/<yyyy>/<mm>/<dd>/<id>.jsonl for t in UTC.
func ObjectName(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("history/%s/%s.jsonl", t.UTC().Format("2006/01/02"), id)
}
