package history_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/remiges-tech/numspeak/calc"
	"github.com/remiges-tech/numspeak/history"
	"github.com/remiges-tech/numspeak/numwords"
	"github.com/remiges-tech/numspeak/objstore"
	"github.com/remiges-tech/numspeak/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(expr string, at time.Time) history.Entry {
	e := history.NewEntry(transcript.Build(expr, numwords.International, calc.Evaluator{}), "international", "asha")
	e.CreatedAt = at
	return e
}

func TestNewEntry(t *testing.T) {
	tr := transcript.Build("100000×12", numwords.Indian, calc.Evaluator{})
	e := history.NewEntry(tr, "indian", "ravi")

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "100000×12", e.Expression)
	assert.Equal(t, "1200000", e.Result)
	assert.Equal(t, "one lakh times twelve is twelve lakh", e.Words)
	assert.Equal(t, "indian", e.System)
	assert.Equal(t, "ravi", e.User)
	assert.WithinDuration(t, time.Now(), e.CreatedAt, time.Minute)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, history.DefaultLimit, history.ClampLimit(0))
	assert.Equal(t, history.DefaultLimit, history.ClampLimit(-5))
	assert.Equal(t, 7, history.ClampLimit(7))
	assert.Equal(t, history.MaxLimit, history.ClampLimit(1000))
}

func TestNopStore(t *testing.T) {
	var s history.Store = history.NopStore{}
	require.NoError(t, s.Add(context.Background(), entry("1+1", time.Now())))
	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func newRedisStore(t *testing.T, size int) (*history.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return history.NewRedisStore(client, size), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, 3)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Add(ctx, entry(fmt.Sprintf("%d+%d", i, i), base.Add(time.Duration(i)*time.Minute))))
	}

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3, "list is capped at Size")
	assert.Equal(t, "5+5", entries[0].Expression, "newest first")
	assert.Equal(t, "10", entries[0].Result)
	assert.Equal(t, "3+3", entries[2].Expression)

	entries, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, base.Add(5*time.Minute), entries[0].CreatedAt)
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	store, mr := newRedisStore(t, 10)
	_, err := mr.Lpush(store.Key, "not json")
	require.NoError(t, err)

	_, err = store.Recent(context.Background(), 10)
	assert.Error(t, err)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t, 10)
	mr.Close()

	assert.Error(t, store.Add(context.Background(), entry("1+1", time.Now())))
	_, err := store.Recent(context.Background(), 10)
	assert.Error(t, err)
}

func TestArchiverExport(t *testing.T) {
	store, _ := newRedisStore(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Add(ctx, entry("2+2", base)))
	require.NoError(t, store.Add(ctx, entry("7×6", base.Add(time.Minute))))

	mock, objects := objstore.NewMemoryObjectStoreMock()
	archiver := &history.Archiver{
		Store:   store,
		Objects: mock,
		Bucket:  "numspeak",
		Now:     func() time.Time { return base },
	}

	name, n, err := archiver.Export(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, strings.HasPrefix(name, "history/2026/03/01/"), name)
	assert.True(t, strings.HasSuffix(name, ".jsonl"), name)

	data, ok := objects["numspeak/"+name]
	require.True(t, ok)

	var lines []history.Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var e history.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		lines = append(lines, e)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "7×6", lines[0].Expression)
	assert.Equal(t, "seven times six is forty two", lines[0].Words)
}

func TestArchiverWithoutObjectStore(t *testing.T) {
	_, _, err := (&history.Archiver{Store: history.NopStore{}}).Export(context.Background(), 10)
	assert.ErrorIs(t, err, history.ErrNoArchive)

	var nilArchiver *history.Archiver
	_, _, err = nilArchiver.Export(context.Background(), 10)
	assert.ErrorIs(t, err, history.ErrNoArchive)
}

func TestArchiverPutFails(t *testing.T) {
	archiver := &history.Archiver{
		Store: history.NopStore{},
		Objects: &objstore.ObjectStoreMock{
			PutFunc: func(context.Context, string, string, io.Reader, int64, string) error {
				return errors.New("bucket missing")
			},
		},
		Bucket: "numspeak",
	}
	_, _, err := archiver.Export(context.Background(), 10)
	assert.EqualError(t, err, "bucket missing")
}

func TestObjectName(t *testing.T) {
	id := uuid.MustParse("6f1c1f0e-8d5a-4b8e-9a4f-3d2b1c0a9e8d")
	at := time.Date(2026, 12, 31, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "history/2026/12/31/6f1c1f0e-8d5a-4b8e-9a4f-3d2b1c0a9e8d.jsonl", history.ObjectName(at, id))
}
