package application

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestStore_EmptyBatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.files.Store(context.Background(), f.store, UploadBatch{BasePath: BoardBasePath, BoardID: 1, OwnerID: "alice"})
	assert.ErrorIs(t, err, apperr.ErrNoFilesProvided)
}

func TestStore_ThreeFilesInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payloads := []Payload{
		NewPayload("a.txt", []byte("first")),
		NewPayload(`C:\Users\me\b.PNG`, pngHeader),
		NewPayload("c", []byte("third")),
	}

	res, err := f.files.Store(ctx, f.store, UploadBatch{BasePath: BoardBasePath, BoardID: 42, OwnerID: "alice", Payloads: payloads})
	require.NoError(t, err)
	require.True(t, res.Committed)
	require.Len(t, res.Attachments, 3)
	require.NotNil(t, res.FirstID)
	assert.Equal(t, res.Attachments[0].ID, *res.FirstID)

	assert.Equal(t, "a.txt", res.Attachments[0].DisplayName)
	assert.Equal(t, "b.PNG", res.Attachments[1].DisplayName)
	assert.Equal(t, "image/png", res.Attachments[1].ContentType)
	assert.True(t, strings.HasPrefix(res.Attachments[1].StoredPath, "board/42/"))
	assert.True(t, strings.HasSuffix(res.Attachments[1].StoredPath, ".png"))
	assert.Equal(t, int64(5), res.Attachments[2].Size)

	listed, err := f.files.ListByBoard(ctx, 42)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i := range listed {
		assert.Equal(t, res.Attachments[i].ID, listed[i].ID)
		assert.Equal(t, "alice", listed[i].CreatedBy)
	}
}

func TestStore_WriteFailureMidBatchCommitsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const n = 4
	f.files.Blobs = &flakyBlobs{BlobStore: f.blobs, failAt: n / 2}

	payloads := make([]Payload, n)
	for i := range payloads {
		payloads[i] = NewPayload(fmt.Sprintf("f%d.txt", i), []byte("data"))
	}
	_, err := f.files.Store(ctx, f.store, UploadBatch{BasePath: BoardBasePath, BoardID: 7, OwnerID: "alice", Payloads: payloads})
	require.ErrorIs(t, err, apperr.ErrStorageWriteFailed)

	listed, err := f.files.ListByBoard(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, listed)

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Len(t, entry.Data["orphans"], n/2-1)
}

func TestStore_MetadataFailureRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := failingFilesStore{Store: f.store, state: &failCounter{failAt: 2}}

	payloads := []Payload{NewPayload("a", []byte("1")), NewPayload("b", []byte("2")), NewPayload("c", []byte("3"))}
	_, err := f.files.Store(ctx, store, UploadBatch{BasePath: BoardBasePath, BoardID: 9, OwnerID: "alice", Payloads: payloads})
	require.ErrorIs(t, err, apperr.ErrMetadataCommitFailed)

	listed, err := f.files.ListByBoard(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, listed, "first insert rolled back with the failed one")

	// bytes stay behind as orphans
	entries, err := afero.ReadDir(f.fs, "board/9")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestUploadImage_URLCarriesFirstID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := &entity.Identity{UserID: "alice"}

	res, err := f.files.UploadImage(ctx, alice, []Payload{
		NewPayload("one.png", pngHeader), NewPayload("two.png", pngHeader), NewPayload("three.png", pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://board.test/api/file/imgDown.do?fileId="+strconv.FormatInt(res.FileID, 10), res.URL)

	imgs, err := f.files.ListByBoard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, imgs, 3)
	assert.Equal(t, imgs[0].ID, res.FileID)
	assert.True(t, strings.HasPrefix(imgs[0].StoredPath, "img/0/"))
}

func TestUploadImage_RequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.files.UploadImage(context.Background(), nil, []Payload{NewPayload("x.png", pngHeader)})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.files.Store(ctx, f.store, UploadBatch{BasePath: BoardBasePath, BoardID: 1, OwnerID: "alice",
		Payloads: []Payload{NewPayload("note.txt", []byte("hello"))}})
	require.NoError(t, err)

	dl, err := f.files.Open(ctx, *res.FirstID)
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "note.txt", dl.Attachment.DisplayName)
	assert.True(t, strings.HasPrefix(dl.Attachment.ContentType, "text/plain"))

	_, err = f.files.Open(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.fs.Remove(dl.Attachment.StoredPath))
	_, err = f.files.Open(ctx, *res.FirstID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDetectContentType_PrefersExtension(t *testing.T) {
	html := []byte("<html><body><script>alert(1)</script></body></html>")
	assert.Equal(t, "image/png", detectContentType(html, ".png"))
	assert.Equal(t, "image/png", detectContentType(pngHeader, ""))
	assert.True(t, strings.HasPrefix(detectContentType([]byte("plain words"), ""), "text/plain"))
}
