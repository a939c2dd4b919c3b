package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/internal/infrastructure/blob"
	"github.com/oksasatya/go-ddd-board/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

type fixture struct {
	store    *memory.Store
	sessions *memory.SessionStore
	blobs    *blob.FSStore
	fs       afero.Fs
	jobs     *recordingPublisher
	logs     *logtest.Hook
	logger   *logrus.Logger

	auth   *AuthService
	users  *UserService
	files  *FileService
	boards *BoardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	fs := afero.NewMemMapFs()
	f := &fixture{
		store:    memory.NewStore(),
		sessions: memory.NewSessionStore(),
		fs:       fs,
		blobs:    blob.NewFSStore(fs),
		jobs:     &recordingPublisher{},
		logs:     hook,
		logger:   logger,
	}
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	f.auth = NewAuthService(f.store.Users(), f.sessions, hasher, 30*time.Minute, logger)
	f.users = NewUserService(f.store.Users(), hasher, f.auth, f.jobs, "Board", logger)
	f.files = NewFileService(f.store, f.blobs, "http://board.test/", logger)
	f.boards = NewBoardService(f.store, f.files, f.jobs, logger)
	return f
}

// register creates an account and returns its identity.
func (f *fixture) register(t *testing.T, userID, email string) *entity.Identity {
	t.Helper()
	require.NoError(t, f.users.Register(context.Background(), RegisterInput{UserID: userID, Password: "pw123", Email: email}))
	return &entity.Identity{UserID: userID, Email: email}
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// flakyBlobs fails the failAt-th Put (1-based).
type flakyBlobs struct {
	repo.BlobStore
	mu     sync.Mutex
	calls  int
	failAt int
}

func (b *flakyBlobs) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	b.mu.Lock()
	b.calls++
	fail := b.calls == b.failAt
	b.mu.Unlock()
	if fail {
		return 0, errors.New("disk full")
	}
	return b.BlobStore.Put(ctx, name, r)
}

// failingFilesStore wraps a store so the failAt-th attachment insert fails.
type failingFilesStore struct {
	repo.Store
	state *failCounter
}

type failCounter struct {
	mu     sync.Mutex
	calls  int
	failAt int
}

func (s failingFilesStore) Files() repo.FileRepository {
	return failingFiles{FileRepository: s.Store.Files(), state: s.state}
}

func (s failingFilesStore) WithTx(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.WithTx(ctx, func(tx repo.Store) error {
		return fn(failingFilesStore{Store: tx, state: s.state})
	})
}

type failingFiles struct {
	repo.FileRepository
	state *failCounter
}

func (f failingFiles) Insert(ctx context.Context, a *entity.Attachment) error {
	f.state.mu.Lock()
	f.state.calls++
	fail := f.state.calls == f.state.failAt
	f.state.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return f.FileRepository.Insert(ctx, a)
}
