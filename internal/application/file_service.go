package application

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

const (
	BoardBasePath = "board"
	ImageBasePath = "img"

	// boardless uploads (editor images) are filed under board 0
	imageBoardID = 0

	sniffLen = 3072
)

// Payload is one uploaded file. Open may be called once.
type Payload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

func NewPayload(name string, data []byte) Payload {
	return Payload{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

type UploadBatch struct {
	BasePath string
	BoardID  int64
	OwnerID  string
	Payloads []Payload
}

type UploadResult struct {
	Committed   bool
	Attachments []entity.Attachment
	FirstID     *int64
}

type Download struct {
	Attachment entity.Attachment
	Body       io.ReadCloser
}

type ImageUploadResult struct {
	FileID int64  `json:"fileId"`
	URL    string `json:"url"`
}

// FileService writes attachment bytes to blob storage and their metadata
// rows to the store.
type FileService struct {
	db         repo.Store
	Blobs      repo.BlobStore
	APIBaseURL string
	Logger     *logrus.Logger
}

func NewFileService(db repo.Store, blobs repo.BlobStore, apiBaseURL string, logger *logrus.Logger) *FileService {
	return &FileService{db: db, Blobs: blobs, APIBaseURL: strings.TrimRight(apiBaseURL, "/"), Logger: logger}
}

// Store writes every payload, then inserts all metadata rows in one
// transaction on store (joining it when store is already transactional).
// Either every row commits or none does; bytes written before a failure are
// left behind and logged.
func (s *FileService) Store(ctx context.Context, store repo.Store, batch UploadBatch) (UploadResult, error) {
	if len(batch.Payloads) == 0 {
		return UploadResult{}, apperr.ErrNoFilesProvided
	}

	atts := make([]entity.Attachment, 0, len(batch.Payloads))
	for _, p := range batch.Payloads {
		a, err := s.write(ctx, batch, p)
		if err != nil {
			metricUploadFailures.Add(1)
			s.logOrphans(batch, atts, err)
			return UploadResult{}, apperr.Wrap(apperr.KindStorageWriteFailed, "write "+p.Name, err)
		}
		atts = append(atts, a)
	}

	err := store.WithTx(ctx, func(tx repo.Store) error {
		for i := range atts {
			if err := tx.Files().Insert(ctx, &atts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metricUploadFailures.Add(1)
		s.logOrphans(batch, atts, err)
		return UploadResult{}, apperr.Wrap(apperr.KindMetadataCommitFailed, "insert file metadata", err)
	}

	metricFilesStored.Add(int64(len(atts)))
	first := atts[0].ID
	return UploadResult{Committed: true, Attachments: atts, FirstID: &first}, nil
}

func (s *FileService) write(ctx context.Context, batch UploadBatch, p Payload) (entity.Attachment, error) {
	display := displayName(p.Name)
	ext := strings.ToLower(path.Ext(display))
	stored := path.Join(batch.BasePath, strconv.FormatInt(batch.BoardID, 10), uuid.NewString()+ext)

	if p.Open == nil {
		return entity.Attachment{}, errors.New("payload has no content")
	}
	rc, err := p.Open()
	if err != nil {
		return entity.Attachment{}, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return entity.Attachment{}, err
	}

	n, err := s.Blobs.Put(ctx, stored, br)
	if err != nil {
		return entity.Attachment{}, err
	}
	return entity.Attachment{
		BoardID:     batch.BoardID,
		StoredPath:  stored,
		DisplayName: display,
		ContentType: detectContentType(head, ext),
		Size:        n,
		CreatedBy:   batch.OwnerID,
		UpdatedBy:   batch.OwnerID,
	}, nil
}

// displayName strips any client-side directory, including Windows paths.
func displayName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "file"
	}
	return name
}

// detectContentType trusts the stored extension first. Content is only
// sniffed for names without a known extension.
func detectContentType(head []byte, ext string) string {
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return mimetype.Detect(head).String()
}

func (s *FileService) logOrphans(batch UploadBatch, written []entity.Attachment, cause error) {
	if len(written) == 0 {
		return
	}
	paths := make([]string, len(written))
	for i, a := range written {
		paths[i] = a.StoredPath
	}
	s.Logger.WithError(cause).WithFields(logrus.Fields{
		"board_id": batch.BoardID,
		"owner":    batch.OwnerID,
		"orphans":  paths,
	}).Warn("upload aborted; stored bytes left without metadata")
}

func (s *FileService) Get(ctx context.Context, fileID int64) (*entity.Attachment, error) {
	a, err := s.db.Files().GetByID(ctx, fileID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Persistence("load file", err)
	}
	return a, nil
}

// Open returns the attachment with its bytes. The caller closes Body.
func (s *FileService) Open(ctx context.Context, fileID int64) (*Download, error) {
	a, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	body, err := s.Blobs.Open(ctx, a.StoredPath)
	if errors.Is(err, repo.ErrBlobNotExist) {
		s.Logger.WithFields(logrus.Fields{"file_id": fileID, "path": a.StoredPath}).Warn("file row without bytes")
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "open file", err)
	}
	return &Download{Attachment: *a, Body: body}, nil
}

func (s *FileService) ListByBoard(ctx context.Context, boardID int64) ([]entity.Attachment, error) {
	files, err := s.db.Files().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, apperr.Persistence("list files", err)
	}
	return files, nil
}

// UploadImage stores editor images that are not yet bound to a post and
// returns the retrieval URL of the first one.
func (s *FileService) UploadImage(ctx context.Context, id *entity.Identity, payloads []Payload) (*ImageUploadResult, error) {
	if err := Authenticated(id); err != nil {
		return nil, err
	}
	res, err := s.Store(ctx, s.db, UploadBatch{
		BasePath: ImageBasePath,
		BoardID:  imageBoardID,
		OwnerID:  id.UserID,
		Payloads: payloads,
	})
	if err != nil {
		return nil, err
	}
	return &ImageUploadResult{FileID: *res.FirstID, URL: s.ImageURL(*res.FirstID)}, nil
}

func (s *FileService) ImageURL(fileID int64) string {
	return s.APIBaseURL + "/api/file/imgDown.do?fileId=" + strconv.FormatInt(fileID, 10)
}
