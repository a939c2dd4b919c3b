package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-board/pkg/mailer/templates"
)

type BoardInput struct {
	ID            int64
	Title         string `validate:"required,max=200"`
	Content       string
	RemoveFileIDs []int64
}

type CommentInput struct {
	ID      int64
	BoardID int64
	Content string `validate:"required"`
}

// BoardDetail is a post with its active attachments.
type BoardDetail struct {
	Board entity.Board
	Files []entity.Attachment
}

// BoardService is the write path for posts and comments. Concurrent updates
// of one row are last-write-wins.
type BoardService struct {
	db     repo.Store
	Files  *FileService
	Users  repo.UserRepository
	Jobs   JobPublisher
	Logger *logrus.Logger
}

func NewBoardService(db repo.Store, files *FileService, jobs JobPublisher, logger *logrus.Logger) *BoardService {
	return &BoardService{db: db, Files: files, Users: db.Users(), Jobs: jobs, Logger: logger}
}

func (s *BoardService) Get(ctx context.Context, boardID int64) (*BoardDetail, error) {
	b, err := s.loadBoard(ctx, s.db, boardID)
	if err != nil {
		return nil, err
	}
	files, err := s.Files.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return &BoardDetail{Board: *b, Files: files}, nil
}

// Create inserts the post and its attachments in one transaction.
func (s *BoardService) Create(ctx context.Context, id *entity.Identity, in BoardInput, payloads []Payload) (*entity.Board, error) {
	if err := Authenticated(id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	b := &entity.Board{
		Title:     in.Title,
		Content:   in.Content,
		CreatedBy: id.UserID,
		UpdatedBy: id.UserID,
	}
	err := s.db.WithTx(ctx, func(tx repo.Store) error {
		if err := tx.Boards().Create(ctx, b); err != nil {
			return apperr.Persistence("create board", err)
		}
		return s.attach(ctx, tx, b.ID, id.UserID, payloads)
	})
	if err != nil {
		return nil, err
	}
	metricPostsWritten.Add(1)
	s.Logger.WithFields(logrus.Fields{"board_id": b.ID, "user_id": id.UserID, "files": len(payloads)}).Info("board created")
	return b, nil
}

// Update rewrites title and content, drops RemoveFileIDs and stores new
// payloads, all in one transaction.
func (s *BoardService) Update(ctx context.Context, id *entity.Identity, in BoardInput, payloads []Payload) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	err := s.db.WithTx(ctx, func(tx repo.Store) error {
		b, err := s.loadBoard(ctx, tx, in.ID)
		if err != nil {
			return err
		}
		if err := Authorize(id, b.CreatedBy); err != nil {
			return err
		}
		b.Title, b.Content, b.UpdatedBy = in.Title, in.Content, id.UserID
		if err := tx.Boards().Update(ctx, b); err != nil {
			return notFoundOr(err, "update board")
		}
		for _, fid := range in.RemoveFileIDs {
			if err := tx.Files().SoftDelete(ctx, fid, b.ID, id.UserID); err != nil {
				return notFoundOr(err, "remove file")
			}
		}
		return s.attach(ctx, tx, b.ID, id.UserID, payloads)
	})
	if err != nil {
		return err
	}
	metricPostsWritten.Add(1)
	return nil
}

// Delete soft-deletes the post with its comments and attachments.
func (s *BoardService) Delete(ctx context.Context, id *entity.Identity, boardID int64) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx repo.Store) error {
		b, err := s.loadBoard(ctx, tx, boardID)
		if err != nil {
			return err
		}
		if err := Authorize(id, b.CreatedBy); err != nil {
			return err
		}
		if err := b.State.MarkDeleted(); err != nil {
			return apperr.ErrNotFound
		}
		if err := tx.Boards().SoftDelete(ctx, boardID, id.UserID); err != nil {
			return notFoundOr(err, "delete board")
		}
		if _, err := tx.Comments().SoftDeleteByBoard(ctx, boardID, id.UserID); err != nil {
			return apperr.Persistence("delete comments", err)
		}
		if _, err := tx.Files().SoftDeleteByBoard(ctx, boardID, id.UserID); err != nil {
			return apperr.Persistence("delete files", err)
		}
		return nil
	})
}

func (s *BoardService) CreateComment(ctx context.Context, id *entity.Identity, in CommentInput) (*entity.Comment, error) {
	if err := Authenticated(id); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c := &entity.Comment{BoardID: in.BoardID, Content: in.Content, CreatedBy: id.UserID, UpdatedBy: id.UserID}
	var board *entity.Board
	err := s.db.WithTx(ctx, func(tx repo.Store) error {
		b, err := s.loadBoard(ctx, tx, in.BoardID)
		if err != nil {
			return err
		}
		board = b
		return apperr.Persistence("create comment", tx.Comments().Create(ctx, c))
	})
	if err != nil {
		return nil, err
	}
	if board.CreatedBy != id.UserID {
		s.notifyOwner(ctx, board, c)
	}
	return c, nil
}

func (s *BoardService) UpdateComment(ctx context.Context, id *entity.Identity, in CommentInput) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx repo.Store) error {
		c, err := s.loadComment(ctx, tx, in.ID)
		if err != nil {
			return err
		}
		if err := Authorize(id, c.CreatedBy); err != nil {
			return err
		}
		c.Content, c.UpdatedBy = in.Content, id.UserID
		return notFoundOr(tx.Comments().Update(ctx, c), "update comment")
	})
}

func (s *BoardService) DeleteComment(ctx context.Context, id *entity.Identity, commentID int64) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx repo.Store) error {
		c, err := s.loadComment(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if err := Authorize(id, c.CreatedBy); err != nil {
			return err
		}
		return notFoundOr(tx.Comments().SoftDelete(ctx, commentID, id.UserID), "delete comment")
	})
}

func (s *BoardService) attach(ctx context.Context, tx repo.Store, boardID int64, owner string, payloads []Payload) error {
	if len(payloads) == 0 {
		return nil
	}
	_, err := s.Files.Store(ctx, tx, UploadBatch{
		BasePath: BoardBasePath,
		BoardID:  boardID,
		OwnerID:  owner,
		Payloads: payloads,
	})
	return err
}

// notifyOwner runs after commit and never fails the request.
func (s *BoardService) notifyOwner(ctx context.Context, b *entity.Board, c *entity.Comment) {
	if s.Jobs == nil {
		return
	}
	owner, err := s.Users.GetByUserID(ctx, b.CreatedBy)
	if err != nil || owner.Email == "" || !owner.State.IsActive() {
		return
	}
	job := mailer.EmailJob{
		To:       owner.Email,
		Template: mailtpl.CommentNotification,
		Data: mailtpl.ToMap(mailtpl.EmailData{
			UserID:     owner.UserID,
			Email:      owner.Email,
			BoardID:    b.ID,
			BoardTitle: b.Title,
			Commenter:  c.CreatedBy,
			Comment:    c.Content,
			BoardURL:   s.Files.APIBaseURL + "/api/board/view.do?boardId=" + strconv.FormatInt(b.ID, 10),
			TimeAt:     time.Now().UTC(),
		}),
	}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("board_id", b.ID).Warn("enqueue comment notification failed")
	}
}

func (s *BoardService) loadBoard(ctx context.Context, store repo.Store, boardID int64) (*entity.Board, error) {
	b, err := store.Boards().GetByID(ctx, boardID)
	if err != nil {
		return nil, notFoundOr(err, "load board")
	}
	return b, nil
}

func (s *BoardService) loadComment(ctx context.Context, store repo.Store, commentID int64) (*entity.Comment, error) {
	c, err := store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "load comment")
	}
	return c, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.ErrNotFound
	}
	return apperr.Persistence(msg, err)
}
