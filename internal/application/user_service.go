package application

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-board/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-board/pkg/validation"
)

var inputValidator = validation.New()

// validateInput maps validator failures to the Validation kind.
func validateInput(in any) error {
	if err := inputValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperr.Wrap(apperr.KindValidation, "invalid input", verrs)
		}
		return apperr.Wrap(apperr.KindInternal, "validate input", err)
	}
	return nil
}

type RegisterInput struct {
	UserID    string `json:"userId" validate:"required,userid"`
	Password  string `json:"password" validate:"required,pwd"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Birthdate string `json:"birthdate" validate:"omitempty,birthdate"`
	Gender    string `json:"gender" validate:"omitempty,gender"`
}

// UpdateUserInput replaces the profile fields. An empty Password keeps the
// current hash.
type UpdateUserInput struct {
	UserID    string `json:"userId" validate:"required"`
	Password  string `json:"password" validate:"omitempty,pwd"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Birthdate string `json:"birthdate" validate:"omitempty,birthdate"`
	Gender    string `json:"gender" validate:"omitempty,gender"`
}

type UserService struct {
	Users    repo.UserRepository
	Hasher   PasswordHasher
	Sessions SessionTerminator
	Jobs     JobPublisher
	AppName  string
	Logger   *logrus.Logger
}

func NewUserService(users repo.UserRepository, hasher PasswordHasher, sessions SessionTerminator, jobs JobPublisher, appName string, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:    users,
		Hasher:   hasher,
		Sessions: sessions,
		Jobs:     jobs,
		AppName:  appName,
		Logger:   logger,
	}
}

// CheckUserID reports whether userID is taken. Soft-deleted ids count as taken.
func (s *UserService) CheckUserID(ctx context.Context, userID string) (bool, error) {
	exists, err := s.Users.ExistsUserID(ctx, userID)
	if err != nil {
		return false, apperr.Persistence("check user id", err)
	}
	return exists, nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	exists, err := s.CheckUserID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.ErrDuplicateIdentity
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	u := &entity.User{
		UserID:       in.UserID,
		PasswordHash: hash,
		Email:        in.Email,
		Birthdate:    in.Birthdate,
		Gender:       in.Gender,
		State:        entity.StateActive,
		CreatedBy:    entity.SystemActor,
		UpdatedBy:    entity.SystemActor,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return apperr.ErrDuplicateIdentity
		}
		return apperr.Persistence("create user", err)
	}
	metricRegistrations.Add(1)
	s.Logger.WithField("user_id", u.UserID).Info("user registered")

	if u.Email != "" {
		s.enqueue(ctx, mailer.EmailJob{
			To:       u.Email,
			Template: mailtpl.Welcome,
			Data:     mailtpl.ToMap(mailtpl.EmailData{UserID: u.UserID, Email: u.Email, AppName: s.AppName, TimeAt: time.Now().UTC()}),
		})
	}
	return nil
}

// enqueue is best-effort: a broker failure never fails the request.
func (s *UserService) enqueue(ctx context.Context, job mailer.EmailJob) {
	if s.Jobs == nil {
		return
	}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
	}
}

// Profile returns the caller's own record with the hash cleared.
func (s *UserService) Profile(ctx context.Context, id *entity.Identity) (*entity.User, error) {
	if err := Authenticated(id); err != nil {
		return nil, err
	}
	u, err := s.activeUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id *entity.Identity, in UpdateUserInput) error {
	if err := Authorize(id, in.UserID); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	u, err := s.activeUser(ctx, in.UserID)
	if err != nil {
		return err
	}
	if in.Password != "" {
		hash, err := s.Hasher.Hash(in.Password)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "hash password", err)
		}
		u.PasswordHash = hash
	}
	u.Email, u.Birthdate, u.Gender = in.Email, in.Birthdate, in.Gender
	u.UpdatedBy = id.UserID

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.Persistence("update user", err)
	}
	return nil
}

// Delete soft-deletes the account and ends every session bound to it.
func (s *UserService) Delete(ctx context.Context, id *entity.Identity, userID string) error {
	if err := Authorize(id, userID); err != nil {
		return err
	}
	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.State.MarkDeleted(); err != nil {
		return apperr.ErrNotFound
	}
	// Sessions go first so a session store failure leaves the account intact.
	if err := s.Sessions.TerminateAll(ctx, userID); err != nil {
		return err
	}
	if err := s.Users.SoftDelete(ctx, userID, id.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.Persistence("delete user", err)
	}
	// catches logins that slipped in between the two steps
	if err := s.Sessions.TerminateAll(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("terminate sessions after delete failed")
		return err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "by": id.UserID}).Info("user deleted")
	return nil
}

func (s *UserService) activeUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Persistence("load user", err)
	}
	if !u.State.IsActive() {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}
