package application

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/config"
	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	repo "github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
	"github.com/oksasatya/go-task-manager/pkg/mailer"
	"github.com/oksasatya/go-task-manager/pkg/mailer/templates"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

var (
	registrations = expvar.NewInt("users_registered")
	logins        = expvar.NewInt("users_logged_in")
	logouts       = expvar.NewInt("users_logged_out")
)

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is a user together with the token just issued for it.
type Session struct {
	User  *entity.User
	Token string
}

type UserService struct {
	Store    *CredentialStore
	Tokens   TokenIssuer
	Pictures repo.PictureStore
	// TaskIndex is optional; when set the user's tasks are dropped from it on delete.
	TaskIndex TaskIndex
	Notifier  mailer.Notifier
	Cfg       *config.Config
	Logger    *logrus.Logger
}

func NewUserService(store *CredentialStore, tokens TokenIssuer, pictures repo.PictureStore, index TaskIndex, notifier mailer.Notifier, cfg *config.Config, logger *logrus.Logger) *UserService {
	if notifier == nil {
		notifier = mailer.NopNotifier{}
	}
	return &UserService{
		Store:     store,
		Tokens:    tokens,
		Pictures:  pictures,
		TaskIndex: index,
		Notifier:  notifier,
		Cfg:       cfg,
		Logger:    logger,
	}
}

// Register creates the user together with its first session token, then
// sends the welcome email.
func (s *UserService) Register(ctx context.Context, in NewUserInput) (*Session, error) {
	u, token, err := s.Store.CreateWithToken(ctx, in, s.Tokens.Issue)
	if err != nil {
		return nil, err
	}
	registrations.Add(1)

	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data:     templates.NewWelcomeData(s.Cfg, u.Name, u.Email, templates.WithTime(time.Now())),
	}, u.ID)

	return &Session{User: u, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Store.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sess, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	logins.Add(1)
	return sess, nil
}

// startSession issues a token and appends it to the user's token list.
func (s *UserService) startSession(ctx context.Context, u *entity.User) (*Session, error) {
	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, err
	}
	if err := s.Store.AppendToken(ctx, u.ID, token); err != nil {
		return nil, err
	}
	u.Tokens = append(u.Tokens, token)
	return &Session{User: u, Token: token}, nil
}

// Logout revokes only the token the request was authenticated with.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.Store.RemoveToken(ctx, userID, token); err != nil {
		return err
	}
	logouts.Add(1)
	return nil
}

// LogoutAll revokes every session of the user. Calling it again is a no-op.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.Store.ClearTokens(ctx, userID); err != nil {
		return err
	}
	logouts.Add(1)
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Store.Get(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, fields map[string]json.RawMessage) (*entity.User, error) {
	return s.Store.Update(ctx, userID, fields)
}

// Delete removes the account and every task it owns. Picture, index and
// email cleanup run after the cascade and only log on failure.
func (s *UserService) Delete(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Store.DeleteCascade(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.Pictures != nil {
		if err := s.Pictures.Delete(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("delete profile picture failed")
		}
	}
	if s.TaskIndex != nil {
		if err := s.TaskIndex.RemoveOwner(ctx, userID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("remove tasks from search index failed")
		}
	}
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.AccountDeleted,
		Data:     templates.NewAccountDeletedData(s.Cfg, u.Name, u.Email, templates.WithTime(time.Now())),
	}, u.ID)

	return u, nil
}

// UploadPicture resizes the image to a 250x250 PNG and stores it.
func (s *UserService) UploadPicture(ctx context.Context, userID string, r io.Reader) error {
	data, err := helpers.ResizeProfilePicture(r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Debug("profile picture rejected")
		}
		return validation.NewError("profile-pic", "image", "must be a valid image")
	}
	if err := s.Pictures.Put(ctx, userID, data); err != nil {
		return translateStoreError(err)
	}
	return nil
}

// GetPicture returns the PNG for userID. A malformed id fails before any lookup.
func (s *UserService) GetPicture(ctx context.Context, userID string) ([]byte, error) {
	if err := CheckID(userID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Get(ctx, userID); err != nil {
		return nil, err
	}
	data, err := s.Pictures.Get(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return data, nil
}

// DeletePicture is idempotent: deleting a missing picture succeeds.
func (s *UserService) DeletePicture(ctx context.Context, userID string) error {
	if err := s.Pictures.Delete(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}

func (s *UserService) notify(ctx context.Context, job mailer.EmailJob, userID string) {
	if s.Cfg != nil && !s.Cfg.MailSendEnabled {
		return
	}
	if err := s.Notifier.Notify(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"template": job.Template,
		}).Warn("email notification failed")
	}
}
