package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-identity-go/internal/password"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-identity-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-identity-go/internal/validation"
)

// CredentialStore is the persistence contract of the user flows. Not-found
// is reported as repo.ErrNotFound, a lost uniqueness race as
// repo.ErrDuplicateUsername or repo.ErrDuplicateEmail.
type CredentialStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *entity.User) (int64, error)
	GetCredentialsForLogin(ctx context.Context, username string) (*entity.Credentials, error)
	GetCredentialsByID(ctx context.Context, id int64) (*entity.Credentials, error)
	FetchProfile(ctx context.Context, id int64) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, id int64, upd entity.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error
}

var (
	_ CredentialStore = (*userrepo.UserRepo)(nil)
	_ CredentialStore = (*userrepo.MemoryRepo)(nil)
)

// PasswordHasher is satisfied by password.Pool.
type PasswordHasher interface {
	Hash(ctx context.Context, pw string) (string, error)
	Verify(ctx context.Context, hash, pw string) (bool, error)
	NeedsRehash(hash string) bool
}

var _ PasswordHasher = (*password.Pool)(nil)

// TokenIssuer is satisfied by token.Manager.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Service orchestrates signup, login and the authenticated profile flows.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens TokenIssuer
	nextID func() int64
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store CredentialStore, hasher PasswordHasher, tokens TokenIssuer, nextID func() int64, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		nextID: nextID,
		logger: logger,
		now:    time.Now,
	}
}

// SignupRequest is the raw signup body; every field is optional on the wire.
type SignupRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
	Fone            *string `json:"fone"`
	Name            *string `json:"name"`
	Surname         *string `json:"surname"`
}

type ValidatedSignup struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
	Fone            string  `json:"fone"`
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
}

type NewUserResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type ValidatedLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// UpdateProfileRequest is a partial update: nil means "not provided".
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Fone    *string `json:"fone"`
}

type PasswordChangeRequest struct {
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
}

type ValidatedPasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Signup validates req, checks uniqueness and stores a new active user.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*NewUserResponse, error) {
	in, err := validation.Required[ValidatedSignup](req, "username", "email", "password", "fone", "name", "surname")
	if err != nil {
		return nil, s.requiredErr(err)
	}

	if in.ConfirmPassword != nil && *in.ConfirmPassword != in.Password {
		return nil, validationErr(MsgPasswordMismatch)
	}

	taken, err := s.store.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, s.dbErr("exists by username", err)
	}
	if taken {
		return nil, conflictErr(MsgUsernameTaken)
	}

	taken, err = s.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.dbErr("exists by email", err)
	}
	if taken {
		return nil, conflictErr(MsgEmailTaken)
	}

	if !validation.ValidEmail(in.Email) {
		return nil, validationErr(MsgEmailInvalid)
	}
	if !password.Validate(in.Password) {
		return nil, validationErr(MsgPasswordInvalid)
	}
	if !validation.ValidFone(in.Fone) {
		return nil, validationErr(MsgFoneInvalid)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.logger.Errorw("hash password", "err", err)
		return nil, internalErr(MsgHashError, err)
	}

	now := s.now().UTC()
	u := &entity.User{
		ID:           s.nextID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Surname:      in.Surname,
		Fone:         in.Fone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		ActivatedAt:  &now,
	}
	id, err := s.store.CreateUser(ctx, u)
	switch {
	case errors.Is(err, userrepo.ErrDuplicateUsername):
		return nil, conflictErr(MsgUsernameTaken)
	case errors.Is(err, userrepo.ErrDuplicateEmail):
		return nil, conflictErr(MsgEmailTaken)
	case err != nil:
		return nil, s.dbErr("create user", err)
	}

	s.logger.Infow("user created", "user_id", id)
	return &NewUserResponse{ID: id, Message: MsgUserCreated}, nil
}

// Login checks the credentials and issues a session token. Unknown user and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	in, err := validation.Required[ValidatedLogin](req, "username", "password")
	if err != nil {
		return nil, s.requiredErr(err)
	}

	creds, err := s.store.GetCredentialsForLogin(ctx, in.Username)
	if errors.Is(err, userrepo.ErrNotFound) {
		s.logger.Warnw("login for unknown user", "username", in.Username)
		return nil, newError(KindUnauthorized, MsgBadCredentials, nil)
	}
	if err != nil {
		return nil, s.dbErr("credentials for login", err)
	}

	ok, err := s.hasher.Verify(ctx, creds.PasswordHash, in.Password)
	if err != nil {
		return nil, internalErr(MsgHashError, err)
	}
	if !ok {
		s.logger.Warnw("password mismatch on login", "username", in.Username)
		return nil, newError(KindUnauthorized, MsgBadCredentials, nil)
	}

	s.rehash(ctx, creds, in.Password)

	tok, err := s.tokens.Issue(creds.ID)
	if err != nil {
		s.logger.Errorw("issue token", "user_id", creds.ID, "err", err)
		return nil, internalErr(MsgTokenError, err)
	}
	return &LoginResponse{Token: tok, Message: MsgUserLoggedIn}, nil
}

// rehash upgrades a hash stored under older parameters. Failures are logged
// and do not affect the login.
func (s *Service) rehash(ctx context.Context, creds *entity.Credentials, pw string) {
	if !s.hasher.NeedsRehash(creds.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(ctx, pw)
	if err == nil {
		err = s.store.UpdatePassword(ctx, creds.ID, hash)
	}
	if err != nil {
		s.logger.Warnw("rehash on login failed", "user_id", creds.ID, "err", err)
	}
}

// Fetch returns the profile of id. Store failures are reported as not found.
func (s *Service) Fetch(ctx context.Context, id int64) (*entity.Profile, error) {
	p, err := s.store.FetchProfile(ctx, id)
	if err != nil {
		if !errors.Is(err, userrepo.ErrNotFound) {
			s.logger.Errorw("fetch profile", "user_id", id, "err", err)
		}
		return nil, newError(KindNotFound, MsgUserNotFound, err)
	}
	return p, nil
}

// UpdateProfile applies the provided fields. The phone is checked before
// anything is written.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*MessageResponse, error) {
	if req.Fone != nil && !validation.ValidFone(*req.Fone) {
		return nil, validationErr(MsgFoneInvalid)
	}

	err := s.store.UpdateProfile(ctx, id, entity.ProfileUpdate{
		Name:    req.Name,
		Surname: req.Surname,
		Fone:    req.Fone,
	})
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, notFoundErr()
	}
	if err != nil {
		return nil, s.dbErr("update profile", err)
	}
	return &MessageResponse{Message: MsgUserUpdated}, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, id int64, req PasswordChangeRequest) (*MessageResponse, error) {
	in, err := validation.Required[ValidatedPasswordChange](req, "current_password", "new_password")
	if err != nil {
		return nil, s.requiredErr(err)
	}

	creds, err := s.store.GetCredentialsByID(ctx, id)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, notFoundErr()
	}
	if err != nil {
		return nil, s.dbErr("credentials by id", err)
	}

	ok, err := s.hasher.Verify(ctx, creds.PasswordHash, in.CurrentPassword)
	if err != nil {
		return nil, internalErr(MsgHashError, err)
	}
	if !ok {
		return nil, validationErr(MsgCurrentPassword)
	}
	if !password.Validate(in.NewPassword) {
		return nil, validationErr(MsgPasswordInvalid)
	}

	hash, err := s.hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		s.logger.Errorw("hash password", "err", err)
		return nil, internalErr(MsgHashError, err)
	}
	err = s.store.UpdatePassword(ctx, id, hash)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, notFoundErr()
	}
	if err != nil {
		return nil, s.dbErr("update password", err)
	}
	return &MessageResponse{Message: MsgPasswordUpdated}, nil
}

// Delete removes the user permanently.
func (s *Service) Delete(ctx context.Context, id int64) (*MessageResponse, error) {
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, notFoundErr()
	}
	if err != nil {
		return nil, s.dbErr("delete user", err)
	}
	s.logger.Infow("user deleted", "user_id", id)
	return &MessageResponse{Message: MsgUserDeleted}, nil
}

func (s *Service) requiredErr(err error) error {
	var missing *validation.MissingFieldError
	if errors.As(err, &missing) {
		return validationErr("Missing required fields: " + missing.Field)
	}
	s.logger.Errorw("project request", "err", err)
	return internalErr(MsgInvalidPayload, err)
}

func (s *Service) dbErr(op string, err error) error {
	s.logger.Errorw("store failure", "op", op, "err", err)
	return internalErr(MsgDatabaseError, err)
}
