package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var signupUserTypes = map[string]bool{
	models.UserTypeLawyer:  true,
	models.UserTypeClient:  true,
	models.UserTypeStudent: true,
}

// StatusResult is what GET /api/auth/status reports.
type StatusResult struct {
	Authenticated bool
	User          *models.User
	Bot           *BotIdentity
}

type AuthService struct {
	store      store.Store
	bot        *BotIdentity
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(s store.Store, bot *BotIdentity, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      s,
		bot:        bot,
		sessionTTL: sessionTTL,
		logger:     logger.Named("auth_service"),
		now:        time.Now,
	}
}

// Bot returns the reserved assistant identity.
func (s *AuthService) Bot() *BotIdentity {
	return s.bot
}

// Signup creates a user and starts a session for them.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.Session, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	userType := strings.TrimSpace(strings.ToLower(req.UserType))

	if firstName == "" || lastName == "" || email == "" || req.Password == "" || userType == "" {
		return nil, nil, validationError("All required fields must be filled")
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, nil, validationError("Password must be at most 72 bytes")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, validationError("Invalid email address")
	}
	if !signupUserTypes[userType] {
		return nil, nil, validationError("userType must be one of lawyer, client or student")
	}
	barNumber := trimmedOrNil(req.BarNumber)
	if userType == models.UserTypeLawyer && barNumber == nil {
		return nil, nil, validationError("Bar number is required for lawyers")
	}

	// Check if user already exists
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, nil, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("Error checking user existence", zap.String("email", email), zap.Error(err))
		return nil, nil, internalError("check user existence", err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Error hashing password", zap.Error(err))
		return nil, nil, internalError("hash password", err)
	}

	user, err := s.store.CreateUser(ctx, store.CreateUserParams{
		ID:             uuid.New(),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		HashedPassword: hashedPassword,
		PhoneNumber:    trimmedOrNil(req.PhoneNumber),
		UserType:       userType,
		BarNumber:      barNumber,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		s.logger.Error("Error creating user", zap.String("email", email), zap.Error(err))
		return nil, nil, internalError("create user", err)
	}

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User signed up", zap.Stringer("user_id", user.ID), zap.String("user_type", user.UserType))
	return user, sess, nil
}

// Login verifies credentials and starts a session. Every failure looks the same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("Error retrieving user during login", zap.String("email", email), zap.Error(err))
		return nil, nil, internalError("get user", err)
	}
	if user.UserType == models.UserTypeChatbot {
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := auth.CheckPasswordHash(password, user.HashedPassword)
	if err != nil {
		s.logger.Warn("Error comparing password hash", zap.Stringer("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in", zap.Stringer("user_id", user.ID))
	return user, sess, nil
}

// Logout destroys the session. Unknown sessions are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("Error deleting session", zap.Stringer("session_id", sessionID), zap.Error(err))
		return internalError("delete session", err)
	}
	return nil
}

// ResolveSession returns the user behind a live session.
// Expired sessions are removed and reported as ErrNotAuthenticated.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID uuid.UUID) (*models.User, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, internalError("get session", err)
	}

	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, sess.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Error deleting expired session", zap.Stringer("session_id", sess.ID), zap.Error(err))
		}
		return nil, ErrNotAuthenticated
	}

	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, internalError("get session user", err)
	}
	return user, nil
}

// Status never fails: lookup errors are logged and reported as unauthenticated.
func (s *AuthService) Status(ctx context.Context, sessionID uuid.UUID) StatusResult {
	if sessionID == uuid.Nil {
		return StatusResult{}
	}
	user, err := s.ResolveSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrAuth) {
			s.logger.Error("Error resolving session for status", zap.Error(err))
		}
		return StatusResult{}
	}
	return StatusResult{Authenticated: true, User: user, Bot: s.bot}
}

func (s *AuthService) startSession(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	sess, err := s.store.CreateSession(ctx, store.CreateSessionParams{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	})
	if err != nil {
		s.logger.Error("Error creating session", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, internalError("create session", err)
	}
	return sess, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
