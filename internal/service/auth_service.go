package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/auth"
	apperrors "foodgram/internal/errors"
	"foodgram/internal/mail"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

const (
	bcryptCost         = 10
	minPasswordEntropy = 50
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
	reservedUsername   = "me"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// RegisterInput is the payload of a sign-up.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// TokenPair is the result of a login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	// Logout revokes the refresh token and blacklists the access token
	// described by claims until it expires.
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mailer     mail.Sender
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailer mail.Sender,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mailer:     mailer,
		logger:     logger,
	}
}

// Register creates a new user with hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	verr := apperrors.NewValidationError()
	if msg := usernameProblem(in.Username); msg != "" {
		verr.Add("username", msg)
	}
	if err := checkPassword(in.Password); err != nil {
		verr.Add("password", err.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	emailTaken, usernameTaken, err := s.userRepo.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if emailTaken {
		verr.Add("email", "a user with this email already exists")
	}
	if usernameTaken {
		verr.Add("username", "a user with this username already exists")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.FieldError("email", "a user with this email or username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	subject, body := mail.WelcomeMessage(user.Username)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.WarnContext(ctx, "failed to send welcome mail", slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
	}

	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", ErrInvalidRefreshToken
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if refreshToken != "" {
		refresh, err := s.jwtService.ValidateKind(refreshToken, auth.KindRefresh)
		if err != nil || (claims != nil && refresh.UserID != claims.UserID) {
			return ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, refresh.ID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}

	if claims != nil {
		if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// SetPassword replaces the password after checking the current one.
func (s *authService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.FieldError("current_password", "wrong password")
	}
	if err := checkPassword(next); err != nil {
		return apperrors.FieldError("new_password", err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func usernameProblem(username string) string {
	switch {
	case !usernamePattern.MatchString(username):
		return "username may contain only letters, digits and @/./+/-/_"
	case strings.EqualFold(username, reservedUsername):
		return fmt.Sprintf("username %q is reserved", reservedUsername)
	}
	return ""
}

func checkPassword(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	return passwordvalidator.Validate(password, minPasswordEntropy)
}
