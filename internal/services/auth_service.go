package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/auth"
	"recipehub/internal/cache"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

const (
	OTPPurposeRegister = "register"
	OTPPurposeLogin    = "login"

	// Default lifetimes for OTP codes and reset tokens; the server passes
	// the configured values into NewAuthService.
	OTPTTL        = 5 * time.Minute
	ResetTokenTTL = 15 * time.Minute
)

type RegisterInput struct {
	Username        string `json:"username" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	VerifyRegistrationOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) error
	VerifyLoginOTP(ctx context.Context, email, otp string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword, confirm string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirm string) error
}

type authService struct {
	userRepo  repository.UserRepository
	cache     *cache.Client
	email     EmailService
	lifecycle LifecycleService
	jwtSecret string
	otpTTL    time.Duration
	resetTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cacheClient *cache.Client, email EmailService, lifecycle LifecycleService, jwtSecret string, otpTTL, resetTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		cache:     cacheClient,
		email:     email,
		lifecycle: lifecycle,
		jwtSecret: jwtSecret,
		otpTTL:    otpTTL,
		resetTTL:  resetTTL,
	}
}

// Register creates an unverified account and sends the verification OTP.
//
// An existing soft-deleted account with the same email is handled by who
// deleted it: a self-deleted account is resurrected under its original id
// (recipe ownership survives the round trip), while an admin-deleted account
// blocks registration outright.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(in.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, apperrors.Validation("email", "email already exists")
		}
		if !existing.IsSelfDeleted() {
			return nil, apperrors.ErrAccountDeletedByAdmin
		}
		return s.resurrect(ctx, existing, in)
	}

	if _, err := s.userRepo.GetByUsername(in.Username); err == nil {
		return nil, apperrors.Validation("username", "username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, OTPPurposeRegister, user.Email); err != nil {
		return nil, err
	}
	return user, nil
}

// resurrect re-activates a self-deleted account under its original id. Email
// verification was cleared on self-delete, so the OTP round trip is required
// again; the pending hard-delete job will observe the restored state and skip.
func (s *authService) resurrect(ctx context.Context, existing *models.User, in RegisterInput) (*models.User, error) {
	if err := s.lifecycle.RestoreUser(existing.ID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(existing.ID)
	if err != nil {
		return nil, err
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.PasswordHash = string(hash)
	user.IsEmailVerified = false
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, OTPPurposeRegister, user.Email); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) VerifyRegistrationOTP(ctx context.Context, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.consumeOTP(ctx, OTPPurposeRegister, email, otp); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpired
		}
		return err
	}
	return s.userRepo.MarkEmailVerified(user.ID)
}

func (s *authService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response as success, so the endpoint cannot be used to
			// probe which emails are registered.
			return nil
		}
		return err
	}
	if user.IsEmailVerified {
		return apperrors.Validation("email", "email is already verified")
	}
	return s.issueOTP(ctx, OTPPurposeRegister, email)
}

// Login is phase one of the two-phase login: it checks credentials and
// account state, then sends a login OTP. Tokens are only issued by
// VerifyLoginOTP.
func (s *authService) Login(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAuthentication
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return apperrors.ErrAuthentication
	}
	if !user.IsActive {
		return apperrors.ErrAccountDisabled
	}
	if !user.IsEmailVerified {
		return apperrors.ErrEmailUnverified
	}

	return s.issueOTP(ctx, OTPPurposeLogin, email)
}

func (s *authService) VerifyLoginOTP(ctx context.Context, email, otp string) (*auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.consumeOTP(ctx, OTPPurposeLogin, email, otp); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOrExpired
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return auth.GeneratePair(user, s.jwtSecret)
}

// Refresh rotates a refresh token: the presented token's jti is blacklisted
// for its remaining lifetime and a fresh pair is issued. A blacklisted or
// otherwise invalid token fails with ErrInvalidToken.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.blacklist(ctx, claims); err != nil {
		return nil, err
	}
	return auth.GeneratePair(user, s.jwtSecret)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.blacklist(ctx, claims)
}

// ForgotPassword stores a single-use reset token and queues the email. It
// reports success whether or not the address exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	if err := s.cache.SetResetToken(ctx, token, user.ID.String(), s.resetTTL); err != nil {
		return err
	}
	return s.email.QueueResetEmail(email, token)
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	if err := validatePasswordPair(newPassword, confirm); err != nil {
		return err
	}

	userIDStr, err := s.cache.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return apperrors.ErrInvalidOrExpired
		}
		return err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return apperrors.ErrInvalidOrExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(userID, string(hash)); err != nil {
		return err
	}
	return s.cache.DeleteResetToken(ctx, token)
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirm string) error {
	if err := validatePasswordPair(newPassword, confirm); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return apperrors.Validation("old_password", "old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, string(hash))
}

// issueOTP generates, stores and queues a 6-digit code. The cooldown key is
// taken with SET NX so two concurrent requests cannot both send a code;
// while a prior code is still valid the request fails with CooldownActive.
func (s *authService) issueOTP(ctx context.Context, purpose, email string) error {
	ok, err := s.cache.AcquireCooldown(ctx, purpose, email, s.otpTTL)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCooldownActive
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.cache.SetOTP(ctx, purpose, email, code, s.otpTTL); err != nil {
		return err
	}
	return s.email.QueueOTPEmail(email, purpose, code)
}

// consumeOTP verifies a code by equality and deletes it, making each code
// single-use. The cooldown is released so a fresh code can be requested
// immediately after a successful (or failed) consumption attempt is retried.
func (s *authService) consumeOTP(ctx context.Context, purpose, email, otp string) error {
	stored, err := s.cache.GetOTP(ctx, purpose, email)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return apperrors.ErrInvalidOrExpired
		}
		return err
	}
	if stored != otp {
		return apperrors.ErrInvalidOrExpired
	}
	if err := s.cache.DeleteOTP(ctx, purpose, email); err != nil {
		return err
	}
	return s.cache.ReleaseCooldown(ctx, purpose, email)
}

func (s *authService) checkRefreshToken(ctx context.Context, refreshToken string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, apperrors.ErrInvalidToken
	}
	blacklisted, err := s.cache.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) blacklist(ctx context.Context, claims *auth.Claims) error {
	return s.cache.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validateRegistration(in RegisterInput) error {
	if len(in.Username) < 3 || len(in.Username) > 150 {
		return apperrors.Validation("username", "must be between 3 and 150 characters")
	}
	if strings.Contains(in.Username, " ") {
		return apperrors.Validation("username", "username cannot contain spaces")
	}
	if !isAlpha(in.FirstName) {
		return apperrors.Validation("first_name", "first name must contain only letters")
	}
	if !isAlpha(in.LastName) {
		return apperrors.Validation("last_name", "last name must contain only letters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperrors.Validation("email", "enter a valid email address")
	}
	return validatePasswordPair(in.Password, in.ConfirmPassword)
}

func validatePasswordPair(password, confirm string) error {
	if len(password) < 8 {
		return apperrors.Validation("password", "must be at least 8 characters")
	}
	if password != confirm {
		return apperrors.Validation("confirm_password", "passwords do not match")
	}
	return nil
}

func isAlpha(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
