package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rideboard/internal/entities"
	"rideboard/internal/jwt"
	"rideboard/internal/logger"
	"rideboard/internal/models"
	"rideboard/internal/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	GrantAdmin(ctx context.Context, email string) error
}

type authService struct {
	userRepo    repository.UserRepository
	jwtService  *jwt.JWTService
	adminEmails map[string]bool
	log         logger.Logger
}

// NewAuthService creates a new auth service. Accounts registered with one of
// adminEmails get the admin role.
func NewAuthService(userRepo repository.UserRepository, jwtService *jwt.JWTService, adminEmails []string, log logger.Logger) AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &authService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		adminEmails: admins,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) respond(user *entities.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email, jwt.RoleFor(user.IsAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}, nil
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique index on email decides races between concurrent signups.
	user, err := s.userRepo.Create(ctx, email, string(hashedPassword), name, s.adminEmails[email])
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logger.LogFields{
		"user_id": user.ID,
		"admin":   user.IsAdmin,
	}).Info("user_registered", "User registered")

	auth, err := s.respond(user)
	if err != nil {
		return nil, err
	}
	return &models.RegisterResponse{
		Message: "User registered successfully",
		User:    *auth,
	}, nil
}

// Login authenticates a user and returns user info with JWT token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if isMissing(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

// GrantAdmin gives an existing account the admin role. Tokens issued before
// the grant keep their old role until they expire.
func (s *authService) GrantAdmin(ctx context.Context, email string) error {
	err := s.userRepo.SetAdmin(ctx, normalizeEmail(email), true)
	if isMissing(err) {
		return notFound("user", email)
	}
	if err != nil {
		return err
	}
	s.log.WithFields(logger.LogFields{"email": normalizeEmail(email)}).Info("admin_granted", "Admin role granted")
	return nil
}
