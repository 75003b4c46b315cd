package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/internal/utils"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/Nina932/nyx/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	directory Directory
	// signer is nil when local accounts are disabled.
	signer *auth.SecretVerifier
}

func NewAuthService(db *gorm.DB, directory Directory, signer *auth.SecretVerifier) *AuthService {
	return &AuthService{db: db, directory: directory, signer: signer}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AuthType string `json:"authType"` // local, ldap
}

type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type AuthResult struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

var (
	errLocalDisabled      = response.NewForbidden("Local accounts are disabled")
	errInvalidCredentials = response.NewUnauthorized("Invalid credentials")
	errCredentialsMissing = response.NewBadRequest("Email and password are required")
)

func viewOf(u *models.User) UserView {
	created := u.CreatedAt
	return UserView{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: &created}
}

// registrableRole limits self-registration to EMPLOYEE and MANAGER.
func registrableRole(requested string) auth.Role {
	if r := auth.ParseRole(requested); r == auth.RoleManager {
		return r
	}
	return auth.RoleEmployee
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) LocalAccounts() bool {
	return s.signer != nil
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if s.signer == nil {
		return nil, errLocalDisabled
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, errCredentialsMissing
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("User already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, response.NewBadRequest("Password is too long")
		}
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         string(registrableRole(req.Role)),
		AuthType:     models.AuthTypeLocal,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return s.issue(&user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if s.signer == nil {
		return nil, errLocalDisabled
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, errCredentialsMissing
	}

	var (
		user *models.User
		err  error
	)
	switch req.AuthType {
	case "", models.AuthTypeLocal:
		user, err = s.localAuth(ctx, email, req.Password)
	case models.AuthTypeLDAP:
		user, err = s.ldapAuth(ctx, email, req.Password)
	default:
		return nil, response.NewBadRequest("Invalid auth type")
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(user).Update("last_login", now).Error; err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
	return s.issue(user)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.signer.Sign(auth.Identity{
		Subject: u.ID,
		Email:   u.Email,
		Role:    auth.ParseRole(u.Role),
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: viewOf(u), Token: token}, nil
}

func (s *AuthService) localAuth(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND auth_type = ?", email, models.AuthTypeLocal).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return &user, nil
}

// ldapAuth authenticates against the directory and provisions an EMPLOYEE
// user on first login.
func (s *AuthService) ldapAuth(ctx context.Context, login, password string) (*models.User, error) {
	if s.directory == nil {
		return nil, response.NewBadRequest("LDAP authentication is not enabled")
	}
	entry, err := s.directory.Authenticate(login, password)
	switch {
	case errors.Is(err, ErrLDAPDisabled):
		return nil, response.NewBadRequest("LDAP authentication is not enabled")
	case errors.Is(err, ErrLDAPInvalidCredentials):
		return nil, errInvalidCredentials
	case err != nil:
		return nil, response.NewUpstreamError("Directory service unavailable", err)
	}

	email := normalizeEmail(entry.Email)
	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:    email,
			Role:     string(auth.RoleEmployee),
			AuthType: models.AuthTypeLDAP,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		logger.Info().Str("user_id", user.ID).Str("dn", entry.DN).Msg("ldap user provisioned")
	case err != nil:
		return nil, err
	case user.AuthType != models.AuthTypeLDAP:
		// a local account with the same email is not taken over
		return nil, errInvalidCredentials
	}
	return &user, nil
}

// Me returns the stored user for the caller, or the verified identity when
// the caller has no local row.
func (s *AuthService) Me(ctx context.Context, id *auth.Identity) (*UserView, error) {
	if id == nil {
		return nil, response.NewUnauthorized("No token provided")
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id.Subject).First(&user).Error
	switch {
	case err == nil:
		v := viewOf(&user)
		return &v, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &UserView{ID: id.Subject, Email: id.Email, Role: string(id.Role)}, nil
	default:
		return nil, err
	}
}
