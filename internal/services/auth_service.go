package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// ErrInvalidCredentials is returned for an unknown email or a wrong password alike
var ErrInvalidCredentials = &types.CustomError{
	Code:    401,
	Message: "Invalid email or password",
	Type:    "auth.credentials",
}

// Claims are the JWT claims issued at login
type Claims struct {
	Role policy.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput is the body of a registration
type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	CoachID  *string `json:"coach_id"`
}

// AuthService registers users and issues and verifies HS256 tokens
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	log    *logrus.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService over the application pool
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// Register creates a coach or client account. A client may name its coach.
func (a *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, types.NewValidationError("password", "must be at least %d characters", minPasswordLength)
	}

	role := policy.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if role == "" {
		role = policy.RoleClient
	}
	if role != policy.RoleCoach && role != policy.RoleClient {
		return nil, types.NewValidationError("role", "must be coach or client")
	}

	user := models.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  strings.TrimSpace(input.Name),
		Role:  string(role),
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &types.ConflictError{Message: "email is already registered"}
		}

		if input.CoachID != nil && *input.CoachID != "" {
			if role != policy.RoleClient {
				return types.NewValidationError("coach_id", "only clients have a coach")
			}
			var coach models.User
			if err := tx.Where("id = ? AND role = ?", *input.CoachID, policy.RoleCoach).First(&coach).Error; err != nil {
				return notFound(err, "coach", *input.CoachID)
			}
			user.CoachID = &coach.ID
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)

		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &types.ConflictError{Message: "email is already registered"}
		}
		return nil, a.fail("register", err)
	}

	a.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return &user, nil
}

// Authenticate checks the credentials and issues a token
func (a *AuthService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, a.fail("authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.IssueToken(policy.Actor{ID: user.ID, Role: policy.Role(user.Role)})
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// IssueToken signs a token for actor
func (a *AuthService) IssueToken(actor policy.Actor) (string, error) {
	now := a.now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the actor it was issued to
func (a *AuthService) ParseToken(token string) (policy.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" || !policy.ValidRole(claims.Role) {
		return policy.Actor{}, fmt.Errorf("invalid token: missing subject or role")
	}
	return policy.Actor{ID: claims.Subject, Role: claims.Role}, nil
}

// EnsureSuperAdmin creates the configured super admin when no account has that email.
// An existing account is left as it is.
func (a *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return a.fail("ensure super admin", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Super Admin",
		Role:         string(policy.RoleSuperAdmin),
	}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		return a.fail("ensure super admin", err)
	}

	a.log.WithField("user_id", user.ID).Info("super admin created")
	return nil
}

func (a *AuthService) fail(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	a.log.WithError(err).WithField("op", op).Error("storage operation failed")
	return &types.PersistenceError{Op: op, Err: err}
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return "", types.NewValidationError("email", "is not a valid address")
	}
	return strings.ToLower(addr.Address), nil
}
