package services

import (
	"context"
	"strings"
	"time"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and validates JWT access tokens for the admin API.
type AuthService struct {
	UserRepo  repositories.UserRepository
	JWTSecret string
	RequestID string
}

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login checks credentials and returns a signed token. Invalid login and
// wrong password are deliberately the same error.
func (s AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return LoginResult{}, domain.ValidationError{Field: "login", Msg: "login and password required"}
	}

	user, err := s.UserRepo.GetByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, domain.UnauthorizedError{Msg: "invalid credentials"}
		}
		return LoginResult{}, err
	}
	if user.Status != "" && user.Status != "active" {
		return LoginResult{}, domain.UnauthorizedError{Msg: "account disabled"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, domain.UnauthorizedError{Msg: "invalid credentials"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}

	utils.LogEvent(s.RequestID, "auth", "login", "user="+user.Username)
	return LoginResult{Token: token, User: user}, nil
}

// Register creates a user account with a bcrypt-hashed password.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	name := utils.NormalizeSpace(in.Name)
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	switch {
	case name == "":
		return models.User{}, domain.ValidationError{Field: "name", Msg: "required"}
	case username == "":
		return models.User{}, domain.ValidationError{Field: "username", Msg: "required"}
	case !emailRe.MatchString(email):
		return models.User{}, domain.ValidationError{Field: "email", Msg: "invalid email address"}
	case len(in.Password) < 8:
		return models.User{}, domain.ValidationError{Field: "password", Msg: "at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = "staff"
	}

	user := models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Status:       "active",
		PasswordHash: string(hash),
	}
	id, err := s.UserRepo.Create(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = id

	utils.LogEvent(s.RequestID, "auth", "register", "user="+user.Username)
	return user, nil
}

// Claims carried in every access token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s AuthService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.JWTSecret))
}

// ParseToken validates a bearer token and returns its claims.
func (s AuthService) ParseToken(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.UnauthorizedError{Msg: "unexpected signing method"}
		}
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}
	return claims, nil
}
