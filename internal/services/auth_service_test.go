package services

import (
	"context"
	"testing"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

func userRow(hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "username", "email", "phone", "password_hash", "role", "status",
	}).AddRow(1, "Admin", "admin", "admin@example.com", "", hash, "admin", "active")
}

func TestLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow(string(hash)))

	svc := AuthService{
		UserRepo:  repositories.UserRepository{DB: db},
		JWTSecret: "test-jwt-secret",
	}

	result, err := svc.Login(context.Background(), LoginInput{Login: "admin", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("token must be set")
	}

	claims, err := svc.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Role != "admin" || claims.Username != "admin" || claims.UserID != 1 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow(string(hash)))

	svc := AuthService{UserRepo: repositories.UserRepository{DB: db}, JWTSecret: "test-jwt-secret"}
	_, err = svc.Login(context.Background(), LoginInput{Login: "admin", Password: "wrong"})
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want UnauthorizedError", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := AuthService{UserRepo: repositories.UserRepository{DB: db}, JWTSecret: "test-jwt-secret"}
	_, err = svc.Login(context.Background(), LoginInput{Login: "ghost", Password: "whatever"})
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want UnauthorizedError (not a distinguishable not-found)", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := AuthService{}
	cases := []RegisterInput{
		{Username: "u", Email: "a@b.co", Password: "longenough"},
		{Name: "N", Email: "a@b.co", Password: "longenough"},
		{Name: "N", Username: "u", Email: "bad", Password: "longenough"},
		{Name: "N", Username: "u", Email: "a@b.co", Password: "short"},
	}
	for i, in := range cases {
		if _, err := svc.Register(context.Background(), in); !domain.IsValidation(err) {
			t.Errorf("case %d: err = %v, want ValidationError", i, err)
		}
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := AuthService{JWTSecret: "secret-a"}
	token, err := issuer.issueToken(models.User{ID: 1, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := AuthService{JWTSecret: "secret-b"}
	if _, err := verifier.ParseToken(token); !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want UnauthorizedError", err)
	}
}
