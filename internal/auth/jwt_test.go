package auth

import (
	"testing"

	"servis-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "test-secret-en-az-otuz-iki-karakter"
	user := &models.User{ID: 7, Email: "usta@servis.local", Role: models.RoleTechnician}

	tokenStr, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token doğrulanamadı: %v", err)
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		t.Fatalf("claims çözümlenemedi")
	}
	if claims.UserID != 7 || claims.Role != models.RoleTechnician {
		t.Fatalf("beklenmeyen claims: %+v", claims)
	}
}

func TestGenerateTokenWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Email: "admin@servis.local", Role: models.RoleAdmin}

	tokenStr, err := GenerateToken("dogru-secret-en-az-otuz-iki-krktr", user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("yanlis-secret"), nil
	})
	if err == nil && token.Valid {
		t.Fatalf("yanlış secret ile token geçerli sayılmamalı")
	}
}
