package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tokenStr, err := GenerateJWT("sales@argo.example")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	token, err := ValidateJWT(tokenStr)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}
	if claims["email"] != "sales@argo.example" {
		t.Errorf("email claim = %v", claims["email"])
	}
	if claims["type"] != "access" {
		t.Errorf("type claim = %v", claims["type"])
	}
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	tokenStr, err := GenerateRefreshToken("sales@argo.example", "sess-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	token, err := ValidateJWT(tokenStr)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["type"] != "refresh" {
		t.Errorf("type claim = %v", claims["type"])
	}
	if claims["sessionId"] != "sess-123" {
		t.Errorf("sessionId claim = %v", claims["sessionId"])
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !ValidatePassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if ValidatePassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
