package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"rewards/src/db"
	"rewards/src/services"
	"rewards/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// AuthLogin runs after VerifyIdToken. It seeds the profile row on first
// login and exchanges the Firebase identity for an app session token.
func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		return nil, http.StatusBadRequest, err
	}

	uid := ctx.GetString("uid")
	email := ctx.GetString("email")

	profiles := services.NewProfileService(db.GetDb())
	profile, err := profiles.EnsureExists(ctx, uid, email, body.FullName)
	if err != nil {
		log.Printf("Error seeding profile for [%s]: %s\n", uid, err.Error())
		return nil, http.StatusBadRequest, err
	}

	expiry := time.Now().Add(24 * time.Hour)
	claims := types.Claims{
		Name:    profile.FullName,
		IsAdmin: profile.IsAdmin,
		UID:     profile.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tkn.SignedString(jwtKey)
	if err != nil {
		log.Printf("Error signing session token: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &signed, http.StatusOK, nil
}
