package middlewares

import (
	"log"
	"net/http"
	"os"
	"strings"

	"rewards/src/db"
	"rewards/src/models"
	"rewards/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ctx.AbortWithError(http.StatusUnauthorized, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	db := db.GetDb()
	var profile models.Profile
	if err := db.
		Model(&models.Profile{}).
		Where(&models.Profile{ID: claims.Subject}).
		First(&profile).
		Error; err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("uid", profile.ID)
	ctx.Set("email", profile.Email)
	ctx.Set("name", profile.FullName)
	ctx.Set("is_admin", profile.IsAdmin)
}

// AdminMiddleware gates the review and content-management surface. Runs
// after AuthMiddleware, which loads the profile flag.
func AdminMiddleware(ctx *gin.Context) {
	if !ctx.GetBool("is_admin") {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
}
