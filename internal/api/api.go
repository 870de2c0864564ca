package api

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/service"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterValidators installs the custom binding validators used by the
// request schemas. Safe to call more than once.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	}
}

// respondServiceError translates a service-layer error to the transport
// taxonomy: domain conflicts are 400 with an "errors" message, permission
// failures 403, missing rows 404, the rest a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case isDomainConflict(err):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isDomainConflict(err error) bool {
	for _, target := range []error{
		service.ErrSelfFollow,
		service.ErrAlreadyFollowing,
		service.ErrNotFollowing,
		service.ErrAlreadyInList,
		service.ErrNotInList,
		service.ErrUnknownIngredient,
		service.ErrUnknownTag,
		service.ErrAmountOutOfRange,
		service.ErrRecipeNameTaken,
		service.ErrReservedUsername,
		service.ErrInvalidUsername,
		service.ErrUsernameTaken,
		service.ErrEmailTaken,
		service.ErrInvalidCredentials,
		service.ErrWrongPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
