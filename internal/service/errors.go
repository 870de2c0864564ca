package service

import "errors"

// Domain conditions surfaced to clients as 400-class responses. Handlers
// translate these to the {"errors": ...} payload; anything else becomes a
// generic 500.
var (
	ErrSelfFollow       = errors.New("you cannot follow yourself")
	ErrAlreadyFollowing = errors.New("you are already following this author")
	ErrNotFollowing     = errors.New("you are not following this author")

	ErrAlreadyInList = errors.New("this recipe is already in your list")
	ErrNotInList     = errors.New("this recipe is not in your list")

	ErrForbidden = errors.New("you are not the author of this recipe")

	ErrUnknownIngredient = errors.New("ingredient does not exist")
	ErrUnknownTag        = errors.New("tag does not exist")
	ErrAmountOutOfRange  = errors.New("ingredient amount must be between 1 and 1000")
	ErrRecipeNameTaken   = errors.New("you already have a recipe with this name")

	ErrReservedUsername   = errors.New("this username is reserved")
	ErrInvalidUsername    = errors.New("username contains invalid characters")
	ErrUsernameTaken      = errors.New("this username is already taken")
	ErrEmailTaken         = errors.New("this email is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)
