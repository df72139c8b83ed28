package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Birthdates must not be in the future.
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		d, err := time.Parse("2006-01-02", fl.Field().String())
		if err != nil {
			return false
		}
		return !d.After(time.Now())
	})

	// Usernames: letters, numbers and underscores only.
	_ = v.RegisterValidation("usernamechars", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})

	// Passwords need at least one lowercase letter, one uppercase letter and
	// one digit.
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return lower && upper && digit
	})

	return v
}

// checkPayload validates a decoded payload and writes the 400 envelope on
// failure. Returns true when the payload is valid.
func checkPayload(w http.ResponseWriter, payload interface{}) bool {
	err := validate.Struct(payload)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s: failed on rule %q", fe.Field(), fe.Tag()))
		}
		respondMessage(w, http.StatusBadRequest, "Validation failed: "+strings.Join(parts, ", "))
	} else {
		respondMessage(w, http.StatusBadRequest, "Validation failed")
	}
	return false
}

// pathID parses a positive integer URL parameter, writing the 400 envelope
// when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		respondMessage(w, http.StatusBadRequest, "ID must be a positive integer")
		return 0, false
	}
	return id, true
}
