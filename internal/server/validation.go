package server

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	minNicknameLength = 3
	maxNicknameLength = 20
	maxCategoryLength = 50
)

var categoryPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
			return validNickname(fl.Field().String())
		})
		_ = engine.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return validCategory(fl.Field().String())
		})
	})
}

func validNickname(name string) bool {
	trimmed := strings.TrimSpace(name)
	length := utf8.RuneCountInString(trimmed)
	return length >= minNicknameLength && length <= maxNicknameLength
}

func validCategory(slug string) bool {
	if slug == "" {
		return true
	}
	return len(slug) <= maxCategoryLength && categoryPattern.MatchString(slug)
}
