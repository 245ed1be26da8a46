package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

var registerOnce sync.Once

// RegisterValidators добавляет в валидатор gin правило `slug`.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("slug", SlugValidation); err != nil {
			panic(err)
		}
	})
}

// SlugValidation - правило `slug` (см. slug.IsSlug).
func SlugValidation(fl validator.FieldLevel) bool {
	return slug.IsSlug(fl.Field().String())
}
