// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate holds the shared struct validator used by forms, the
// sign-in and sign-up screens and the devserver's request binding.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate is the shared validator instance.
	Validate *validator.Validate
	// Translator renders validation errors in English.
	Translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	emailTag    = "tutoremail"

	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,4}$`)
)

// messages overrides the translated text for specific field/tag pairs.
var messages = map[string]string{
	"email.tutoremail":      "Invalid email address",
	"email.required":        "Email is required",
	"password.min":          "Password must be at least 6 characters long",
	"password.required":     "Password is required",
	"first_name.notblank":   "First name is required",
	"name.notblank":         "Name is required",
	"assistant_id.required": "Select a tutor",
	"amount.gt":             "Amount must be greater than zero",
}

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlank)
	_ = Validate.RegisterValidation(emailTag, email)

	registerCustomTranslations(notBlankTag, emailTag)
}

// registerCustomTranslations attaches messages to custom tags. The register
// func is a noop because the English translator is already registered.
func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case emailTag:
		return "Invalid email address"
	default:
		return ""
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func email(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return emailPattern.MatchString(strings.TrimSpace(str))
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

// Struct validates v and returns nil or a FieldErrors.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// Valid reports whether v passes validation.
func Valid(v interface{}) bool {
	return Validate.Struct(v) == nil
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Translate(Translator)
}

// FieldErrors maps a json field name to its first validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = e[f]
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for field, or "".
func (e FieldErrors) Field(field string) string {
	return e[field]
}

// FieldError extracts the message for field from err, or "".
func FieldError(err error, field string) string {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe[field]
	}
	return ""
}
