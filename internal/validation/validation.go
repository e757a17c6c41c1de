// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package validation wraps the struct validator with english error
// messages that use the serialised field names.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs using the "validate" tags.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// Error is returned when a struct fails validation.  It holds one message
// per failed field.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// New returns a Validator that names fields after the tagKey struct tag
// (i.e. "json" or "toml"), falling back to the Go field name.
func New(tagKey string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get(tagKey), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
		// only fails on a malformed built-in translation.
		panic(err)
	}
	return &Validator{v: v, trans: trans}
}

// Struct validates s.  It returns *Error if any of the fields failed.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var vErr validator.ValidationErrors
	if !errors.As(err, &vErr) {
		return err
	}
	msgs := make([]string, 0, len(vErr))
	for _, fe := range vErr {
		msgs = append(msgs, fe.Translate(v.trans))
	}
	return &Error{Messages: msgs}
}
