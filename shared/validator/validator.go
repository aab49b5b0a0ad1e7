package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"stayvista/shared/constant"
	"stayvista/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const bytesPerMB = 1 << 20

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	// report fields by their json name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	rules := map[string]val.Func{
		"calendardate": calendarDate,
		"empty":        func(fl val.FieldLevel) bool { return fl.Field().IsZero() },
		"mimetypes":    mimeTypes,
		"maxfilesize":  maxFileSize,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// calendarDate accepts "2006-01-02" or an RFC3339 timestamp.
func calendarDate(fl val.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	for _, layout := range []string{constant.DayFormat, time.RFC3339} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}

	return false
}

// mimeTypes checks an uploaded file's declared type, or a file name's extension.
func mimeTypes(fl val.FieldLevel) bool {
	var contentType string

	switch v := fl.Field().Interface().(type) {
	case multipart.FileHeader:
		contentType = v.Header.Get(constant.RequestHeaderContentType)
	case string:
		contentType, _, _ = strings.Cut(mime.TypeByExtension(path.Ext(v)), ";")
	}

	return contentType != "" && slices.Contains(strings.Fields(fl.Param()), contentType)
}

// maxFileSize caps an upload, or the length of a string, at Param megabytes.
func maxFileSize(fl val.FieldLevel) bool {
	limitMB, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}

	var size int64

	switch v := fl.Field().Interface().(type) {
	case multipart.FileHeader:
		size = v.Size
	case string:
		size = int64(len(v))
	}

	return float64(size) <= limitMB*bytesPerMB
}

// normalizer is implemented by requests that canonicalise their fields (case, whitespace)
// before validation.
type normalizer interface {
	Normalize()
}

// Validate decodes a JSON body into data, normalizes it and checks its validate tags.
// Every failure is a 400 Failure.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return failure.BadRequestFromString("request body is empty") //nolint:wrapcheck
		}

		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	if n, ok := any(data).(normalizer); ok {
		n.Normalize()
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	return asFailure(validate.Struct(data))
}

func ValidateVar(field any, tag string) error {
	return asFailure(validate.Var(field, tag))
}

func asFailure(err error) error {
	if err == nil {
		return nil
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}
