package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field error messages
const (
	MsgTextRequired   = "This field is required."
	MsgInvalidChoice  = "Select a valid choice. That choice is not one of the available choices."
	MsgImageDisabled  = "image uploads are disabled"
	MsgImageTooLarge  = "image must be at most 5 MB"
	MsgImageNotImage  = "upload a valid image, the file is either not an image or corrupted"
	MsgImageFormatBad = "only JPEG and PNG images are allowed"
)

// PostForm - dữ liệu submit từ create/edit form.
// Group nhận id hoặc slug của group; rỗng = không có group.
type PostForm struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

// Normalize trim whitespace trước khi validate
func (f *PostForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
}

// Validate kiểm tra các rule không cần DB (text bắt buộc).
// Group existence được kiểm tra bởi service.
func (f PostForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Text, validation.Required.Error(MsgTextRequired)),
	)
}

// ImageUpload - file ảnh optional kèm form
type ImageUpload struct {
	Filename string
	Data     []byte
}

// FormErrors - field -> message
type FormErrors map[string]string

func (e FormErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func (e FormErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FormErrors) HasErrors() bool {
	return len(e) > 0
}

// FormErrorsFrom chuyển ozzo validation.Errors sang FormErrors
func FormErrorsFrom(err error) FormErrors {
	out := FormErrors{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out.Add(field, ferr.Error())
		}
		return out
	}
	if err != nil {
		out.Add("__all__", err.Error())
	}
	return out
}
