package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type SubjectParams struct {
	Name string `json:"name" validate:"required"`
}

type ClassParams struct {
	Name string `json:"name" validate:"required"`
}

// UploadParams are the form fields sent along with an uploaded file.
type UploadParams struct {
	Subject   string `form:"subject" validate:"required"`
	ClassName string `form:"class_name" validate:"required"`
	IndexKey  string `form:"index_key"`
}

var validate = validator.New()

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *SubjectParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *ClassParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *UploadParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	errors := make(map[string]string, len(errs))
	for _, e := range errs {
		errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return errors
}
