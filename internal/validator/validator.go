package validator

import (
	"reflect"
	"strings"

	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/types"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// NewValidator builds the process-wide validator. Field errors are reported
// under their JSON names so details match what the client sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("upload_id", isUploadID)

	validate = v
	return validate
}

func GetValidator() *validator.Validate {
	return validate
}

func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, fe := range validateErrs {
				details[fe.Field()] = describe(fe)
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func isUploadID(fl validator.FieldLevel) bool {
	return types.HasIDPrefix(fl.Field().String(), types.UUID_PREFIX_UPLOAD)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "upload_id":
		return "must be an upload id"
	default:
		return fe.Error()
	}
}
