package validations

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/ateneai/wa-relay/domains/send"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
)

var phonePattern = regexp.MustCompile(`^\+?\d+$`)

func ValidateSendText(request send.TextRequest) error {
	err := validation.ValidateStruct(&request,
		validation.Field(&request.To, validation.Required, validation.Match(phonePattern)),
		validation.Field(&request.Text, validation.Required, validation.Length(1, 4096)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateSendMedia(request send.MediaRequest) error {
	err := validation.ValidateStruct(&request,
		validation.Field(&request.To, validation.Required, validation.Match(phonePattern)),
		validation.Field(&request.MediaURL, validation.Required, is.URL),
		validation.Field(&request.Caption, validation.Length(0, 1024)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateSendLocation(request send.LocationRequest) error {
	err := validation.ValidateStruct(&request,
		validation.Field(&request.To, validation.Required, validation.Match(phonePattern)),
		validation.Field(&request.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&request.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
