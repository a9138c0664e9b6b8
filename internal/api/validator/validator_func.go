package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Organization ids are opaque 26-character identifiers issued by the tenant
// management service (ULID alphabet, no ambiguous characters).
const orgIDRegex = `^[0-9A-HJKMNP-TV-Z]{26}$`

const (
	OrgIDTag = "orgid"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	OrgIDTag: ValidateOrgID,
}

func ValidateOrgID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return regexp.MustCompile(orgIDRegex).MatchString(id)
}
