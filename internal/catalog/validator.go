package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json name so errors read "brief_description".
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate turns a raw record into an Entry, requiring non-empty category,
// subcategory and brief_description. Keys match case-insensitively. Nothing
// is repaired or inferred: the first missing field is reported as a
// MissingFieldError.
func Validate(rec RawRecord) (Entry, error) {
	e := Entry{Block: rec.Block}
	for _, f := range rec.Fields {
		value := strings.TrimSpace(f.Value)
		switch name := canonicalField(f.Key); name {
		case fieldID:
			e.ID = value
		case fieldTopic:
			e.Topic = value
		case fieldCategory:
			e.Category = value
		case fieldSubcategory:
			e.Subcategory = value
		case fieldBriefDescription:
			e.BriefDescription = value
		case fieldDescription:
			e.Description = value
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]string)
			}
			e.Extra[name] = value
		}
	}

	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Entry{}, &MissingFieldError{Block: rec.Block, Field: verrs[0].Field()}
		}
		return Entry{}, fmt.Errorf("validate block %d: %w", rec.Block, err)
	}
	return e, nil
}

// ValidateAll validates records in order and stops at the first failure.
func ValidateAll(recs []RawRecord) ([]Entry, error) {
	out := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		e, err := Validate(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
