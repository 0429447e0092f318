// Package validation checks create/update payloads and turns them into
// normalized commands, or into a field -> messages map describing every problem.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
)

// Errors maps a payload field to its messages. It is returned as an error when
// a payload is invalid.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrors extracts field errors from err, if it carries any.
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Field returns a single-field error.
func Field(field, message string) Errors {
	return Errors{field: {message}}
}

const (
	msgRequired      = "This field is required."
	msgInvalidNumber = "Enter a number."
)

// Messages for constraint failures detected by the store.
const (
	MsgInvalidCategory = "Select a valid choice. That choice is not one of the available choices."
	MsgDuplicateName   = "Category with this name already exists."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collect converts validator failures into Errors keyed by json field name.
func collect(err error, into Errors) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		into.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// parseCategoryID accepts a positive integer as a JSON number or a JSON string.
func parseCategoryID(raw json.RawMessage) (uint, string) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, msgRequired
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, MsgInvalidCategory
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return 0, msgRequired
		}
	}

	id, err := strconv.ParseUint(text, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, MsgInvalidCategory
	}
	return uint(id), ""
}

// parsePrice accepts a JSON number or a JSON string holding a number.
func parsePrice(raw json.RawMessage) (decimal.Decimal, string) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Decimal{}, msgRequired
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, msgInvalidNumber
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return decimal.Decimal{}, msgRequired
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, msgInvalidNumber
	}

	switch err := models.CheckPrice(d); {
	case errors.Is(err, models.ErrNegativePrice):
		return decimal.Decimal{}, "Ensure this value is greater than or equal to 0."
	case errors.Is(err, models.ErrPricePrecision):
		return decimal.Decimal{}, "Ensure that there are no more than 2 decimal places."
	case errors.Is(err, models.ErrPriceTooLarge):
		return decimal.Decimal{}, "Ensure that there are no more than 8 digits before the decimal point."
	}
	return d, ""
}
