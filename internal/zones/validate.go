package zones

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// rowConstraints is the validated projection of a staged row. Price and
// quota are nullable on the row itself; both must be set and non-negative
// before a commit.
type rowConstraints struct {
	DisplayName string   `validate:"required"`
	Price       *float64 `validate:"required,gte=0"`
	SeatsQuota  *int     `validate:"required,gte=0"`
}

func validateRows(rows []*ZoneRow) ValidationResult {
	for _, row := range rows {
		constraints := rowConstraints{
			DisplayName: row.DisplayName,
			Price:       row.Price,
			SeatsQuota:  row.SeatsQuota,
		}
		if err := validate.Struct(constraints); err != nil {
			return ValidationResult{Message: describeFailure(row, err)}
		}
	}
	return ValidationResult{OK: true}
}

func describeFailure(row *ZoneRow, err error) string {
	label := row.DisplayName
	if label == "" {
		label = "unnamed zone"
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return fmt.Sprintf("%s: invalid row", label)
	}

	switch fieldErrors[0].Field() {
	case "DisplayName":
		return fmt.Sprintf("%s: name is required", label)
	case "Price":
		return fmt.Sprintf("%s: price must be a non-negative number", label)
	case "SeatsQuota":
		return fmt.Sprintf("%s: seats quota must be a non-negative number", label)
	default:
		return fmt.Sprintf("%s: invalid row", label)
	}
}
