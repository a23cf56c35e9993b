package proposal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidInputError reports a line item value that cannot be priced.
type InvalidInputError struct {
	Item  string
	Field string
	Value decimal.Decimal
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %s for %q: must not be negative", e.Field, e.Value.String(), e.Item)
}

// ReferenceError reports a rollup entry that points to a group which does
// not exist.
type ReferenceError struct {
	From string
	Key  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references unknown group %q", e.From, e.Key)
}
