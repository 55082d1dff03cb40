package store

import (
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-sales/internal/sales"
)

// IncompleteCondition returns a WHERE condition matching records with at
// least one NULL column.
func IncompleteCondition() string {
	conds := make([]string, 0, len(sales.Columns))
	for _, col := range sales.Columns {
		conds = append(conds, col+" IS NULL")
	}
	return strings.Join(conds, " OR ")
}

// ShiftCaseSQL returns a CASE expression bucketing the integer hour
// expression into shift labels.
func ShiftCaseSQL(hourExpr string) string {
	return fmt.Sprintf(`CASE
            WHEN %[1]s < %[2]d THEN '%[4]s'
            WHEN %[1]s BETWEEN %[2]d AND %[3]d THEN '%[5]s'
            ELSE '%[6]s'
        END`,
		hourExpr, sales.AfternoonStartHour, sales.AfternoonEndHour,
		sales.Morning, sales.Afternoon, sales.Evening)
}
