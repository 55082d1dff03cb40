package sales

// CategorySales is the net sale and order count of one category.
type CategorySales struct {
	Category    string
	NetSale     float64
	TotalOrders int64
}

// CategoryGenderCount is the number of transactions for a category and gender.
type CategoryGenderCount struct {
	Category     string
	Gender       string
	Transactions int64
}

// MonthlyAverage is the average sale of one month and its dense rank among
// the months of the same year.
type MonthlyAverage struct {
	Year    int
	Month   int
	AvgSale float64
	Rank    int64
}

// CustomerSales is the summed total sale of one customer.
type CustomerSales struct {
	CustomerID int32
	TotalSales float64
}

// CategoryCustomers is the number of distinct customers buying in a category.
type CategoryCustomers struct {
	Category        string
	UniqueCustomers int64
}

// ShiftCount is the number of orders placed during a shift.
type ShiftCount struct {
	Shift  Shift
	Orders int64
}

// Table is a query result with ordered columns and typed cells.
type Table struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given columns.
func NewTable(name, title string, columns ...string) *Table {
	return &Table{Name: name, Title: title, Columns: columns}
}

// Append adds a row. The number of cells must match the columns.
func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// RecordTable renders records as a table with one column per field.
func RecordTable(name, title string, records []Record) *Table {
	t := NewTable(name, title, Columns...)
	for _, r := range records {
		t.Append(r.Values()...)
	}
	return t
}
