package types

// Column names that every recipient CSV must provide. Matching is
// case-sensitive.
const (
	ColumnFirstname = "Firstname"
	ColumnLastname  = "Lastname"
	ColumnEmail     = "email"
)

// RequiredColumns lists the columns the recipient loader validates the CSV
// header against.
var RequiredColumns = []string{ColumnFirstname, ColumnLastname, ColumnEmail}

// Recipient is one row of the recipient CSV: an ordered mapping from column
// name to value. It is created once at load time and never mutated.
type Recipient struct {
	columns []string
	values  map[string]string
}

func NewRecipient(columns []string, values map[string]string) Recipient {
	return Recipient{
		columns: columns,
		values:  values,
	}
}

// Get returns the value for a column and whether the column had a value in
// this row.
func (r Recipient) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in CSV header order. The slice is shared
// across all recipients of one load and must not be modified.
func (r Recipient) Columns() []string {
	return r.columns
}

// Values returns a copy of the field mapping, suitable for use as template
// context.
func (r Recipient) Values() map[string]string {
	values := make(map[string]string, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	return values
}

func (r Recipient) Firstname() string {
	return r.values[ColumnFirstname]
}

func (r Recipient) Lastname() string {
	return r.values[ColumnLastname]
}

func (r Recipient) Email() string {
	return r.values[ColumnEmail]
}
