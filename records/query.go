package records

// FilterOp is a comparison used in a Filter.
type FilterOp int

const (
	OpEq FilterOp = iota
	OpNeq
	OpIn
)

// Filter restricts a query to rows whose Field matches Value.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Eq matches rows where field equals v. A nil v matches NULL.
func Eq(field string, v any) Filter { return Filter{Field: field, Op: OpEq, Value: v} }

// Neq matches rows where field differs from v.
func Neq(field string, v any) Filter { return Filter{Field: field, Op: OpNeq, Value: v} }

// In matches rows where field is one of values.
func In(field string, values ...any) Filter { return Filter{Field: field, Op: OpIn, Value: values} }

// ByID is shorthand for Eq("id", id).
func ByID(id string) Filter { return Eq("id", id) }

// Order sorts a list by Field.
type Order struct {
	Field string
	Desc  bool
}

// Asc orders by field ascending.
func Asc(field string) Order { return Order{Field: field} }

// Desc orders by field descending.
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Query describes a List call. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

// Patch maps field names to new values for Update.
type Patch map[string]any
