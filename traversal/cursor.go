package traversal

// Order is the nesting of the row and column loops.
type Order string

const (
	// RowMajor iterates rows in the outer loop and columns in the inner loop.
	RowMajor Order = "row-major"
	// ColumnMajor iterates columns in the outer loop and rows in the inner loop.
	ColumnMajor Order = "column-major"
)

// Orders lists the orders in report order.
var Orders = []Order{RowMajor, ColumnMajor}

// Section returns the report header for the order.
func (o Order) Section() string {
	switch o {
	case RowMajor:
		return "ROW MAJOR: I-J LOOP"
	case ColumnMajor:
		return "COLUMN MAJOR: J-I LOOP"
	default:
		return string(o)
	}
}

// Cursor yields (i, j) pairs of an r×c index space in a fixed order,
// wrapping back to (0, 0) after r*c steps.
type Cursor struct {
	order Order
	r, c  int
	i, j  int
}

// NewCursor creates a cursor positioned at (0, 0).
func NewCursor(order Order, r, c int) *Cursor {
	return &Cursor{order: order, r: r, c: c}
}

// Reset moves the cursor back to (0, 0).
func (cur *Cursor) Reset() {
	cur.i, cur.j = 0, 0
}

// Next returns the current pair and advances.
func (cur *Cursor) Next() (i, j int) {
	i, j = cur.i, cur.j
	if cur.order == ColumnMajor {
		if cur.i++; cur.i == cur.r {
			cur.i = 0
			if cur.j++; cur.j == cur.c {
				cur.j = 0
			}
		}
		return i, j
	}

	if cur.j++; cur.j == cur.c {
		cur.j = 0
		if cur.i++; cur.i == cur.r {
			cur.i = 0
		}
	}
	return i, j
}
