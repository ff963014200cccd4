package enums

// StockStatus is the derived stock classification shown on the console.
type StockStatus string

const (
	StockStatusIn  StockStatus = "in_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusOut StockStatus = "out_of_stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// ClassifyStock derives the stock status from an availability figure and the
// item's alert level. An availability equal to the alert level is low stock,
// not in stock; zero or negative availability is out of stock.
func ClassifyStock(available, alertLevel int) StockStatus {
	switch {
	case available <= 0:
		return StockStatusOut
	case available <= alertLevel:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}
