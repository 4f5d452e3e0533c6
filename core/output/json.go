package output

import (
	"encoding/json"
	"io"

	"rental-engine/core/engine"
)

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// RenderQuote implements Formatter
func (f *JSONFormatter) RenderQuote(w io.Writer, quote *engine.Quote) error {
	return encode(w, quote)
}

type stockDocument struct {
	ProductID string `json:"product_id"`
	Available bool   `json:"available"`
	*engine.StockResult
}

// RenderStock implements Formatter
func (f *JSONFormatter) RenderStock(w io.Writer, productID string, stock *engine.StockResult) error {
	return encode(w, stockDocument{
		ProductID:   productID,
		Available:   stock.Available(),
		StockResult: stock,
	})
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
