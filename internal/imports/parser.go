package imports

import (
	"strconv"
	"strings"

	"github.com/acme/product-importer/internal/store/model"
)

const (
	ColumnSku         = "sku"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnActive      = "active"
)

// Header maps column names to their position in a delimited record.
// Cell values are sanitized rather than rejected: a byte order mark or
// invalid UTF-8 sequence in an exported file must never fail an import.
type Header struct {
	index map[string]int
}

func NewHeader(record []string) *Header {
	index := make(map[string]int, len(record))
	for i, cell := range record {
		name := strings.TrimSpace(strings.TrimPrefix(sanitize(cell), "\uFEFF"))
		if name == "" {
			continue
		}
		index[name] = i
	}
	return &Header{index: index}
}

// Missing returns the required columns absent from the header.
func (h *Header) Missing(required ...string) []string {
	var missing []string
	for _, column := range required {
		if _, ok := h.index[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// Value returns the sanitized cell for the named column, or the empty
// string when the column or cell is absent.
func (h *Header) Value(record []string, column string) string {
	i, ok := h.index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return sanitize(record[i])
}

// CandidateFromRecord builds a product candidate from one data row.
// It reports false when the trimmed sku is empty, which drops the row.
// A price that fails numeric coercion is nulled, never a reason to
// reject the row.
func CandidateFromRecord(header *Header, record []string) (model.Product, bool) {
	sku := strings.TrimSpace(header.Value(record, ColumnSku))
	if sku == "" {
		return model.Product{}, false
	}

	return model.Product{
		Sku:         sku,
		Name:        header.Value(record, ColumnName),
		Description: header.Value(record, ColumnDescription),
		Price:       ParsePrice(header.Value(record, ColumnPrice)),
		Active:      ParseActive(header.Value(record, ColumnActive)),
	}, true
}

// ParsePrice coerces a price cell to a float. Empty or unparsable cells
// yield a null price.
func ParsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &price
}

// ParseActive coerces an active cell to a bool, defaulting to true.
func ParseActive(raw string) bool {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return true
	}
	active, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return active
}

func sanitize(s string) string {
	return strings.ToValidUTF8(s, "")
}
