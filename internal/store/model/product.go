package model

// Product is the persisted form of one imported record. The sku is the
// natural unique key: there is at most one row per sku and its non-key
// fields always reflect the most recently applied candidate.
type Product struct {
	ID          uint     `gorm:"primaryKey"`
	Sku         string   `gorm:"uniqueIndex;not null"`
	Name        string   `gorm:"not null"`
	Description string
	Price       *float64
	Active      bool `gorm:"not null"`
}

type ProductList []Product
