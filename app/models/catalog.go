package models

import (
	"github.com/shopspring/decimal"

	"github.com/asadazo/asadazo/pkg/collection"
)

type Category string

const (
	CategoryMeat     Category = "meat"
	CategoryPork     Category = "pork"
	CategorySausages Category = "sausages"
	CategoryAchuras  Category = "achuras"
)

// Product is a catalog cut sold by weight.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PricePerKg  decimal.Decimal `json:"pricePerKg"`
	MinPackKg   float64         `json:"minPackKg"`
	Category    Category        `json:"category"`
	Stock       int             `json:"stock"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

func cut(id, name, desc string, price int64, minPack float64, cat Category, stock int) Product {
	return Product{
		ID:          id,
		Name:        name,
		Description: desc,
		PricePerKg:  decimal.NewFromInt(price),
		MinPackKg:   minPack,
		Category:    cat,
		Stock:       stock,
	}
}

var catalog = []Product{
	cut("entrana", "Entraña", "Premium skirt steak, perfect for grilling", 24, 1, CategoryMeat, 20),
	cut("cuadril", "Cuadril", "Top sirloin, tender and flavorful", 24, 1, CategoryMeat, 20),
	cut("vacio", "Vacío", "Flank steak, perfect for asado", 22, 2, CategoryMeat, 30),
	cut("bola-de-lomo", "Bola de Lomo", "Eye of round, lean and tender", 26, 1, CategoryMeat, 15),
	cut("peceto", "Peceto", "Top round, excellent for roasting", 26, 1, CategoryMeat, 15),
	cut("asado-costillar-marcado", "Asado (costillar marcado)", "Rib rack, traditional asado cut", 22, 10, CategoryMeat, 8),
	cut("tira-de-asado", "Tira de Asado", "Short ribs, classic asado", 22, 1, CategoryMeat, 30),
	cut("bife-de-chorizo", "Bife de Chorizo", "Strip steak, premium grilling cut", 28, 1, CategoryMeat, 25),
	cut("ojo-de-bife", "Ojo de Bife", "Ribeye steak, marbled and juicy", 45, 2.5, CategoryMeat, 12),
	cut("lomo", "Lomo", "Tenderloin, the most tender cut", 47, 2.5, CategoryMeat, 10),
	cut("colita-de-cuadril", "Colita de Cuadril", "Tri-tip, flavorful and versatile", 26, 1, CategoryMeat, 15),
	cut("paleta", "Paleta", "Chuck roast, perfect for slow cooking", 18, 1, CategoryMeat, 20),
	cut("falda", "Falda", "Skirt steak, great for tacos", 16, 0.5, CategoryMeat, 20),
	cut("matambre", "Matambre", "Flank steak roll, traditional preparation", 21, 1, CategoryMeat, 12),
	cut("picania", "Picaña", "Top sirloin cap, Brazilian favorite", 34, 1, CategoryMeat, 12),

	cut("matambre-de-cerdo", "Matambre de Cerdo", "Pork flank, perfect for grilling", 21, 1, CategoryPork, 15),
	cut("bondiola", "Bondiola", "Pork shoulder, great for roasting", 19, 2, CategoryPork, 15),
	cut("costilla-de-cerdo", "Costilla de Cerdo", "Pork ribs, perfect for BBQ", 18, 1, CategoryPork, 20),
	cut("lomo-de-cerdo", "Lomo de Cerdo", "Pork tenderloin, lean and tender", 24, 2, CategoryPork, 10),
	cut("chuleta-de-cerdo", "Chuleta de Cerdo", "Pork chops, classic cut", 20, 1, CategoryPork, 20),
	cut("pernil", "Pernil", "Pork leg, traditional roast (min by request)", 17, 0, CategoryPork, 0),

	cut("chorizo-criollo", "Chorizo Criollo", "Traditional Argentine chorizo", 18, 0.3, CategorySausages, 40),
	cut("morcilla", "Morcilla", "Blood sausage, rich and flavorful", 18, 0.3, CategorySausages, 30),
	cut("chorizo-parrillero", "Chorizo Parrillero", "Grilling chorizo, perfect for asado", 19, 1, CategorySausages, 30),
	cut("salchicha-parrillera", "Salchicha Parrillera", "Grilling sausages, classic asado", 18, 0.3, CategorySausages, 30),

	cut("chinchulines", "Chinchulines", "Small intestines, grilled to perfection", 32, 0.5, CategoryAchuras, 10),
	cut("molleja", "Molleja", "Sweetbreads, a delicacy", 45, 0.5, CategoryAchuras, 8),
	cut("tripa-gorda", "Tripa Gorda", "Large intestines, for stuffing", 18, 0.5, CategoryAchuras, 10),
}

// Catalog returns a copy of the product list.
func Catalog() []Product {
	return append([]Product(nil), catalog...)
}

// FindProduct looks a cut up by id.
func FindProduct(id string) (Product, bool) {
	return collection.First(catalog, func(p Product) bool { return p.ID == id })
}

// InStockByCategory returns the in-stock cuts of one category.
func InStockByCategory(cat Category) []Product {
	return collection.Filter(catalog, func(p Product) bool { return p.Category == cat && p.InStock() })
}
