package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/asadazo/asadazo/app/models"
)

// Suggestion is one proposed subscription line.
type Suggestion struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Weight      float64         `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	Reason      string          `json:"reason"`
}

type Suggestions struct {
	Suggestions  []Suggestion `json:"suggestions"`
	TotalWeight  float64      `json:"totalWeight"`
	TargetWeight float64      `json:"targetWeight"`
}

type candidate struct {
	id, name, reason string
	weekly, monthly  float64
	price            int64
}

// Ranked starting point. Weights are kg per delivery.
var candidates = []candidate{
	{"ojo-de-bife", "Ojo de Bife", "Premium ribeye, perfect for special occasions", 1, 2, 45},
	{"bife-de-chorizo", "Bife de Chorizo", "Classic Argentine strip steak", 1, 2, 28},
	{"entrana", "Entraña", "Tender skirt steak, great for grilling", 0.5, 1.5, 24},
	{"vacio", "Vacío", "Flavorful flank steak, ideal for asado", 0.5, 1.5, 22},
	{"tira-de-asado", "Asado", "Traditional Argentine short ribs", 1, 3, 22},
	{"cuadril", "Cuadril", "Versatile rump steak", 1, 2, 24},
}

const (
	weeklyTarget  = 4.0
	defaultTarget = 12.0
	minSuggestKg  = 0.5
)

type SuggestionService struct {
	// Catalog lists the products that may be suggested.
	Catalog func() []models.Product
}

func NewSuggestionService() *SuggestionService {
	return &SuggestionService{
		Catalog: func() []models.Product { return models.InStockByCategory(models.CategoryMeat) },
	}
}

// Suggest proposes a basket for a subscription type. Weekly baskets aim at
// 4kg, everything else at 12kg. When the in-stock candidates overshoot the
// target, the heaviest lines are shaved first, never below 0.5kg.
func (s *SuggestionService) Suggest(subType string) Suggestions {
	if subType == "" {
		subType = models.Weekly
	}
	target := defaultTarget
	if subType == models.Weekly {
		target = weeklyTarget
	}

	available := map[string]bool{}
	for _, p := range s.Catalog() {
		if p.InStock() {
			available[p.ID] = true
		}
	}

	out := []Suggestion{}
	var total float64
	for _, c := range candidates {
		if !available[c.id] {
			continue
		}
		w := c.monthly
		if subType == models.Weekly {
			w = c.weekly
		}
		out = append(out, Suggestion{
			ProductID:   c.id,
			ProductName: c.name,
			Weight:      w,
			Price:       decimal.NewFromInt(c.price),
			Reason:      c.reason,
		})
		total += w
	}

	if total > target {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
		remaining := total - target
		for i := range out {
			if remaining <= 0 {
				break
			}
			cut := min(out[i].Weight*0.5, remaining)
			out[i].Weight = max(minSuggestKg, out[i].Weight-cut)
			remaining -= cut
		}
		total = 0
		for _, sg := range out {
			total += sg.Weight
		}
	}

	return Suggestions{Suggestions: out, TotalWeight: total, TargetWeight: target}
}
