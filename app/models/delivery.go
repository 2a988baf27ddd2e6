package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DeliveryPricing holds the zone fee table.
type DeliveryPricing struct {
	InsideRingFee  decimal.Decimal
	OutsideRingFee decimal.Decimal
	// FreeThreshold waives the inside-ring fee when the subtotal is strictly
	// greater than it.
	FreeThreshold decimal.Decimal
}

// DefaultDeliveryPricing is €15 inside the ring (free above €80), €25 outside.
func DefaultDeliveryPricing() DeliveryPricing {
	return DeliveryPricing{
		InsideRingFee:  decimal.NewFromInt(15),
		OutsideRingFee: decimal.NewFromInt(25),
		FreeThreshold:  decimal.NewFromInt(80),
	}
}

// ParseDeliveryPricing builds a table from decimal strings.
func ParseDeliveryPricing(inside, outside, threshold string) (DeliveryPricing, error) {
	var p DeliveryPricing
	var err error
	if p.InsideRingFee, err = decimal.NewFromString(inside); err != nil {
		return p, fmt.Errorf("inside-ring fee %q: %w", inside, err)
	}
	if p.OutsideRingFee, err = decimal.NewFromString(outside); err != nil {
		return p, fmt.Errorf("outside-ring fee %q: %w", outside, err)
	}
	if p.FreeThreshold, err = decimal.NewFromString(threshold); err != nil {
		return p, fmt.Errorf("free threshold %q: %w", threshold, err)
	}
	return p, nil
}

// Fee returns the delivery fee for zone given the order subtotal.
func (p DeliveryPricing) Fee(zone DeliveryZone, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch zone {
	case ZonePickup:
		return decimal.Zero, nil
	case ZoneInsideRing:
		if subtotal.GreaterThan(p.FreeThreshold) {
			return decimal.Zero, nil
		}
		return p.InsideRingFee, nil
	case ZoneOutsideRing:
		return p.OutsideRingFee, nil
	}
	return decimal.Zero, fmt.Errorf("unknown delivery zone %q", zone)
}
