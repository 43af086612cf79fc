package services

import (
	"flight-booking/models"

	"github.com/shopspring/decimal"
)

// FareService derives per-passenger, per-leg fares from an itinerary.
// Pure computation, no I/O; amounts stay full precision until display.
type FareService struct{}

func NewFareService() *FareService {
	return &FareService{}
}

// FareFor prices one passenger on one leg. Round trip looks the passenger
// type up in the leg's fare table, where a missing tier resolves to zero.
// One way charges the outbound flight's flat fare regardless of passenger
// type, and its return leg is always zero.
func (s *FareService) FareFor(it models.Itinerary, p models.Passenger, leg models.Leg) decimal.Decimal {
	if it.RoundTrip {
		if leg == models.LegReturn {
			return it.ReturnFares.Lookup(p.PassengerType)
		}
		return it.OutboundFares.Lookup(p.PassengerType)
	}

	if leg == models.LegReturn || it.Outbound == nil {
		return decimal.Zero
	}
	return it.Outbound.Fare
}

// LegTotal sums FareFor over the whole roster for one leg.
func (s *FareService) LegTotal(it models.Itinerary, roster models.Roster, leg models.Leg) decimal.Decimal {
	total := decimal.Zero
	for _, p := range roster {
		total = total.Add(s.FareFor(it, p, leg))
	}
	return total
}

// GrandTotal is outbound plus return. For a one-way itinerary the return
// term is zero, so the sum always equals LegTotal(outbound)+LegTotal(return).
func (s *FareService) GrandTotal(it models.Itinerary, roster models.Roster) decimal.Decimal {
	return s.LegTotal(it, roster, models.LegOutbound).
		Add(s.LegTotal(it, roster, models.LegReturn))
}

// GrandTotalMinorUnits converts the grand total to minor currency units
// for the checkout gateway (amount * 100). Fares carrying more precision
// than one minor unit round half away from zero instead of truncating.
func (s *FareService) GrandTotalMinorUnits(it models.Itinerary, roster models.Roster) int64 {
	return s.GrandTotal(it, roster).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
