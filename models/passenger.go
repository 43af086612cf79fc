package models

import (
	"strconv"
	"strings"
)

type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerInfant PassengerType = "infant"
)

// infantAgeLimit is exclusive: age 5 is an adult.
const infantAgeLimit = 5

type Passenger struct {
	Name          string        `json:"name"`
	Age           string        `json:"age"` // string-encoded integer, as entered
	Gender        string        `json:"gender"`
	PassengerType PassengerType `json:"passenger_type"`
}

// DerivePassengerType maps a string-encoded age to a passenger type.
// An unparseable age yields adult, matching the blank-passenger default.
func DerivePassengerType(age string) PassengerType {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err == nil && n < infantAgeLimit {
		return PassengerInfant
	}
	return PassengerAdult
}

// Complete reports whether all required fields carry a non-empty trimmed value.
func (p Passenger) Complete() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Age) != "" &&
		strings.TrimSpace(p.Gender) != ""
}

// Roster is the ordered collection of travelers for one itinerary.
// Passengers are appended and edited in place, never removed.
type Roster []Passenger

// Add appends a blank adult passenger and returns its index.
func (r *Roster) Add() int {
	*r = append(*r, Passenger{PassengerType: PassengerAdult})
	return len(*r) - 1
}

// Update replaces one field at index. A write to the age field re-derives
// the passenger type in the same step, so age and type never disagree.
// The passenger type itself is not settable. Callers guarantee index bounds.
func (r Roster) Update(index int, field, value string) {
	p := &r[index]
	switch field {
	case "name":
		p.Name = value
	case "gender":
		p.Gender = value
	case "age":
		p.Age = value
		p.PassengerType = DerivePassengerType(value)
	}
}

// FirstIncomplete returns the index of the first passenger missing a
// required field, or -1 when every passenger is complete.
func (r Roster) FirstIncomplete() int {
	for i, p := range r {
		if !p.Complete() {
			return i
		}
	}
	return -1
}

// Snapshot returns an independent copy, safe against later roster edits.
func (r Roster) Snapshot() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}
