package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePassengerType(t *testing.T) {
	assert.Equal(t, PassengerInfant, DerivePassengerType("3"))
	assert.Equal(t, PassengerInfant, DerivePassengerType("4"))
	assert.Equal(t, PassengerInfant, DerivePassengerType("0"))

	// the infant cutoff is exclusive
	assert.Equal(t, PassengerAdult, DerivePassengerType("5"))
	assert.Equal(t, PassengerAdult, DerivePassengerType("30"))

	// unparseable ages fall back to adult
	assert.Equal(t, PassengerAdult, DerivePassengerType(""))
	assert.Equal(t, PassengerAdult, DerivePassengerType("abc"))
	assert.Equal(t, PassengerInfant, DerivePassengerType(" 2 "))
}

func TestRoster_AddAndUpdate(t *testing.T) {
	var roster Roster

	idx := roster.Add()
	assert.Equal(t, 0, idx)
	assert.Equal(t, PassengerAdult, roster[0].PassengerType)
	assert.False(t, roster[0].Complete())

	roster.Update(0, "name", "Asha Rao")
	roster.Update(0, "gender", "female")
	roster.Update(0, "age", "3")

	assert.True(t, roster[0].Complete())
	assert.Equal(t, PassengerInfant, roster[0].PassengerType)

	// crossing the boundary re-derives the type in the same write
	roster.Update(0, "age", "5")
	assert.Equal(t, PassengerAdult, roster[0].PassengerType)

	// the derived type is not directly settable
	roster.Update(0, "passenger_type", "infant")
	assert.Equal(t, PassengerAdult, roster[0].PassengerType)
}

func TestRoster_FirstIncomplete(t *testing.T) {
	roster := Roster{
		{Name: "Asha Rao", Age: "30", Gender: "female", PassengerType: PassengerAdult},
		{Name: "Ravi Rao", Age: "", Gender: "male", PassengerType: PassengerAdult},
		{Name: "Meera Rao", Age: "2", Gender: "female", PassengerType: PassengerInfant},
	}

	assert.Equal(t, 1, roster.FirstIncomplete())

	roster.Update(1, "age", "34")
	assert.Equal(t, -1, roster.FirstIncomplete())

	// whitespace-only values do not count as filled
	roster.Update(2, "name", "   ")
	assert.Equal(t, 2, roster.FirstIncomplete())
}

func TestRoster_Snapshot(t *testing.T) {
	roster := Roster{{Name: "Asha Rao", Age: "30", Gender: "female", PassengerType: PassengerAdult}}

	snap := roster.Snapshot()
	roster.Update(0, "name", "Changed")

	assert.Equal(t, "Asha Rao", snap[0].Name)
	assert.Equal(t, "Changed", roster[0].Name)
}
