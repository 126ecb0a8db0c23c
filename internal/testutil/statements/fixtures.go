package statements

import "github.com/Veraticus/finpulse/internal/model"

type part struct {
	category model.Category
	amount   int64
	count    int
}

// Fixture is a named customer history together with the persona it should produce.
type Fixture struct {
	Name      string
	Persona   model.Persona
	LifeEvent model.LifeEvent
	parts     []part
}

// Transactions builds the fixture's history.
func (f Fixture) Transactions() []model.Transaction {
	return New().WithFixture(f).Build()
}

// Predefined fixtures for common customer shapes.
var (
	// FixtureEmpty has no history at all.
	FixtureEmpty = Fixture{
		Name:      "empty",
		Persona:   model.PersonaGeneral,
		LifeEvent: model.LifeEventUnknown,
	}

	// FixtureSalariedSaver is paid and invests without spending much.
	FixtureSalariedSaver = Fixture{
		Name:      "salaried saver",
		Persona:   model.PersonaSaver,
		LifeEvent: model.LifeEventEmployed,
		parts: []part{
			{model.CategorySalary, 5_000, 1},
			{model.CategoryInvestment, 3_000, 1},
		},
	}

	// FixtureStudent pays tuition twice.
	FixtureStudent = Fixture{
		Name:      "student",
		Persona:   model.PersonaStudent,
		LifeEvent: model.LifeEventHigherEducation,
		parts: []part{
			{model.CategoryEducation, 2_000, 2},
		},
	}

	// FixtureFrequentTraveler flies more than three times.
	FixtureFrequentTraveler = Fixture{
		Name:      "frequent traveler",
		Persona:   model.PersonaSpender,
		LifeEvent: model.LifeEventFrequentTraveler,
		parts: []part{
			{model.CategoryTravel, 15_000, 4},
		},
	}

	// FixtureHeavyDiner eats out eleven times.
	FixtureHeavyDiner = Fixture{
		Name:      "heavy diner",
		Persona:   model.PersonaSpender,
		LifeEvent: model.LifeEventDiningOut,
		parts: []part{
			{model.CategoryFood, 100, 11},
		},
	}

	// FixtureStretchedRenter is paid but rent leaves little over.
	FixtureStretchedRenter = Fixture{
		Name:      "stretched renter",
		Persona:   model.PersonaCreditDependent,
		LifeEvent: model.LifeEventRenter,
		parts: []part{
			{model.CategorySalary, 1_000, 1},
			{model.CategoryRent, 900, 2},
		},
	}
)

// AllFixtures returns every predefined fixture.
func AllFixtures() []Fixture {
	return []Fixture{
		FixtureEmpty,
		FixtureSalariedSaver,
		FixtureStudent,
		FixtureFrequentTraveler,
		FixtureHeavyDiner,
		FixtureStretchedRenter,
	}
}
