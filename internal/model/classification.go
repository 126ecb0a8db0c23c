// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Persona is the coarse behavioural classification of a customer.
type Persona string

// Persona constants.
const (
	PersonaStudent         Persona = "student"
	PersonaSpender         Persona = "spender"
	PersonaSaver           Persona = "saver"
	PersonaCreditDependent Persona = "credit_dependent"
	PersonaGeneral         Persona = "general"
)

// ParsePersona maps a raw tag onto a Persona, defaulting unknown tags to PersonaGeneral.
func ParsePersona(raw string) Persona {
	switch p := Persona(strings.ToLower(strings.TrimSpace(raw))); p {
	case PersonaStudent, PersonaSpender, PersonaSaver, PersonaCreditDependent, PersonaGeneral:
		return p
	default:
		return PersonaGeneral
	}
}

// LifeEvent is a real-world occurrence inferred from transactions or a description.
type LifeEvent string

// Life event constants.
const (
	LifeEventHigherEducation  LifeEvent = "higher_education"
	LifeEventFrequentTraveler LifeEvent = "frequent_traveler"
	LifeEventRenter           LifeEvent = "renter"
	LifeEventEmployed         LifeEvent = "employed"
	LifeEventDiningOut        LifeEvent = "dining_out"
	LifeEventShopping         LifeEvent = "shopping"
	LifeEventUnknown          LifeEvent = "unknown"
)

// ParseLifeEvent maps a raw tag onto a LifeEvent, defaulting unknown tags to LifeEventUnknown.
func ParseLifeEvent(raw string) LifeEvent {
	switch e := LifeEvent(strings.ToLower(strings.TrimSpace(raw))); e {
	case LifeEventHigherEducation, LifeEventFrequentTraveler, LifeEventRenter,
		LifeEventEmployed, LifeEventDiningOut, LifeEventShopping, LifeEventUnknown:
		return e
	default:
		return LifeEventUnknown
	}
}

// ClassificationSource records which classifier produced a result.
type ClassificationSource string

// Classification source constants.
const (
	SourceRules    ClassificationSource = "rules"
	SourceModel    ClassificationSource = "model"
	SourceFallback ClassificationSource = "fallback"
)

// ClassifierResult is the persona and life-event signal for one customer.
type ClassifierResult struct {
	Persona    Persona              `json:"persona" yaml:"persona"`
	LifeEvent  LifeEvent            `json:"life_event" yaml:"life_event"`
	Reason     string               `json:"reason" yaml:"reason"`
	Source     ClassificationSource `json:"source" yaml:"source"`
	Confidence int                  `json:"confidence" yaml:"confidence"`
}

// Qualifies reports whether the result carries a pattern worth acting on.
func (r ClassifierResult) Qualifies() bool {
	return r.Persona != PersonaGeneral || r.LifeEvent != LifeEventUnknown
}
