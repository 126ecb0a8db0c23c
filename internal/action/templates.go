package action

import (
	"fmt"

	"github.com/Veraticus/finpulse/internal/model"
)

// Template keys.
const (
	KeySafetyCounseling      = "safety.counseling"
	KeyNeutralAcknowledgment = "neutral.acknowledgment"
	offerKeyPrefix           = "offer."
)

// OfferKey returns the offer template key for a persona.
func OfferKey(p model.Persona) string {
	return offerKeyPrefix + string(model.ParsePersona(string(p)))
}

// offerTemplate is exhaustive over personas; unknown tags read as general.
func offerTemplate(p model.Persona, product string) string {
	name := model.ProductName(product)
	switch model.ParsePersona(string(p)) {
	case model.PersonaStudent:
		return fmt.Sprintf("Planning your studies? Our %s is built for students like you.", name)
	case model.PersonaSpender:
		return fmt.Sprintf("You make the most of every month. Our %s rewards the way you already spend.", name)
	case model.PersonaSaver:
		return fmt.Sprintf("Your steady saving puts you in a strong position. Our %s can help that money grow.", name)
	case model.PersonaCreditDependent:
		return fmt.Sprintf("We found an option that fits your current finances: our %s.", name)
	case model.PersonaGeneral:
		return fmt.Sprintf("Based on your profile, we recommend our %s.", name)
	}
	return fmt.Sprintf("Based on your profile, we recommend our %s.", name)
}

func counselingTemplate(product string) string {
	return fmt.Sprintf(
		"Your repayments are already high compared to your income. Before taking on more credit, consider our %s to build a safety buffer.",
		model.ProductName(product),
	)
}

const acknowledgmentTemplate = "Transaction analyzed successfully."
