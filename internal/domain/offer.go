package domain

// OfferType names the three staged in-venue perks.
type OfferType string

const (
	OfferSpicyMargarita OfferType = "spicy-margarita"
	OfferIceyMargarita  OfferType = "icey-margarita"
	OfferFreeCocktail   OfferType = "free-cocktail"
)

// Offer binds a perk to the stage a guest must hold to redeem it and
// the visit row a successful redemption records.
type Offer struct {
	Type          OfferType
	RequiredStage int
	VisitNumber   int
}

var offers = map[OfferType]Offer{
	OfferSpicyMargarita: {Type: OfferSpicyMargarita, RequiredStage: StageVerified, VisitNumber: 1},
	OfferIceyMargarita:  {Type: OfferIceyMargarita, RequiredStage: StageFirstVisit, VisitNumber: 2},
	OfferFreeCocktail:   {Type: OfferFreeCocktail, RequiredStage: StageSecondVisit, VisitNumber: 3},
}

// OfferByType resolves an offer from its wire name.
func OfferByType(t OfferType) (Offer, bool) {
	o, ok := offers[t]
	return o, ok
}

// OfferForVisit resolves the offer whose redemption records the given
// visit number.
func OfferForVisit(visitNumber int) (Offer, bool) {
	for _, o := range offers {
		if o.VisitNumber == visitNumber {
			return o, true
		}
	}
	return Offer{}, false
}

// NextOffer returns the coupon a guest at the given post-redemption
// stage should receive next, if any.
func NextOffer(stage int) (Offer, bool) {
	switch stage {
	case StageFirstVisit:
		return offers[OfferIceyMargarita], true
	case StageSecondVisit:
		return offers[OfferFreeCocktail], true
	default:
		return Offer{}, false
	}
}

// Eligibility is the Evaluator's verdict on showing or redeeming an
// offer for a guest. Every value renders a distinct message; old links
// get reused constantly and a generic failure helps nobody at the bar.
type Eligibility int

const (
	Eligible Eligibility = iota
	AlreadyCompleted
	NotYetAvailable
	AlreadyPassed
)

func (e Eligibility) String() string {
	switch e {
	case Eligible:
		return "eligible"
	case AlreadyCompleted:
		return "already_completed"
	case NotYetAvailable:
		return "not_yet_available"
	case AlreadyPassed:
		return "already_passed"
	default:
		return "unknown"
	}
}
