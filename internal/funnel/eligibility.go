package funnel

import (
	"context"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

// EvaluateStage applies the stage-only eligibility rules. It is the
// fast path; the visit-existence check in Evaluate is the
// authoritative guard on top of it.
func EvaluateStage(offer domain.Offer, guest *domain.Guest) domain.Eligibility {
	switch {
	case guest.Stage >= domain.StageCompleted:
		// Funnel fully done; no offer survives this, whichever link
		// the guest clicked.
		return domain.AlreadyCompleted
	case guest.Stage < offer.RequiredStage:
		return domain.NotYetAvailable
	case guest.Stage > offer.RequiredStage:
		// The final offer at stage 3 is its own required stage, so it
		// can never land here; guard it explicitly anyway so a wiring
		// mistake upstream reads as eligible rather than passed.
		if offer.Type == domain.OfferFreeCocktail && guest.Stage == domain.StageSecondVisit {
			return domain.Eligible
		}
		return domain.AlreadyPassed
	default:
		return domain.Eligible
	}
}

// Evaluate decides whether an offer may be shown or redeemed for a
// guest. When the stage matches exactly, the recorded visits are
// consulted too: stage could theoretically disagree with visits under
// partial failure, and a stale offer reference must not redeem twice.
func (s *Service) Evaluate(ctx context.Context, offer domain.Offer, guest *domain.Guest) (domain.Eligibility, error) {
	if verdict := EvaluateStage(offer, guest); verdict != domain.Eligible {
		return verdict, nil
	}

	redeemed, err := s.visits.Exists(ctx, guest.ID, offer.VisitNumber)
	if err != nil {
		return 0, domain.Transient("check visit redemption", err)
	}
	if redeemed {
		return domain.AlreadyCompleted, nil
	}
	return domain.Eligible, nil
}
