package project

import "fmt"

// ReviewCategories is the fixed co-evaluation rubric. A complete review
// scores every category from 1 to 5.
var ReviewCategories = []string{"commitment", "quality", "teamwork", "communication"}

// ValidateReview checks a peer review against the mutation-boundary rules:
// evaluator and target must be distinct roster members and every rubric
// category must carry a score in range. The document is left untouched on
// failure.
func (p *Project) ValidateReview(review PeerReview) error {
	if review.EvaluatorID == "" || !p.HasMember(review.EvaluatorID) {
		return fmt.Errorf("evaluator %q is not a roster member", review.EvaluatorID)
	}
	if review.TargetID == "" || !p.HasMember(review.TargetID) {
		return fmt.Errorf("target %q is not a roster member", review.TargetID)
	}
	if review.EvaluatorID == review.TargetID {
		return fmt.Errorf("a member cannot review themselves")
	}
	scored := make(map[string]bool, len(review.Items))
	for _, item := range review.Items {
		if item.Score < 1 || item.Score > 5 {
			return fmt.Errorf("category %q score %d is out of range 1-5", item.Category, item.Score)
		}
		scored[item.Category] = true
	}
	for _, category := range ReviewCategories {
		if !scored[category] {
			return fmt.Errorf("category %q is unscored", category)
		}
	}
	return nil
}

// SavePeerReview validates and stores a review, overwriting any existing
// review for the same ordered (evaluator, target) pair.
func (p *Project) SavePeerReview(review PeerReview) error {
	if err := p.ValidateReview(review); err != nil {
		return err
	}
	for i := range p.PeerReviews {
		if p.PeerReviews[i].EvaluatorID == review.EvaluatorID && p.PeerReviews[i].TargetID == review.TargetID {
			p.PeerReviews[i] = review
			return nil
		}
	}
	p.PeerReviews = append(p.PeerReviews, review)
	return nil
}
