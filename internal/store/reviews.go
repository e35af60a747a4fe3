package store

import (
	"time"

	"farma-shop/internal/domain"
)

// AddReview appends a review to the product's list and the flat review
// log. The owner must currently hold the product in their cart; this is
// the one cross-collection invariant enforced at write time.
func (s *Store) AddReview(productID int64, owner string, review domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	idx := -1
	for i, p := range doc.Products {
		if p.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProductNotFound
	}

	if !hasCartItem(doc, productID, owner) {
		return ErrNotInCart
	}

	review.CreatedAt = time.Now()
	doc.Products[idx].Reviews = append(doc.Products[idx].Reviews, review)
	doc.Reviews = append(doc.Reviews, review)

	return s.write(doc)
}

// DeleteReview removes the review at index from the product's list. Admin
// operation; the flat log keeps its copy.
func (s *Store) DeleteReview(productID int64, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i, p := range doc.Products {
		if p.ID != productID {
			continue
		}
		if index < 0 || index >= len(p.Reviews) {
			return ErrReviewIndexOutOfRange
		}
		doc.Products[i].Reviews = append(p.Reviews[:index], p.Reviews[index+1:]...)
		return s.write(doc)
	}
	return ErrProductNotFound
}

// TotalReviews returns the size of the flat review log.
func (s *Store) TotalReviews() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.read().Reviews)
}
