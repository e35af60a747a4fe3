package store

import "farma-shop/internal/domain"

// Banners returns the promotional collection.
func (s *Store) Banners() []domain.Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().Banners
}

// BannerByID returns the banner with the given numeric id. Documents that
// stored ids as numeric strings are handled by the BannerID decoder.
func (s *Store) BannerByID(id int) (domain.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for _, b := range doc.Banners {
		if int(b.ID) == id {
			return b, nil
		}
	}
	return domain.Banner{}, ErrBannerNotFound
}

// BannerPatch carries banner fields to overwrite; nil keeps the existing
// value.
type BannerPatch struct {
	Image   *string
	Caption *string
	Link    *string
}

// UpdateBanner partially overwrites the banner. The collection is
// fixed-size, so an unknown id is a failure rather than an insert.
func (s *Store) UpdateBanner(id int, patch BannerPatch) (domain.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i, b := range doc.Banners {
		if int(b.ID) != id {
			continue
		}
		if patch.Image != nil {
			b.Image = *patch.Image
		}
		if patch.Caption != nil {
			b.Caption = *patch.Caption
		}
		if patch.Link != nil {
			b.Link = *patch.Link
		}
		doc.Banners[i] = b
		if err := s.write(doc); err != nil {
			return domain.Banner{}, err
		}
		return b, nil
	}
	return domain.Banner{}, ErrBannerNotFound
}
