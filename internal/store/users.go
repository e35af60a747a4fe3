package store

import "farma-shop/internal/domain"

// AddUser appends a user record. Email uniqueness is not enforced here;
// callers must check with FindUserByEmail first.
func (s *Store) AddUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	doc.Users = append(doc.Users, u)
	return s.write(doc)
}

// FindUserByEmail returns the user keyed by email.
func (s *Store) FindUserByEmail(email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for _, u := range doc.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

// Users returns every registered user.
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().Users
}

// UserPatch carries profile fields to overwrite. Nil pointers keep the
// existing value; the email key never changes.
type UserPatch struct {
	Name         *string
	CPF          *string
	BirthDate    *string
	AreaCode     *string
	Phone        *string
	PasswordHash *string
}

// UpdateUserByEmail shallow-merges the patch over the stored record.
func (s *Store) UpdateUserByEmail(email string, patch UserPatch) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i, u := range doc.Users {
		if u.Email != email {
			continue
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.CPF != nil {
			u.CPF = *patch.CPF
		}
		if patch.BirthDate != nil {
			u.BirthDate = *patch.BirthDate
		}
		if patch.AreaCode != nil {
			u.AreaCode = *patch.AreaCode
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.PasswordHash != nil {
			u.PasswordHash = *patch.PasswordHash
		}
		doc.Users[i] = u
		if err := s.write(doc); err != nil {
			return domain.User{}, err
		}
		return u, nil
	}
	return domain.User{}, ErrUserNotFound
}

// DeleteUserByEmail removes the user and every cart row they own.
func (s *Store) DeleteUserByEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	idx := -1
	for i, u := range doc.Users {
		if u.Email == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUserNotFound
	}
	doc.Users = append(doc.Users[:idx], doc.Users[idx+1:]...)

	kept := doc.Cart[:0]
	for _, item := range doc.Cart {
		if item.Owner != email {
			kept = append(kept, item)
		}
	}
	doc.Cart = kept

	return s.write(doc)
}
