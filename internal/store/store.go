// Package store provides single-writer access to the storefront's backing
// document: one JSON file holding every collection. Each operation reads
// the whole document, mutates an in-memory copy and writes the whole
// document back. A mutex serializes operations within this process; the
// file itself carries no lock, so concurrent processes race last-writer-wins.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"farma-shop/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrBannerNotFound        = errors.New("banner not found")
	ErrNotInCart             = errors.New("product not in cart")
	ErrReviewIndexOutOfRange = errors.New("review index out of range")
)

// Document is the complete persisted state. Collection keys follow the
// legacy document layout.
type Document struct {
	Products []domain.Product  `json:"produtos"`
	Reviews  []domain.Review   `json:"avaliacoes"`
	Cart     []domain.CartItem `json:"carrinho"`
	Users    []domain.User     `json:"usuarios"`
	Banners  []domain.Banner   `json:"banners"`
}

func emptyDocument() Document {
	return Document{
		Products: []domain.Product{},
		Reviews:  []domain.Review{},
		Cart:     []domain.CartItem{},
		Users:    []domain.User{},
		Banners:  []domain.Banner{},
	}
}

// seedBanners is the promotional collection created on first start. It is
// update-only afterwards.
func seedBanners() []domain.Banner {
	return []domain.Banner{
		{ID: 1, Image: "/imagens/banner1.jpg", Caption: "Bem-vindo à nossa farmácia", Link: "/home"},
		{ID: 2, Image: "/imagens/banner2.jpg", Caption: "Ofertas da semana", Link: "/categoria/promocoes"},
		{ID: 3, Image: "/imagens/banner3.jpg", Caption: "Cuidados pessoais", Link: "/categoria/cuidados"},
	}
}

// Store owns the backing document. All reads and writes go through it.
type Store struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	lastID int64
}

// Open creates a Store over the document at path. Call Init before use.
func Open(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Init creates the backing document if it does not exist yet, with empty
// collections and the seeded banners. Safe to call on every start.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	doc := emptyDocument()
	doc.Banners = seedBanners()
	s.logger.Info("Creating initial store document", zap.String("path", s.path))
	return s.write(doc)
}

// read loads the document. A missing or corrupt file is recovered locally:
// it logs and returns an empty default document, never an error.
func (s *Store) read() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Error("Failed to read store document, using empty document",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return emptyDocument()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("Failed to decode store document, using empty document",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return emptyDocument()
	}

	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	if doc.Reviews == nil {
		doc.Reviews = []domain.Review{}
	}
	if doc.Cart == nil {
		doc.Cart = []domain.CartItem{}
	}
	if doc.Users == nil {
		doc.Users = []domain.User{}
	}
	if doc.Banners == nil {
		doc.Banners = []domain.Banner{}
	}

	return doc
}

// write persists the document through a temp file and rename, so a failed
// write never leaves a truncated document behind.
func (s *Store) write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("Failed to write store document", zap.String("path", s.path), zap.Error(err))
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("Failed to replace store document", zap.String("path", s.path), zap.Error(err))
		return err
	}
	return nil
}

// ReadDocument returns a snapshot of the whole document. Read-only escape
// hatch for ad-hoc queries; all mutations must go through Store methods.
func (s *Store) ReadDocument() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// nextID derives a product identifier from the clock, bumped when two
// creations land on the same millisecond. Caller must hold mu.
func (s *Store) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
