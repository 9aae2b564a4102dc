package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByModality filters documents/chunks by modality ("text" or "image")
type ByModality struct {
	Modality string
}

func (s ByModality) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("modality = ?", s.Modality)
}

// ByDocumentID filters chunks by their parent document
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// TitleContains does a case-insensitive substring match on title
type TitleContains struct {
	Needle string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Needle+"%")
}
