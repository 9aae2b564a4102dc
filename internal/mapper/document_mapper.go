package mapper

import (
	"encoding/json"

	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) DocumentToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	e := &entity.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		Modality:  d.Modality,
		Metadata:  jsonToMap(d.Metadata),
		CreatedAt: d.CreatedAt,
	}
	if !d.UpdatedAt.IsZero() {
		updated := d.UpdatedAt
		e.UpdatedAt = &updated
	}
	if d.DeletedAt.Valid {
		deleted := d.DeletedAt.Time
		e.DeletedAt = &deleted
		e.IsDeleted = true
	}
	return e
}

func (m *DocumentMapper) DocumentToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	doc := &model.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		Modality:  d.Modality,
		Metadata:  mapToJSON(d.Metadata),
		CreatedAt: d.CreatedAt,
	}
	if d.UpdatedAt != nil {
		doc.UpdatedAt = *d.UpdatedAt
	}
	if d.DeletedAt != nil {
		doc.DeletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	}
	return doc
}

func (m *DocumentMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Modality:   c.Modality,
		Metadata:   jsonToMap(c.Metadata),
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Modality:   c.Modality,
		Metadata:   mapToJSON(c.Metadata),
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunksToEntities(chunks []model.DocumentChunk) []entity.DocumentChunk {
	out := make([]entity.DocumentChunk, 0, len(chunks))
	for i := range chunks {
		out = append(out, *m.ChunkToEntity(&chunks[i]))
	}
	return out
}

func jsonToMap(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func mapToJSON(meta map[string]interface{}) datatypes.JSON {
	if len(meta) == 0 {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
