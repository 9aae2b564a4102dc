package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agentic-bi-be/internal/dto"
	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/repository/specification"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/pkg/health"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Ingest(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// documentService owns the document catalogue. Ingestion is two-phase:
// the row is written synchronously, then chunking and embedding run on
// the ingest worker so slow embedding backends never block the request.
type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	gate             *health.Gate
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	gate *health.Gate,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		gate:             gate,
	}
}

// requireDurable rejects catalogue operations while the database is
// down. Unlike conversations, documents have no in-memory fallback.
func (ds *documentService) requireDurable() error {
	if !ds.gate.Ready() {
		return &PersistenceError{
			Entity: "documents",
			Err:    fmt.Errorf("durable store unavailable, document operations are disabled"),
		}
	}
	return nil
}

func (ds *documentService) Ingest(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	if err := ds.requireDurable(); err != nil {
		return nil, err
	}

	modality := request.Modality
	if modality == "" {
		modality = "text"
	}
	if modality != "text" && modality != "image" {
		return nil, fmt.Errorf("unsupported modality %q", modality)
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	doc := entity.Document{
		Id:        uuid.New(),
		Title:     request.Title,
		Content:   request.Content,
		Modality:  modality,
		Metadata:  request.Metadata,
		CreatedAt: time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishIngestDocumentMessage{
		DocumentId: doc.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := ds.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id: doc.Id,
	}, nil
}

func (ds *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	if err := ds.requireDurable(); err != nil {
		return nil, err
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}

	chunkCount, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: id})
	if err != nil {
		return nil, err
	}

	return documentToDTO(doc, int(chunkCount)), nil
}

func (ds *documentService) List(ctx context.Context) ([]*dto.DocumentResponse, error) {
	if err := ds.requireDurable(); err != nil {
		return nil, err
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		chunkCount, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: doc.Id})
		if err != nil {
			return nil, err
		}
		out = append(out, documentToDTO(doc, int(chunkCount)))
	}
	return out, nil
}

func (ds *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ds.requireDurable(); err != nil {
		return err
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func documentToDTO(doc *entity.Document, chunks int) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:        doc.Id,
		Title:     doc.Title,
		Modality:  doc.Modality,
		Metadata:  doc.Metadata,
		Chunks:    chunks,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
