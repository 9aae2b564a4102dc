package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"agentic-bi-be/internal/dto"
	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/repository/specification"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/pkg/embedding"
	"agentic-bi-be/pkg/events"
	pkgNats "agentic-bi-be/pkg/nats"
	"agentic-bi-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking parameters. 1500 chars is roughly 375 tokens, well inside
// embedding context limits; the overlap preserves boundary context.
const (
	ingestChunkSize    = 1500
	ingestChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the ingest worker: it picks up queued documents,
// splits them, embeds each chunk and replaces the chunk rows
// transactionally.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	eventPublisher    *pkgNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	eventPublisher *pkgNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // malformed messages are not retriable
		return
	}

	log.Printf("[INFO] Processing ingestion for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted between publish and consume. Nothing to do.
		log.Printf("[WARN] Document not found: %s", payload.DocumentId)
		msg.Ack()
		return
	}

	chunks := utils.SplitText(doc.Content, ingestChunkSize, ingestChunkOverlap)
	log.Printf("[INFO] Document %s split into %d chunks", doc.Id, len(chunks))

	vectors, err := cs.embeddingProvider.Embed(ctx, chunks)
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunks for document %s: %v", doc.Id, err)
		msg.Nack()
		return
	}
	if len(vectors) != len(chunks) {
		log.Printf("[ERROR] Embedding count mismatch for document %s: %d chunks, %d vectors", doc.Id, len(chunks), len(vectors))
		msg.Nack()
		return
	}

	newChunks := make([]*entity.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		newChunks[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Content:    chunk,
			Modality:   doc.Modality,
			Metadata: map[string]interface{}{
				"title": doc.Title,
			},
			Embedding: vectors[i],
			CreatedAt: time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if err := uow.DocumentChunkRepository().UpsertBulk(ctx, newChunks); err != nil {
		log.Printf("[ERROR] Failed to write chunks: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngested(doc.Id.String(), doc.Modality, len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INGESTED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), doc.Id)
	msg.Ack()
}
