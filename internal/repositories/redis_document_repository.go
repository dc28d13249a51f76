package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craigsakuma/travelroboto/internal/models"
)

const (
	docKeyPrefix = "document:"
	docIndexKey  = "documents:index"
)

// RedisDocumentRepository implements DocumentRepository using Redis
type RedisDocumentRepository struct {
	client *redis.Client
}

// NewRedisDocumentRepository creates a new Redis-based document repository
func NewRedisDocumentRepository(client *redis.Client) *RedisDocumentRepository {
	return &RedisDocumentRepository{
		client: client,
	}
}

// CreateDocument stores a new document record
func (r *RedisDocumentRepository) CreateDocument(ctx context.Context, doc *models.ItineraryDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = models.DocumentStatusPending
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewDocumentRepositoryError("create_document", doc.ID, err, "failed to marshal document")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKeyPrefix+doc.ID, docJSON, 0)
	pipe.SAdd(ctx, docIndexKey, doc.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("create_document", doc.ID, err, "")
	}
	return nil
}

// GetDocument retrieves a document by ID
func (r *RedisDocumentRepository) GetDocument(ctx context.Context, documentID string) (*models.ItineraryDocument, error) {
	data, err := r.client.Get(ctx, docKeyPrefix+documentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, DocumentNotFoundError(documentID)
		}
		return nil, NewDocumentRepositoryError("get_document", documentID, err, "")
	}

	var doc models.ItineraryDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, NewDocumentRepositoryError("get_document", documentID, err, "failed to unmarshal document")
	}
	return &doc, nil
}

// UpdateDocument persists document state changes
func (r *RedisDocumentRepository) UpdateDocument(ctx context.Context, doc *models.ItineraryDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if _, err := r.GetDocument(ctx, doc.ID); err != nil {
		return err
	}

	doc.UpdatedAt = time.Now()

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewDocumentRepositoryError("update_document", doc.ID, err, "failed to marshal document")
	}

	if err := r.client.Set(ctx, docKeyPrefix+doc.ID, docJSON, 0).Err(); err != nil {
		return NewDocumentRepositoryError("update_document", doc.ID, err, "")
	}
	return nil
}

// DeleteDocument removes a document record
func (r *RedisDocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, docKeyPrefix+documentID)
	pipe.SRem(ctx, docIndexKey, documentID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("delete_document", documentID, err, "")
	}
	return nil
}

// ListDocuments returns all tracked documents
func (r *RedisDocumentRepository) ListDocuments(ctx context.Context) ([]*models.ItineraryDocument, error) {
	ids, err := r.client.SMembers(ctx, docIndexKey).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("list_documents", "", err, "")
	}

	docs := make([]*models.ItineraryDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := r.GetDocument(ctx, id)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
