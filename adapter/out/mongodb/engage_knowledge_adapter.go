// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionKnowledge = "knowledge_entries"

// KnowledgeAdapter implements out.KnowledgeStore using MongoDB. One
// document per tenant and category, kept in sync with the best extracted
// pattern of that category.
type KnowledgeAdapter struct {
	collection *mongo.Collection
}

// NewKnowledgeAdapter creates a new MongoDB knowledge adapter.
func NewKnowledgeAdapter(db *mongo.Database) *KnowledgeAdapter {
	return &KnowledgeAdapter{collection: db.Collection(collectionKnowledge)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *KnowledgeAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "relevance_score", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// knowledgeDocument represents the MongoDB document structure.
type knowledgeDocument struct {
	TenantID       string    `bson:"tenant_id"`
	Category       string    `bson:"category"`
	Title          string    `bson:"title"`
	Content        string    `bson:"content"`
	RelevanceScore float64   `bson:"relevance_score"`
	SourcePattern  int64     `bson:"source_pattern"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d *knowledgeDocument) toEntity() (*domain.KnowledgeEntry, error) {
	tenantID, err := uuid.Parse(d.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id in knowledge document: %w", err)
	}

	return &domain.KnowledgeEntry{
		TenantID:       tenantID,
		Category:       domain.PatternCategory(d.Category),
		Title:          d.Title,
		Content:        d.Content,
		RelevanceScore: d.RelevanceScore,
		SourcePattern:  d.SourcePattern,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

// Upsert replaces the tenant's entry for the category.
func (a *KnowledgeAdapter) Upsert(ctx context.Context, entry *domain.KnowledgeEntry) error {
	doc := &knowledgeDocument{
		TenantID:       entry.TenantID.String(),
		Category:       string(entry.Category),
		Title:          entry.Title,
		Content:        entry.Content,
		RelevanceScore: entry.RelevanceScore,
		SourcePattern:  entry.SourcePattern,
		UpdatedAt:      time.Now().UTC(),
	}

	filter := bson.M{"tenant_id": doc.TenantID, "category": doc.Category}
	opts := options.Replace().SetUpsert(true)

	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert knowledge entry: %w", err)
	}
	return nil
}

// ListByTenant returns the tenant's entries, most relevant first.
func (a *KnowledgeAdapter) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.KnowledgeEntry, error) {
	filter := bson.M{"tenant_id": tenantID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "relevance_score", Value: -1}})

	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.KnowledgeEntry
	for cursor.Next(ctx) {
		var doc knowledgeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entry, err := doc.toEntity()
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, cursor.Err()
}

// Ensure KnowledgeAdapter implements out.KnowledgeStore
var _ out.KnowledgeStore = (*KnowledgeAdapter)(nil)
