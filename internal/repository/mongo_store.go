package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"anniversary-timeline/internal/models"
)

type presentationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Slides    []models.Slide     `bson:"slides"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	UserID    string             `bson:"userId,omitempty"`
}

func (d presentationDocument) toModel() models.Presentation {
	slides := d.Slides
	if slides == nil {
		slides = []models.Slide{}
	}
	return models.Presentation{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Slides:    slides,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		UserID:    d.UserID,
	}
}

// MongoPresentationRepository stores presentations in a MongoDB collection
type MongoPresentationRepository struct {
	Col *mongo.Collection
}

func NewMongoPresentationRepository(db *mongo.Database) *MongoPresentationRepository {
	return &MongoPresentationRepository{Col: db.Collection(PresentationsCollection)}
}

func (r *MongoPresentationRepository) Insert(ctx context.Context, p *models.Presentation) (string, error) {
	doc := presentationDocument{
		Title:     p.Title,
		Slides:    p.Slides,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		UserID:    p.UserID,
	}
	res, err := r.Col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoPresentationRepository) FindAll(ctx context.Context) ([]models.Presentation, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var presentations []models.Presentation
	for cur.Next(ctx) {
		var d presentationDocument
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		presentations = append(presentations, d.toModel())
	}
	return presentations, cur.Err()
}

func (r *MongoPresentationRepository) Update(ctx context.Context, id string, update PresentationUpdate) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrDocumentNotFound
	}
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{
		"title":     update.Title,
		"slides":    update.Slides,
		"updatedAt": update.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *MongoPresentationRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// no document can carry a malformed id
		return nil
	}
	_, err = r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
