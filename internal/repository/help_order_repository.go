package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gympoint/gympoint-api/internal/models"
)

const helpOrderCollection = "help_orders"

// HelpOrderRepository stores help orders in the document store.
type HelpOrderRepository struct {
	col *mongo.Collection
}

// NewHelpOrderRepository constructs the repository over the given
// database handle.
func NewHelpOrderRepository(db *mongo.Database) *HelpOrderRepository {
	return &HelpOrderRepository{col: db.Collection(helpOrderCollection)}
}

// Create inserts a new unanswered help order.
func (r *HelpOrderRepository) Create(ctx context.Context, order *models.HelpOrder) error {
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.Answer = nil
	order.AnswerAt = nil
	order.CreatedAt = now
	order.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("create help order: %w", err)
	}
	return nil
}

// FindOpenByStudent returns the student's unanswered help orders,
// newest first.
func (r *HelpOrderRepository) FindOpenByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	filter := bson.M{"student": studentID, "answer": nil}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find open help orders: %w", err)
	}
	var orders []models.HelpOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode help orders: %w", err)
	}
	return orders, nil
}

// FindByStudent returns every help order of a student, newest first.
func (r *HelpOrderRepository) FindByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"student": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find help orders: %w", err)
	}
	var orders []models.HelpOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode help orders: %w", err)
	}
	return orders, nil
}

// Answer sets answer and answer_at on a single document atomically and
// returns the updated order. Returns mongo.ErrNoDocuments when the id
// does not match any record. Re-answering an answered ticket overwrites
// both fields.
func (r *HelpOrderRepository) Answer(ctx context.Context, id primitive.ObjectID, answer string, answeredAt time.Time) (*models.HelpOrder, error) {
	update := bson.M{"$set": bson.M{
		"answer":    answer,
		"answer_at": answeredAt,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.HelpOrder
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}
