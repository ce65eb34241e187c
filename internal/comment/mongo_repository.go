package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("comments")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts comments only into an empty collection.
func (m *MongoRepository) SeedIfEmpty(ctx context.Context, comments []domain.Comment) error {
	n, err := m.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	if n > 0 || len(comments) == 0 {
		return nil
	}
	docs := make([]any, 0, len(comments))
	for _, c := range comments {
		docs = append(docs, c)
	}
	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}
	return nil
}

func (m *MongoRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.collection.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", unavailable(err))
	}
	defer cur.Close(ctx)

	comments := []domain.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (m *MongoRepository) Get(ctx context.Context, id string) (domain.Comment, error) {
	var c domain.Comment
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to get comment: %w", unavailable(err))
	}
	return c, nil
}

func (m *MongoRepository) Insert(ctx context.Context, c domain.Comment) error {
	if _, err := m.collection.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Invalid("comment %s already exists", c.ID)
		}
		return fmt.Errorf("failed to insert comment: %w", unavailable(err))
	}
	return nil
}

// toggleLikePipeline computes both fields from the stored document in one
// stage, so the count always moves with the flag.
var toggleLikePipeline = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{
		{Key: "like_count", Value: bson.D{{Key: "$cond", Value: bson.A{
			"$liked_by_current_user",
			bson.D{{Key: "$max", Value: bson.A{0, bson.D{{Key: "$subtract", Value: bson.A{"$like_count", 1}}}}}},
			bson.D{{Key: "$add", Value: bson.A{"$like_count", 1}}},
		}}}},
		{Key: "liked_by_current_user", Value: bson.D{{Key: "$not", Value: bson.A{"$liked_by_current_user"}}}},
	}}},
}

func (m *MongoRepository) ToggleLike(ctx context.Context, id string) (domain.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c domain.Comment
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleLikePipeline, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to toggle like: %w", unavailable(err))
	}
	return c, nil
}

func (m *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", unavailable(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func unavailable(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return err
}
