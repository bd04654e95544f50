package repositories

import (
	"context"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityArchive mirrors activities into a secondary store for export and
// auditing. It is never read on the request path.
type ActivityArchive interface {
	Archive(ctx context.Context, activity *models.Activity) error
}

type activityDocument struct {
	ActivityID uint      `bson:"activity_id"`
	ActorID    uint      `bson:"actor_id"`
	ActionType string    `bson:"action_type"`
	TargetType string    `bson:"target_type"`
	TargetID   uint      `bson:"target_id"`
	CreatedAt  time.Time `bson:"created_at"`
	ArchivedAt time.Time `bson:"archived_at"`
}

// MongoActivityArchive implements ActivityArchive for MongoDB
type MongoActivityArchive struct {
	collection *mongo.Collection
}

// NewMongoActivityArchive creates a new MongoActivityArchive
func NewMongoActivityArchive(db *mongo.Database) *MongoActivityArchive {
	return &MongoActivityArchive{collection: db.Collection("activities")}
}

// Archive upserts on activity_id so a retried write never duplicates.
func (a *MongoActivityArchive) Archive(ctx context.Context, activity *models.Activity) error {
	doc := activityDocument{
		ActivityID: activity.ID,
		ActorID:    activity.ActorID,
		ActionType: activity.ActionType,
		TargetType: activity.TargetType,
		TargetID:   activity.TargetID,
		CreatedAt:  activity.CreatedAt,
		ArchivedAt: time.Now().UTC(),
	}
	_, err := a.collection.UpdateOne(ctx,
		bson.M{"activity_id": activity.ID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

// EnsureIndexes creates the lookup indexes used by exports.
func (a *MongoActivityArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "activity_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
