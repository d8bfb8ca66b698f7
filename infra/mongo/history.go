package mongo

import (
	"context"
	"fmt"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const gardenCollection = "garden_history"

// GardenStore keeps every user's planted trees in the garden_history
// collection.
type GardenStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// gardenDocument uses string ids so documents stay readable from the shell.
type gardenDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TreeID       string             `bson:"treeId"`
	UserID       string             `bson:"userId"`
	RoomID       string             `bson:"roomId"`
	RoomName     string             `bson:"roomName"`
	Category     string             `bson:"category"`
	FocusMinutes int                `bson:"focusMinutes"`
	GrowthStage  int                `bson:"growthStage"`
	Variety      *varietyDocument   `bson:"variety,omitempty"`
	PlantedAt    time.Time          `bson:"plantedAt"`
}

type varietyDocument struct {
	Emoji string `bson:"emoji,omitempty"`
	Color string `bson:"color,omitempty"`
	Name  string `bson:"name,omitempty"`
}

func NewGardenStore(uri, database string) (*GardenStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	store := &GardenStore{client: client, db: client.Database(database)}

	_, err = store.db.Collection(gardenCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "plantedAt", Value: -1}},
	})
	if err != nil {
		zap.L().Warn("Failed to create garden history index", zap.Error(err))
	}

	zap.L().Info("Connected to MongoDB successfully", zap.String("database", database))
	return store, nil
}

func (s *GardenStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *GardenStore) AddEntry(ctx context.Context, entry domain.GardenEntry) error {
	doc := gardenDocument{
		ID:           primitive.NewObjectID(),
		TreeID:       entry.TreeID.String(),
		UserID:       entry.UserID.String(),
		RoomID:       entry.RoomID.String(),
		RoomName:     entry.RoomName,
		Category:     entry.Category,
		FocusMinutes: entry.FocusMinutes,
		GrowthStage:  int(entry.GrowthStage),
		PlantedAt:    entry.PlantedAt,
	}
	if entry.Variety != nil {
		doc.Variety = &varietyDocument{Emoji: entry.Variety.Emoji, Color: entry.Variety.Color, Name: entry.Variety.Name}
	}

	if _, err := s.db.Collection(gardenCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: failed to insert garden entry: %w", domain.ErrTransientIO, err)
	}
	return nil
}

// ListEntries returns the user's trees, newest first.
func (s *GardenStore) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]domain.GardenEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "plantedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(gardenCollection).Find(ctx, bson.M{"userId": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query garden: %w", domain.ErrTransientIO, err)
	}
	defer cursor.Close(ctx)

	var docs []gardenDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: failed to decode garden: %w", domain.ErrTransientIO, err)
	}

	entries := make([]domain.GardenEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.toDomain())
	}
	return entries, nil
}

func (d gardenDocument) toDomain() domain.GardenEntry {
	entry := domain.GardenEntry{
		TreeID:       parseID(d.TreeID),
		UserID:       parseID(d.UserID),
		RoomID:       parseID(d.RoomID),
		RoomName:     d.RoomName,
		Category:     d.Category,
		FocusMinutes: d.FocusMinutes,
		GrowthStage:  domain.GrowthStage(d.GrowthStage),
		PlantedAt:    d.PlantedAt,
	}
	if d.Variety != nil {
		entry.Variety = &domain.Variety{Emoji: d.Variety.Emoji, Color: d.Variety.Color, Name: d.Variety.Name}
	}
	return entry
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
