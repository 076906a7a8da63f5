package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection      *mongo.Collection
	LandCollection      *mongo.Collection
	HouseCollection     *mongo.Collection
	ApartmentCollection *mongo.Collection
	ServiceCollection   *mongo.Collection
	PaymentCollection   *mongo.Collection
	FavoriteCollection  *mongo.Collection
)

func ConnectDB(cfg *Config) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB ping failed: %v", err)
	}

	log.Println("Connected to MongoDB")
	return client, nil
}

func InitCollections(client *mongo.Client, cfg *Config) {
	db := client.Database(cfg.DBName)
	UserCollection = db.Collection("users")
	LandCollection = db.Collection("lands")
	HouseCollection = db.Collection("houses")
	ApartmentCollection = db.Collection("apartments")
	ServiceCollection = db.Collection("services")
	PaymentCollection = db.Collection("payments")
	FavoriteCollection = db.Collection("favorites")
}

// EnsureIndexes creates the unique indexes the write paths rely on: one
// favorite per (user, type, property) triple and one account per email.
func EnsureIndexes(ctx context.Context) error {
	_, err := FavoriteCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "propertyType", Value: 1},
			{Key: "propertyId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating favorites index: %v", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating users email index: %v", err)
	}
	return nil
}

func CloseDBConnection(client *mongo.Client) {
	if err := client.Disconnect(context.TODO()); err != nil {
		log.Fatalf("Error closing database connection: %v", err)
	}
	log.Println("MongoDB connection closed")
}
