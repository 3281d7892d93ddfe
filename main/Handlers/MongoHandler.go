package Handlers

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoHandler caches catalog metadata so repeated searches don't hit TMDB.
type MongoHandler struct {
	client     *mongo.Client
	collection *mongo.Collection
	Log        *zap.SugaredLogger
}

func NewMongoHandler(ctx context.Context, mongoHost string, log *zap.SugaredLogger) (*MongoHandler, error) {
	clientOptions := options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:27017", mongoHost))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	collection := client.Database("flipfilm-cache").Collection("movies")

	return &MongoHandler{
		client:     client,
		collection: collection,
		Log:        log,
	}, nil
}

func (m *MongoHandler) FetchFromCache(ctx context.Context, tmdbId int) (MovieResponse, error) {
	filter := bson.M{"tmdbId": tmdbId}
	result := m.collection.FindOne(ctx, filter)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return MovieResponse{}, nil
		}
		return MovieResponse{}, err
	}

	var movie MovieResponse
	if err := result.Decode(&movie); err != nil {
		return MovieResponse{}, err
	}

	return movie, nil
}

func (m *MongoHandler) SaveInCache(ctx context.Context, movies []MovieResponse) {
	for _, movie := range movies {
		filter := bson.M{"tmdbId": movie.TmdbID}
		existingMovie := m.collection.FindOne(ctx, filter)
		if existingMovie.Err() == nil {
			// already cached, skip
			continue
		}

		if _, err := m.collection.InsertOne(ctx, movie); err != nil {
			m.Log.Warnf("failed to save cache: %v", err)
		}
	}
}

func (m *MongoHandler) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
