package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// readingDocument is the document layout of a reading, one per insert.
type readingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Latitude  float64            `bson:"latitude"`
	Longitude float64            `bson:"longitude"`
	Zone      string             `bson:"zone"`
	Date      time.Time          `bson:"date"`
	Time      string             `bson:"time"`
	Pollution pollutionDocument  `bson:"pollution"`
}

type pollutionDocument struct {
	TS     time.Time `bson:"ts"`
	AQIUS  int       `bson:"aqius"`
	MainUS string    `bson:"mainus"`
	AQICN  int       `bson:"aqicn"`
	MainCN string    `bson:"maincn"`
}

func toDocument(r airquality.Reading) readingDocument {
	return readingDocument{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Zone:      r.Zone,
		Date:      r.Date.UTC(),
		Time:      r.Time,
		Pollution: pollutionDocument{
			TS:     r.Pollution.TS.UTC(),
			AQIUS:  r.Pollution.AQIUS,
			MainUS: r.Pollution.MainUS,
			AQICN:  r.Pollution.AQICN,
			MainCN: r.Pollution.MainCN,
		},
	}
}

func (d readingDocument) toReading() airquality.Reading {
	return airquality.Reading{
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Zone:      d.Zone,
		Date:      d.Date.UTC(),
		Time:      d.Time,
		Pollution: airquality.PollutionRecord{
			TS:     d.Pollution.TS.UTC(),
			AQIUS:  d.Pollution.AQIUS,
			MainUS: d.Pollution.MainUS,
			AQICN:  d.Pollution.AQICN,
			MainCN: d.Pollution.MainCN,
		},
	}
}

// MongoStore persists readings as documents in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and ensures the
// zone index exists.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "zone", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating zone index: %w", err)
	}

	return &MongoStore{client: client, collection: coll}, nil
}

// Insert adds a reading document.
func (s *MongoStore) Insert(ctx context.Context, r airquality.Reading) (err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendMongo, "insert", start, err) }(time.Now())

	if err := r.Validate(); err != nil {
		return err
	}

	if _, err := s.collection.InsertOne(ctx, toDocument(r)); err != nil {
		return airquality.Persistence("inserting reading", err)
	}
	return nil
}

// FindMostPolluted returns the top document of zone sorted by field, then
// provider timestamp, then _id, all descending.
func (s *MongoStore) FindMostPolluted(ctx context.Context, zone string, field airquality.PollutantField) (_ airquality.Reading, err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendMongo, "find_most_polluted", start, err) }(time.Now())

	if !field.Valid() {
		return airquality.Reading{}, airquality.InvalidArgument(airquality.MsgInvalidPollutant)
	}

	opts := options.FindOne().SetSort(bson.D{
		{Key: "pollution." + string(field), Value: -1},
		{Key: "pollution.ts", Value: -1},
		{Key: "_id", Value: -1},
	})

	var doc readingDocument
	err = s.collection.FindOne(ctx, bson.M{"zone": zone}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return airquality.Reading{}, airquality.NoDataForZone(zone)
		}
		return airquality.Reading{}, airquality.Persistence("querying most polluted reading", err)
	}
	return doc.toReading(), nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
