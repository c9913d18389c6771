// en internal/insight/infra/outbound/db/mongodb/insight_repo.go
package mongodb

import (
	"context"
	"fmt"
	"time"

	// --- Importaciones del dominio y compartidas ---
	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// InsightRepoMongoDB implementa InsightReader e InsightWriter para MongoDB.
type InsightRepoMongoDB struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewInsightRepoMongoDB es el constructor del repositorio.
func NewInsightRepoMongoDB(ctx context.Context, client *mongo.Client, dbName, collName string) (*InsightRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	return &InsightRepoMongoDB{
		client: client,
		coll:   client.Database(dbName).Collection(collName),
	}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoInsight struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Country    string             `bson:"country"`
	Region     string             `bson:"region,omitempty"`
	City       string             `bson:"city,omitempty"`
	Sector     string             `bson:"sector,omitempty"`
	Source     string             `bson:"source,omitempty"`
	Pestle     string             `bson:"pestle,omitempty"`
	Swot       string             `bson:"swot,omitempty"`
	Topic      string             `bson:"topic,omitempty"`
	Topics     []string           `bson:"topics,omitempty"`
	EndYear    *int               `bson:"end_year,omitempty"`
	StartYear  *int               `bson:"start_year,omitempty"`
	Published  string             `bson:"published,omitempty"`
	Intensity  *float64           `bson:"intensity,omitempty"`
	Likelihood *float64           `bson:"likelihood,omitempty"`
	Relevance  *float64           `bson:"relevance,omitempty"`
	Title      string             `bson:"title,omitempty"`
	Insight    string             `bson:"insight,omitempty"`
	URL        string             `bson:"url,omitempty"`
	Impact     string             `bson:"impact,omitempty"`
	Added      string             `bson:"added,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// --- Escritura (sólo importación) ---

// InsertMany inserta sin _id para que el servidor asigne identidades nuevas.
func (r *InsightRepoMongoDB) InsertMany(ctx context.Context, insights []*insightDomain.Insight) (int, error) {
	if len(insights) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(insights))
	for _, in := range insights {
		docs = append(docs, toMongoInsight(in, now))
	}

	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if res != nil && err != nil {
		return len(res.InsertedIDs), fmt.Errorf("insert insights: %w", err)
	}
	if err != nil {
		return 0, fmt.Errorf("insert insights: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// --- Lectura ---

func (r *InsightRepoMongoDB) Find(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination) ([]*insightDomain.Insight, error) {
	filter, err := criteriaToMongoFilter(criteria)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(projection()).
		SetSort(bson.D{{Key: "_id", Value: 1}}) // orden de inserción
	if pagination.Offset > 0 {
		opts.SetSkip(int64(pagination.Offset))
	}
	if pagination.Limit > 0 {
		opts.SetLimit(int64(pagination.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find insights: %w", err)
	}
	defer cursor.Close(ctx)

	var insights []*insightDomain.Insight
	for cursor.Next(ctx) {
		var mi mongoInsight
		if err := cursor.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode insight: %w", err)
		}
		insights = append(insights, fromMongoInsight(&mi))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}

	return insights, nil
}

func (r *InsightRepoMongoDB) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	filter, err := criteriaToMongoFilter(criteria)
	if err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count insights: %w", err)
	}
	return int(n), nil
}

// Close desconecta el cliente.
func (r *InsightRepoMongoDB) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// --- Helpers de Mapeo y Conversión ---

func projection() bson.D {
	p := bson.D{{Key: "_id", Value: 0}}
	for _, f := range insightDomain.ProjectedFields {
		p = append(p, bson.E{Key: f, Value: 1})
	}
	return p
}

func toMongoInsight(in *insightDomain.Insight, now time.Time) *mongoInsight {
	return &mongoInsight{
		Country: in.Country, Region: in.Region, City: in.City, Sector: in.Sector,
		Source: in.Source, Pestle: in.Pestle, Swot: in.Swot, Topic: in.Topic, Topics: in.Topics,
		EndYear: in.EndYear, StartYear: in.StartYear, Published: in.Published,
		Intensity: in.Intensity, Likelihood: in.Likelihood, Relevance: in.Relevance,
		Title: in.Title, Insight: in.Insight, URL: in.URL, Impact: in.Impact, Added: in.Added,
		CreatedAt: now, UpdatedAt: now,
	}
}

func fromMongoInsight(mi *mongoInsight) *insightDomain.Insight {
	return &insightDomain.Insight{
		Country: mi.Country, Region: mi.Region, Sector: mi.Sector, Source: mi.Source,
		Pestle: mi.Pestle, Topic: mi.Topic, EndYear: mi.EndYear, StartYear: mi.StartYear,
		Published: mi.Published, Intensity: mi.Intensity, Likelihood: mi.Likelihood,
		Relevance: mi.Relevance, Title: mi.Title, Insight: mi.Insight, URL: mi.URL,
		Impact: mi.Impact, Added: mi.Added,
	}
}

func criteriaToMongoFilter(criteria sharedDomain.Criteria) (bson.D, error) {
	filter := bson.D{}
	for _, c := range sharedDomain.Conditions(criteria) {
		e, err := conditionToMongo(c)
		if err != nil {
			return nil, err
		}
		filter = append(filter, e)
	}
	return filter, nil
}

func conditionToMongo(c sharedDomain.Criterion) (bson.E, error) {
	// Mapeo de operadores genéricos a operadores de MongoDB
	var mongoOp string
	switch c.Op {
	case sharedDomain.OpAny:
		alternatives := bson.A{}
		for _, sub := range c.Any {
			e, err := conditionToMongo(sub)
			if err != nil {
				return bson.E{}, err
			}
			alternatives = append(alternatives, bson.D{e})
		}
		return bson.E{Key: "$or", Value: alternatives}, nil
	case sharedDomain.OpEq:
		mongoOp = "$eq"
	case sharedDomain.OpGt:
		mongoOp = "$gt"
	case sharedDomain.OpGte:
		mongoOp = "$gte"
	case sharedDomain.OpLt:
		mongoOp = "$lt"
	case sharedDomain.OpLte:
		mongoOp = "$lte"
	case sharedDomain.OpIn, sharedDomain.OpContainsAny:
		// $in sobre un array coincide si algún elemento está en la lista.
		mongoOp = "$in"
	default:
		return bson.E{}, fmt.Errorf("mongodb: unsupported operator %q", c.Op)
	}
	return bson.E{Key: c.Field, Value: bson.M{mongoOp: c.Value}}, nil
}

// Verificación en tiempo de compilación.
var (
	_ insightDomain.InsightReader = (*InsightRepoMongoDB)(nil)
	_ insightDomain.InsightWriter = (*InsightRepoMongoDB)(nil)
)
