package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domain "maedn/internal/domain/game"
	errs "maedn/internal/errors"
)

const matchesCollection = "matches"

type matchDocument struct {
	MatchID    string           `bson:"match_id"`
	Winner     string           `bson:"winner"`
	Players    []playerDocument `bson:"players"`
	StartedAt  time.Time        `bson:"started_at"`
	FinishedAt time.Time        `bson:"finished_at"`
	Turns      int              `bson:"turns"`
}

type playerDocument struct {
	Color         string  `bson:"color"`
	Name          string  `bson:"name"`
	ClientName    string  `bson:"client_name"`
	ClientVersion float64 `bson:"client_version"`
	Connected     bool    `bson:"connected"`
	FiguresHome   int     `bson:"figures_home"`
}

func newMatchDocument(result domain.MatchResult) matchDocument {
	doc := matchDocument{
		MatchID:    result.MatchID,
		Winner:     result.Winner.String(),
		Players:    make([]playerDocument, 0, len(result.Players)),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Turns:      result.Turns,
	}
	for _, p := range result.Players {
		home := 0
		for _, f := range p.Figures {
			if f.Position.Zone == domain.ZoneHome {
				home++
			}
		}
		doc.Players = append(doc.Players, playerDocument{
			Color:         p.Color.String(),
			Name:          p.Name,
			ClientName:    p.ClientName,
			ClientVersion: p.ClientVersion,
			Connected:     p.Connected,
			FiguresHome:   home,
		})
	}
	return doc
}

// MatchArchiveMongo records finished matches. It never stores a running game.
type MatchArchiveMongo struct {
	mongo *mongo.Database
	log   *zap.SugaredLogger
}

func NewMatchArchiveMongo(mongo *mongo.Database, log *zap.SugaredLogger) *MatchArchiveMongo {
	return &MatchArchiveMongo{
		mongo: mongo,
		log:   log,
	}
}

func (m *MatchArchiveMongo) SaveResult(ctx context.Context, result domain.MatchResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.mongo.Collection(matchesCollection).InsertOne(ctx, newMatchDocument(result))
	if err != nil {
		return fmt.Errorf("archive match %s: %w", result.MatchID, err)
	}
	m.log.Infof("Match %s archived, winner %s", result.MatchID, result.Winner)
	return nil
}

func (m *MatchArchiveMongo) CountWins(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"players": bson.M{
			"$elemMatch": bson.M{"name": name, "figures_home": 4},
		},
	}
	n, err := m.mongo.Collection(matchesCollection).CountDocuments(ctx, filter)
	if err != nil {
		m.log.Error(err)
		return 0, errs.ErrInternal
	}
	return n, nil
}
