package server

import (
	"context"

	"github.com/prometheus/common/log"
	"go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type Stats struct {
	prometheusExporter *prometheus.Exporter
	mSocketRequest     *stats.Int64Measure
	mSocketConnection  *stats.Int64Measure
	mMatch             *stats.Int64Measure
}

func NewStatsHolder() *Stats {

	mSocketRequest := stats.Int64("netlobby/socket_requests", "Socket Request Count", "By")
	vSocketRequestSum := &view.View{
		Name:        "netlobby/socket_requests_sum",
		Measure:     mSocketRequest,
		Description: "The number of total socket request",
		Aggregation: view.Sum(),
	}

	mSocketConnection := stats.Int64("netlobby/socket_connection", "Socket Connection Count", "By")
	vSocketConnectionSum := &view.View{
		Name:        "netlobby/socket_connection_sum",
		Measure:     mSocketConnection,
		Description: "The number of total socket connection",
		Aggregation: view.Sum(),
	}

	mMatch := stats.Int64("netlobby/matches", "Live Match Count", "By")
	vMatchSum := &view.View{
		Name:        "netlobby/matches_sum",
		Measure:     mMatch,
		Description: "The number of live matches",
		Aggregation: view.Sum(),
	}

	if err := view.Register(vSocketRequestSum, vSocketConnectionSum, vMatchSum); err != nil {
		log.Fatalln("Error while registering stat views")
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "netlobby",
	})
	if err != nil {
		log.Fatalln("Error while creating new prometheus exporter")
	}

	view.RegisterExporter(pe)

	return &Stats{
		prometheusExporter: pe,
		mSocketRequest:     mSocketRequest,
		mSocketConnection:  mSocketConnection,
		mMatch:             mMatch,
	}

}

func (s Stats) IncrSocketRequest() {

	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketRequest.M(1))

}

func (s Stats) IncrSocketConnection() {

	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketConnection.M(1))

}

func (s Stats) DecrSocketConnection() {

	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketConnection.M(-1))

}

func (s Stats) IncrMatch() {

	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mMatch.M(1))

}

func (s Stats) DecrMatch() {

	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mMatch.M(-1))

}
