package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"netlobby/server"
)

func main() {

	config, err := server.NewConfig("config.yml")
	if err != nil {
		log.Fatal("Error while reading configurations: ", err)
	}

	logger := server.NewLogger(config)
	defer logger.Sync()

	stats := server.NewStatsHolder()
	sessionHolder := server.NewSessionHolder(config)
	players := server.NewPlayerRegistry(config)
	matches := server.NewMatchRegistry(config)
	broadcaster := server.NewBroadcaster(config, sessionHolder, matches, logger)
	pipeline := server.NewPipeline(config, logger, stats, players, matches, broadcaster)

	s := server.StartServer(sessionHolder, pipeline, players, matches, config, stats, logger)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Startup was completed")

	<-c

	s.Stop()

}
