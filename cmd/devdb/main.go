package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/macrosdb/internal/devcontainers"
)

func main() {
	var (
		showHelp    bool
		envFilename string
		dbType      string
		withRedis   bool
	)
	flag.BoolVar(&showHelp, "h", false, "show usage")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.StringVar(&dbType, "db", "", "database type: sqlserver, mysql or postgres (default DB_TYPE or sqlserver)")
	flag.BoolVar(&withRedis, "redis", false, "also start Redis for the food cache")
	flag.Parse()

	usage := `
Start a throwaway database, and optionally Redis, for local development.
The connection settings are printed in .env format once the containers are ready.

Usage:

devdb [-h] [-f ENV_FILE_PATH] [-db TYPE] [-redis]

example
  devdb -db mysql -redis > .env.dev
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}
	if dbType == "" {
		dbType = os.Getenv("DB_TYPE")
	}

	opts := devcontainers.Options{
		DBType:     dbType,
		DBPassword: os.Getenv("DB_PASSWORD"),
		Database:   os.Getenv("DB_DATABASE"),
		Redis:      withRedis,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *devcontainers.Containers, 1)
	go func() {
		containers, err := devcontainers.Start(nil, opts)
		if err != nil {
			log.Fatalf("Failed to start containers: %v\n", err)
		}
		printEnv(containers)
		started <- containers
	}()

	var containers *devcontainers.Containers
	for containers == nil {
		select {
		case containers = <-started:
			log.Println("Containers ready, interrupt to stop them")
		case sig := <-sigs:
			log.Printf("Received signal: %v before the containers were ready\n", sig)
			return
		}
	}

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating containers...\n", sig)
	containers.Terminate(nil)
}

func printEnv(containers *devcontainers.Containers) {
	cfg := containers.Config()
	fmt.Printf("DB_TYPE=%s\n", cfg.DBType)
	fmt.Printf("DB_HOST=%s\n", cfg.DBHost)
	fmt.Printf("DB_PORT=%s\n", cfg.DBPort)
	fmt.Printf("DB_DATABASE=%s\n", cfg.DBDatabase)
	fmt.Printf("DB_USER=%s\n", cfg.DBUser)
	fmt.Printf("DB_PASSWORD=%s\n", cfg.DBPassword)
	if cfg.RedisURL != "" {
		fmt.Printf("REDIS_URL=%s\n", cfg.RedisURL)
	}
}
