package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/agrilearn/internal/devstack"
	"github.com/localnerve/agrilearn/internal/logger"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withRedis bool
	flag.BoolVar(&withRedis, "redis", true, "also start redis")
	flag.Parse()

	usage := `
Run the agrilearn backing services in docker, configured from the .env file.

Usage:

devdb [-h] [-redis=false] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file (DB_TYPE, DB_DATABASE, DB_USER, DB_PASSWORD)

example
  devdb -f /path/to/something/.env
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
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	lg, err := logger.New("development")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	opts := devstack.Options{
		DBType:       os.Getenv("DB_TYPE"),
		DBImage:      os.Getenv("DB_IMAGE"),
		DBDatabase:   os.Getenv("DB_DATABASE"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		RootPassword: os.Getenv("DB_ROOT_PASSWORD"),
	}
	if withRedis {
		opts.RedisImage = "redis:7-alpine"
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sigs
		cancel()
	}()

	stack, err := devstack.Start(ctx, opts, lg)
	if err != nil {
		lg.Fatal("Failed to start containers", "error", err)
	}

	fmt.Printf("DB_HOST=%s\nDB_PORT=%s\n", stack.DBHost, stack.DBPort)
	if stack.RedisAddr != "" {
		fmt.Printf("REDIS_ADDR=%s\n", stack.RedisAddr)
	}

	<-ctx.Done()
	log.Printf("\nTerminating containers...\n")
	stack.Terminate(context.Background())
}
