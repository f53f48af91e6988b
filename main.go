package main

import (
	"context"
	"net/http"
	"os"

	"socialnet_server/config"
	"socialnet_server/middleware"
	"socialnet_server/routes"
	"socialnet_server/services"
	"socialnet_server/socket"
	"socialnet_server/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	var store services.Store
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		store = services.NewMemoryStore()
	default:
		log.Info().Str("region", cfg.AWS.Region).Msg("Initializing DynamoDB client...")
		dynamoClient, err := services.InitializeDynamoDBClient(ctx, cfg.AWS.Region, cfg.AWS.DynamoEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize DynamoDB client")
		}
		store = services.NewDynamoStore(dynamoClient)
		log.Info().Msg("DynamoDB client initialized.")
	}

	var profileCache *redis.Client
	if cfg.Redis.Addr != "" {
		profileCache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer profileCache.Close()
		if err := profileCache.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, profiles will be read from the store")
		}
	}

	socketServer := socket.NewSocketServer()
	go socketServer.Serve()
	defer socketServer.Close()

	opts := services.Options{
		BucketSize:   cfg.Outlier.BucketSize,
		ThresholdTTL: cfg.Outlier.CacheTTL,
		Defaults: services.Thresholds{
			Reaction: cfg.Outlier.DefaultReactionThreshold,
			Comment:  cfg.Outlier.DefaultCommentThreshold,
			Share:    cfg.Outlier.DefaultShareThreshold,
		},
		MarkViralOnOverflow: cfg.Outlier.MarkViralOnCommentOverflow,
		ProfileTTL:          cfg.Redis.ProfileTTL,
		Notifier:            socketServer,
	}
	if profileCache != nil {
		opts.ProfileCache = profileCache
	}
	app := services.NewServices(store, opts)

	// Initialize the router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger), middleware.Authenticate)

	routes.RegisterAPIRoutes(r, app, cfg.Admin.UserIDs)

	if cfg.AWS.S3Bucket != "" {
		s3Client, err := services.NewS3Client(ctx, cfg.AWS.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3 client")
		}
		routes.RegisterS3Routes(r, services.NewMediaService(s3Client, cfg.AWS.S3Bucket))
	} else {
		log.Warn().Msg("S3_BUCKET_NAME not set, media routes disabled")
	}

	r.PathPrefix("/socket.io/").Handler(socketServer.Handler())

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.UserIDHeader},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Info().Str("port", cfg.Server.Port).Msg("Starting server...")
	if err := http.ListenAndServe(":"+cfg.Server.Port, corsHandler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
