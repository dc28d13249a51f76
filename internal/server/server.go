package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/craigsakuma/travelroboto/internal/db"
	"github.com/craigsakuma/travelroboto/internal/handlers"
	"github.com/craigsakuma/travelroboto/internal/llm"
	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/repositories"
	"github.com/craigsakuma/travelroboto/internal/routes"
	"github.com/craigsakuma/travelroboto/internal/services"
	"github.com/craigsakuma/travelroboto/internal/workers"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	// LLM providers are mandatory; without one there is nothing to serve
	primary, fallback := initializeProviders(logger)

	collection := os.Getenv("CHROMA_COLLECTION")
	if collection == "" {
		collection = "itinerary"
	}

	docRepo, vectorRepo, jobRepo := initializeRepositories(logger)

	// Retrieval degrades to answering without context when the vector store
	// is unreachable, so a missing repository never blocks startup
	var retriever services.Retriever
	if vectorRepo != nil {
		retriever = services.NewRetrievalService(primary, vectorRepo, collection, logger)
	} else {
		logger.Println("Vector store unavailable, answers will not include itinerary context")
		retriever = unavailableRetriever{}
	}

	assembler := services.NewPromptAssembler(services.DefaultSystemPrompt, services.DefaultPromptBudget)
	generator := services.NewAnswerGenerator(primary, fallback, llm.GenerateOptions{}, services.DefaultRetryConfig(), logger)
	askService := services.NewAskService(retriever, assembler, generator, logger)

	healthChecker, _ := primary.(handlers.LLMHealthChecker)
	chatHandler := handlers.NewChatHandler(askService, healthChecker, logger)

	var ingestHandler *handlers.IngestHandler
	if docRepo != nil && jobRepo != nil && vectorRepo != nil {
		ingestService := services.NewIngestService(docRepo, jobRepo, logger)
		ingestHandler = handlers.NewIngestHandler(ingestService, logger)

		go startWorkers(jobRepo, docRepo, vectorRepo, primary, collection, logger)

		logger.Println("Ingestion services initialized, background worker started")
	} else {
		logger.Println("Ingestion services disabled, document endpoints will not be registered")
	}

	h := &routes.Handlers{
		Health:        handlers.HealthCheckHandler,
		Home:          handlers.HomeHandler,
		ChatHandler:   chatHandler,
		IngestHandler: ingestHandler,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &http.Server{
		Addr:    ":" + port,
		Handler: corsMiddleware(router),
	}
}

// initializeProviders builds the primary and fallback LLM clients from the
// environment. A broken fallback is tolerated; a broken primary is promoted
// from the fallback or aborts startup.
func initializeProviders(logger *log.Logger) (llm.Provider, llm.Provider) {
	primaryName := llm.Client(os.Getenv("LLM_PROVIDER"))
	if primaryName == "" {
		primaryName = llm.OpenAI
	}

	var fallback llm.Provider
	if fallbackName := os.Getenv("LLM_FALLBACK_PROVIDER"); fallbackName != "" {
		var err error
		fallback, err = llm.NewProvider(llm.Client(fallbackName))
		if err != nil {
			logger.Printf("Fallback provider %s unavailable: %v", fallbackName, err)
			fallback = nil
		}
	}

	primary, err := llm.NewProvider(primaryName)
	if err != nil {
		if fallback != nil {
			logger.Printf("Primary provider %s unavailable (%v), promoting fallback %s", primaryName, err, fallback.Name())
			return fallback, nil
		}
		logger.Fatalf("No LLM provider available: %v", err)
	}

	logger.Printf("LLM provider: %s", primary.Name())
	if fallback != nil {
		logger.Printf("LLM fallback: %s", fallback.Name())
	}
	return primary, fallback
}

// initializeRepositories creates repository instances with Redis and ChromaDB
func initializeRepositories(logger *log.Logger) (repositories.DocumentRepository, repositories.VectorRepository, repositories.JobRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)

	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		logger.Printf("Redis connection failed: %v", err)
		logger.Println("Hint: ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil, nil, nil
	}
	logger.Println("Redis connected")

	chromaConfig := getChromaConfig()
	logger.Printf("Connecting to ChromaDB: %s:%d", chromaConfig.Host, chromaConfig.Port)

	chromaClient := db.NewChromaDBClient(chromaConfig)
	if err := chromaClient.Heartbeat(ctx); err != nil {
		logger.Printf("ChromaDB connection failed: %v", err)
		logger.Println("Hint: ensure ChromaDB is running (docker run -d -p 8000:8000 chromadb/chroma)")
		return nil, nil, nil
	}
	logger.Println("ChromaDB connected")

	docRepo := repositories.NewRedisDocumentRepository(redisClient.Client())
	jobRepo := repositories.NewRedisJobRepository(redisClient.Client())
	vectorRepo := repositories.NewChromaVectorRepository(chromaClient)

	return docRepo, vectorRepo, jobRepo
}

// getRedisConfig reads Redis configuration from environment variables
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	if poolSizeStr := os.Getenv("REDIS_POOL_SIZE"); poolSizeStr != "" {
		if poolSize, err := strconv.Atoi(poolSizeStr); err == nil {
			config.PoolSize = poolSize
		}
	}

	return config
}

// getChromaConfig reads ChromaDB configuration from environment variables
func getChromaConfig() db.ChromaDBConfig {
	config := db.ChromaDBConfig{
		Host:     "localhost",
		Port:     8000,
		Tenant:   "default_tenant",
		Database: "default_database",
		Timeout:  30 * time.Second,
	}

	if host := os.Getenv("CHROMA_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("CHROMA_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if tenant := os.Getenv("CHROMA_TENANT"); tenant != "" {
		config.Tenant = tenant
	}

	if database := os.Getenv("CHROMA_DATABASE"); database != "" {
		config.Database = database
	}

	return config
}

// startWorkers initializes and starts background workers for async job processing
func startWorkers(jobRepo repositories.JobRepository, docRepo repositories.DocumentRepository, vectorRepo repositories.VectorRepository, embedder workers.Embedder, collection string, logger *log.Logger) {
	ctx := context.Background()

	ingestWorker := workers.NewIngestWorker(workers.IngestWorkerConfig{
		WorkerConfig: workers.DefaultWorkerConfig("ingest-worker"),
		JobRepo:      jobRepo,
		DocRepo:      docRepo,
		VectorRepo:   vectorRepo,
		Embedder:     embedder,
		Collection:   collection,
		Logger:       logger,
	})

	if err := ingestWorker.Start(ctx); err != nil {
		logger.Printf("Failed to start ingest worker: %v", err)
	}
}

// unavailableRetriever stands in when no vector store is configured. Every
// lookup reports a retrieval failure, which the pipeline absorbs.
type unavailableRetriever struct{}

func (unavailableRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.ContextChunk, error) {
	return nil, &models.RetrievalError{Query: query, Err: errors.New("vector store not configured")}
}
