package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hirebridge/hirebridge-backend/internal/cache"
	"github.com/hirebridge/hirebridge-backend/internal/db"
	"github.com/hirebridge/hirebridge-backend/internal/handlers"
	"github.com/hirebridge/hirebridge-backend/internal/ingest"
	"github.com/hirebridge/hirebridge-backend/internal/platform/chromemdb"
	"github.com/hirebridge/hirebridge-backend/internal/platform/envutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/mistral"
	"github.com/hirebridge/hirebridge-backend/internal/platform/neo4jdb"
	"github.com/hirebridge/hirebridge-backend/internal/platform/pinecone"
	"github.com/hirebridge/hirebridge-backend/internal/repos"
	"github.com/hirebridge/hirebridge-backend/internal/search"
	"github.com/hirebridge/hirebridge-backend/internal/server"
	"github.com/hirebridge/hirebridge-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	resumeRepo := repos.NewResumeRepo(thePG, log)

	// Neo4j
	log.Info("Setting up Neo4j from main...")
	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err)
		os.Exit(1)
	}
	defer neo4jClient.Close(context.Background())
	graphStore, err := search.NewGraphStore(log, neo4jClient)
	if err != nil {
		log.Error("Could not init graph store", "error", err)
		os.Exit(1)
	}

	// Vector store: Pinecone when an API key is present, embedded chromem
	// otherwise.
	log.Info("Setting up vector store from main...")
	vectorStore, err := newVectorStore(log)
	if err != nil {
		log.Error("Could not init vector store", "error", err)
		os.Exit(1)
	}

	// Mistral
	mistralClient, err := mistral.NewClient(log)
	if err != nil {
		log.Error("Could not init Mistral client", "error", err)
		os.Exit(1)
	}
	embed := func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := mistralClient.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			return nil, fmt.Errorf("empty embedding response")
		}
		return vecs[0], nil
	}

	embeddingIndex, err := search.NewEmbeddingIndex(log, vectorStore, embed)
	if err != nil {
		log.Error("Could not init embedding index", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	resolver, err := services.NewResumeResolver(resumeRepo)
	if err != nil {
		log.Error("Could not init resume resolver", "error", err)
		os.Exit(1)
	}
	ranker, err := search.NewRanker(log, embeddingIndex, graphStore, resolver)
	if err != nil {
		log.Error("Could not init ranker", "error", err)
		os.Exit(1)
	}
	searchCache, err := cache.NewRedisSearchCache(log)
	if err != nil {
		log.Warn("Search cache disabled", "error", err)
		searchCache = nil
	}
	searchService, err := services.NewSearchService(log, ranker, embeddingIndex, searchCache)
	if err != nil {
		log.Error("Could not init search service", "error", err)
		os.Exit(1)
	}
	extractor, err := ingest.NewLLMExtractor(log, mistralClient)
	if err != nil {
		log.Error("Could not init feature extractor", "error", err)
		os.Exit(1)
	}
	pipeline, err := ingest.NewPipeline(log, userRepo, resumeRepo, embeddingIndex, graphStore, extractor, ingest.Config{})
	if err != nil {
		log.Error("Could not init ingest pipeline", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(log, userRepo)
	resumeHandler := handlers.NewResumeHandler(log, pipeline, resumeRepo, graphStore)
	searchHandler := handlers.NewSearchHandler(log, searchService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		UserHandler:   userHandler,
		ResumeHandler: resumeHandler,
		SearchHandler: searchHandler,
	})

	port := envutil.String("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

func newVectorStore(log *logger.Logger) (pinecone.VectorStore, error) {
	backend := envutil.String("VECTOR_BACKEND", "")
	apiKey := envutil.String("PINECONE_API_KEY", "")
	if backend == "" {
		if apiKey != "" {
			backend = "pinecone"
		} else {
			backend = "chromem"
		}
	}
	switch backend {
	case "pinecone":
		pc, err := pinecone.New(log, pinecone.Config{APIKey: apiKey})
		if err != nil {
			return nil, err
		}
		return pinecone.NewVectorStore(log, pc)
	case "chromem":
		return chromemdb.NewVectorStore(log, envutil.String("CHROMEM_COLLECTION", "resumes"))
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}
