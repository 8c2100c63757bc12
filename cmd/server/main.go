package main

import (
	"log"
	"os"
	"time"

	"truthteller/internal/acquire"
	"truthteller/internal/api"
	"truthteller/internal/classify"
	"truthteller/internal/config"
	"truthteller/internal/db"
	"truthteller/internal/media"
	"truthteller/internal/pipeline"
	"truthteller/internal/repository"
	"truthteller/internal/segment"
	"truthteller/internal/storage"
	"truthteller/internal/transcript"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Chunk directories left behind by interrupted runs are removed once at
	// startup. Live runs are never touched: each owns its own directory.
	segment.PurgeStaleRuns(cfg.ChunkDir, 24*time.Hour)

	// Initialize database if DATABASE_URL is provided
	var repo repository.PredictionRepository
	if cfg.DatabaseURL != "" {
		log.Printf("Initializing database connection with DATABASE_URL...")
		if err := db.Init(); err != nil {
			log.Printf("Warning: Failed to initialize database: %v. Falling back to in-memory history.", err)
		} else {
			repo = repository.NewPostgresRepository()
			log.Println("Database and repository initialized successfully")
		}
	} else {
		log.Println("DATABASE_URL not set, keeping prediction history in memory only")
	}
	if repo == nil {
		repo = repository.NewMemoryRepository()
	}

	// Transcription: Whisper for English, Google Speech for everything else.
	engine, err := transcript.NewWhisperEngine(cfg.OpenAIKey)
	if err != nil {
		log.Fatalf("Failed to create transcription engine: %v", err)
	}
	var recognizer transcript.Recognizer
	if cfg.GoogleSTTKey != "" {
		recognizer, err = transcript.NewGoogleRecognizer(cfg.GoogleSTTKey)
		if err != nil {
			log.Fatalf("Failed to create chunk recognizer: %v", err)
		}
	} else {
		log.Println("GOOGLE_STT_KEY_FILE not set, non-English transcription disabled")
	}
	segmenter := segment.NewSegmenter(cfg.FFmpegPath, cfg.ChunkDir)
	router := transcript.NewRouter(engine, recognizer, segmenter)

	// Classifier: the capability probes its backend at construction, so a
	// missing model server aborts startup here.
	capability, err := classify.CreateCapability()
	if err != nil {
		log.Fatalf("Failed to create classifier: %v", err)
	}
	log.Printf("Classifier initialized: %s", capability.Name())

	extractor := media.NewExtractor(cfg.FFmpegPath, cfg.AudioDir)
	downloader := acquire.NewDownloader(cfg.YtDlpPath, cfg.DownloadDir)
	store := storage.NewVideoStore(cfg.VideoDir, int(cfg.MaxUploadMB))

	p := pipeline.New(extractor, router, classify.NewClassifier(capability), downloader).
		WithRepository(repo).
		WithRetainArtifacts(cfg.RetainArtifacts).
		WithRequestTimeout(cfg.RequestTimeout)

	r := gin.Default()
	r.Use(corsMiddleware())
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	handler := api.NewHandler(p, store, repo, cfg.DefaultLanguage)
	handler.RegisterRoutes(r)

	log.Printf("TruthTeller backend running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
