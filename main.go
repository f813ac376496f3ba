package main

import (
	"log"
	"time"

	"voting-bracket-api/auth"
	"voting-bracket-api/config"
	"voting-bracket-api/cron"
	_ "voting-bracket-api/docs" // Swagger docs
	"voting-bracket-api/handlers"
	"voting-bracket-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Voting Bracket API
// @version         1.0
// @description     Pairwise photo voting tournament with ELO ratings

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  AdminToken
// @in header
// @name X-Admin-Token
// @description Shared admin token for catalog and stats administration.

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Database connection failed:", err)
	}

	sessionService := services.NewSessionService(db)
	completionService := services.NewCompletionService(db)
	voteService := services.NewVoteService(db)
	candidateService := services.NewCandidateService(db)
	statsService := services.NewStatsService(db)

	sessionHandler := handlers.NewSessionHandler(sessionService, completionService, voteService, candidateService)
	voteHandler := handlers.NewVoteHandler(voteService, sessionService)
	candidateHandler := handlers.NewCandidateHandler(candidateService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r := gin.Default()
	r.Use(cors.Default())

	// Public catalog routes
	r.GET("/candidates", candidateHandler.GetCandidates)
	r.GET("/candidates/:id", candidateHandler.GetCandidate)
	r.GET("/tierlist", candidateHandler.GetTierList)
	r.GET("/pair", voteHandler.GetRandomPair)
	r.GET("/matchups", voteHandler.GetMatchupStats)

	// Tournament routes (verified Telegram identity required)
	tournament := r.Group("/tournament")
	tournament.Use(auth.IdentityMiddleware())
	{
		tournament.POST("/start", sessionHandler.StartTournament)
		tournament.POST("/state", sessionHandler.SaveState)
		tournament.GET("/:id/state", sessionHandler.GetState)
		tournament.POST("/vote", sessionHandler.Vote)
		tournament.POST("/complete", sessionHandler.Complete)
	}

	me := r.Group("/me")
	me.Use(auth.IdentityMiddleware())
	{
		me.GET("/stats", voteHandler.GetUserStats)
	}

	votes := r.Group("/votes")
	votes.Use(auth.IdentityMiddleware())
	{
		votes.POST("", voteHandler.CastVote)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(auth.RequireAdminToken(cfg.AdminToken))
	{
		admin.POST("/candidates", candidateHandler.CreateCandidate)
		admin.PATCH("/candidates/:id", candidateHandler.UpdateCandidate)
		admin.DELETE("/candidates/:id", candidateHandler.DeleteCandidate)
		admin.GET("/logs", statsHandler.GetLogs)
		admin.GET("/stats", statsHandler.GetOverallStats)
	}

	// Swagger endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", healthHandler)

	scheduler := cron.NewScheduler(sessionService, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed:", err)
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Message  string `json:"message" example:"Server is running"`
	Database string `json:"database" example:"connected"`
}

// @Summary Health Check
// @Description Check if the server is running and database is connected
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func healthHandler(c *gin.Context) {
	c.JSON(200, HealthResponse{
		Message:  "Server is running",
		Database: "connected",
	})
}
