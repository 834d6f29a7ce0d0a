package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aryanaichra/project-tracker/internal/activity"
	"github.com/aryanaichra/project-tracker/internal/config"
	"github.com/aryanaichra/project-tracker/internal/database"
	"github.com/aryanaichra/project-tracker/internal/handler"
	"github.com/aryanaichra/project-tracker/internal/membership"
	"github.com/aryanaichra/project-tracker/internal/middleware"
	"github.com/aryanaichra/project-tracker/internal/queue"
	"github.com/aryanaichra/project-tracker/internal/repository"
	"github.com/aryanaichra/project-tracker/internal/router"
	queuepublisher "github.com/aryanaichra/project-tracker/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter pass
	// requests through untouched.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	projects := repository.NewProjectRepo(db)
	members := repository.NewMemberRepo(db)
	columns := repository.NewColumnRepo(db)
	items := repository.NewItemRepo(db)
	comments := repository.NewCommentRepo(db)
	activities := repository.NewActivityRepo(db)
	teams := repository.NewTeamRepo(db)

	guard := middleware.Guard{Users: users, Members: members, Items: items}
	syncer := &membership.Syncer{Store: repository.NewMembershipStore(teams, members)}
	recorder := &activity.Recorder{
		Store:   activities,
		Publish: queuepublisher.PublishActivityRecorded,
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	projectH := handler.NewProjectHandler(projects, columns)
	memberH := handler.NewMemberHandler(members, users)
	itemH := handler.NewItemHandler(items, columns, comments, activities, recorder)
	teamH := handler.NewTeamHandler(teams, users, syncer)
	reportH := handler.NewReportHandler(projects, members, items, activities, teams)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, rateLimit)
	router.RegisterProjects(e, guard, projectH, memberH, itemH, reportH, cfg.JWTSecret, cache)
	router.RegisterTeams(e, teamH, cfg.JWTSecret)

	// The consumer drains activity.recorded events in the background and
	// reconnects on broker failure.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
