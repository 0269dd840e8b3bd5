package main

import (
	"flag"
	"fmt"
	"os"

	"littlefolio/internal/clconfig"
	"littlefolio/internal/clmiddleware"
	handlers_auth "littlefolio/internal/handlers/auth"
	handlers_contact "littlefolio/internal/handlers/contact"
	handlers_homepage "littlefolio/internal/handlers/homepage"
	handlers_projects "littlefolio/internal/handlers/projects"
	handlers_skills "littlefolio/internal/handlers/skills"
	handlers_techstack "littlefolio/internal/handlers/techstack"
	handlers_visitors "littlefolio/internal/handlers/visitors"
	"littlefolio/internal/models/clauth"
	"littlefolio/internal/models/clcaptchas"
	"littlefolio/internal/models/clcontact"
	"littlefolio/internal/models/cldatabase"
	"littlefolio/internal/models/clhomepage"
	"littlefolio/internal/models/cllog"
	"littlefolio/internal/models/clmarkdown"
	"littlefolio/internal/models/clprojects"
	"littlefolio/internal/models/clskills"
	"littlefolio/internal/models/cltechstack"
	"littlefolio/internal/models/clvisitors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const VERSION string = "0.1.0"

var BuildID string

// services regroupe les dépendances construites au démarrage et injectées
// dans les handlers
type services struct {
	tracker  *clvisitors.TrackerService
	homepage *clhomepage.Service
	projects *clprojects.Service
	skills   *clskills.Service
	stacks   *cltechstack.Service
	contact  *clcontact.Service
	captchas *clcaptchas.Captchas
	auth     *clauth.Service
}

func newServices(cfg *clconfig.Config, db *gorm.DB) *services {
	var redisClient *redis.Client
	if cfg.Visitors.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Visitors.Redis.Addr,
			DB:   cfg.Visitors.Redis.Db,
		})
	}

	geo, err := clvisitors.NewGeoResolver(cfg.Visitors.GeoIPPath)
	if err != nil {
		log.Warn().Err(err).Msg("base GeoIP illisible, résolution pays désactivée")
	}

	return &services{
		tracker:  clvisitors.NewTrackerService(db, redisClient, geo),
		homepage: clhomepage.NewService(db, cfg.Site.Name, cfg.Site.Description),
		projects: clprojects.NewService(db),
		skills:   clskills.NewService(db),
		stacks:   cltechstack.NewService(db),
		contact:  clcontact.NewService(db),
		captchas: clcaptchas.New(cfg.Visitors.Redis.Addr, cfg.Visitors.Redis.Db),
		auth:     clauth.New(cfg),
	}
}

func newServer(cfg *clconfig.Config) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if cfg.TrustedProxies != nil {
		r.SetTrustedProxies(cfg.TrustedProxies)
	}
	if cfg.TrustedPlatform != "" {
		switch cfg.TrustedPlatform {
		case "google":
			r.TrustedPlatform = gin.PlatformGoogleAppEngine
		case "flyio":
			r.TrustedPlatform = gin.PlatformFlyIO
		default:
			r.TrustedPlatform = cfg.TrustedPlatform
		}
	}

	return r
}

func setRoutes(r *gin.Engine, cfg *clconfig.Config, svc *services) {
	visitors := handlers_visitors.New(svc.tracker)
	homepage := handlers_homepage.New(svc.homepage)
	projects := handlers_projects.New(svc.projects, cfg.Uploads.Path)
	skills := handlers_skills.New(svc.skills)
	stacks := handlers_techstack.New(svc.stacks)
	contact := handlers_contact.New(svc.contact, svc.captchas, cfg.Production)
	auth := handlers_auth.New(svc.auth)

	// middleware rate limiter pour les endpoints sensibles
	limited := clmiddleware.NewLimiter()

	// Fichiers uploadés (captures d'écran des projets)
	if cfg.Uploads.Path != "" {
		r.Static("/uploads/", cfg.Uploads.Path)
	}

	api := r.Group("/api")
	{
		// Routes publiques
		api.POST("/visitors/track", limited, visitors.Track)
		api.GET("/visitors/count", visitors.Count)
		api.GET("/homepage-config", homepage.GetActive)
		api.GET("/projects", projects.List)
		api.GET("/projects/:slug", projects.BySlug)
		api.GET("/skills", skills.List)
		api.GET("/techstacks", stacks.List)
		api.GET("/captcha", contact.Captcha)
		api.POST("/contact", limited, contact.Submit)

		// Authentification
		api.POST("/auth/login", limited, auth.Login)
	}

	// Routes d'administration protégées par token bearer
	admin := r.Group("/api")
	admin.Use(clmiddleware.RequireAdmin(svc.auth))
	{
		admin.GET("/auth/me", auth.Me)

		admin.GET("/visitors", visitors.List)
		admin.GET("/visitors/snapshots", visitors.Snapshots)
		admin.GET("/visitors/realtime", visitors.Realtime)

		admin.GET("/homepage-config/all", homepage.All)
		admin.GET("/homepage-config/:id", homepage.Get)
		admin.POST("/homepage-config", homepage.Create)
		admin.POST("/homepage-config/:id/update", homepage.Update)
		admin.POST("/homepage-config/:id/activate", homepage.Activate)
		admin.POST("/homepage-config/:id/delete", homepage.Delete)

		admin.GET("/projects/all", projects.ListAll)
		admin.POST("/projects", projects.Create)
		admin.POST("/projects/:id/update", projects.Update)
		admin.POST("/projects/:id/delete", projects.Delete)
		admin.POST("/projects/:id/screenshot", projects.Screenshot)

		admin.POST("/skills", skills.Create)
		admin.POST("/skills/:id/update", skills.Update)
		admin.POST("/skills/:id/delete", skills.Delete)

		admin.POST("/techstacks", stacks.Create)
		admin.POST("/techstacks/:id/update", stacks.Update)
		admin.POST("/techstacks/:id/delete", stacks.Delete)

		admin.GET("/contact", contact.List)
		admin.POST("/contact/:id/read", contact.MarkRead)
		admin.POST("/contact/:id/delete", contact.Delete)
	}
}

func startServer(r *gin.Engine, cfg *clconfig.Config) {
	log.Info().Msgf("API démarrée sur http://%s/api", cfg.Listen.Website)
	r.Run(cfg.Listen.Website)
}

func parseCommandLineArgs() (configFile string, shouldCreateExample bool, versionDisplay bool, err error) {
	var config = flag.String("config", "", "Fichier de configuration YAML")
	var example = flag.Bool("example", false, "Créer un fichier de configuration exemple")
	var version = flag.Bool("version", false, "version du produit")
	flag.Parse()

	if *version {
		return "", false, true, nil
	}

	if *example {
		return "", true, false, nil
	}

	if *config == "" {
		return "", false, false, fmt.Errorf("fichier de configuration requis")
	}

	return *config, false, false, nil
}

func main() {
	if BuildID == "" {
		BuildID = VERSION
	}

	configFile, shouldCreateExample, versionDisplay, err := parseCommandLineArgs()
	if versionDisplay {
		fmt.Printf("littlefolio v%s (%s)\n", VERSION, BuildID)
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	clconfig.CreateExample(shouldCreateExample, configFile)

	cfg, err := clconfig.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	cllog.InitLogger(cfg.Logger, cfg.Production)
	clconfig.DisplayConfiguration(cfg, BuildID)
	clmarkdown.InitMarkdown()

	db, err := cldatabase.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("ouverture de la base impossible")
	}
	if err := cldatabase.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration impossible")
	}

	// Premier lancement : hasher user.pass en argon2 dans la configuration
	if err := clauth.EnsureHash(cfg, configFile); err != nil {
		log.Fatal().Err(err).Msg("hashage du mot de passe impossible")
	}

	svc := newServices(cfg, db)

	svc.tracker.StartSnapshotCron()
	defer svc.tracker.StopSnapshotCron()

	r := newServer(cfg)
	clmiddleware.InitMiddleware(r)
	setRoutes(r, cfg, svc)

	startServer(r, cfg)
}
