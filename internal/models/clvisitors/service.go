package clvisitors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevisitWindow : deux passages de la même empreinte dans cette fenêtre
// ne comptent qu'une seule visite (anti-gonflage des compteurs)
const RevisitWindow = time.Hour

// UnknownSentinel remplace une IP ou un user-agent absent : le tracking
// ne doit jamais bloquer la requête principale
const UnknownSentinel = "unknown"

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ClientContext porte l'identité réseau extraite une seule fois à la
// frontière HTTP
type ClientContext struct {
	IP        string
	UserAgent string
}

type Counts struct {
	UniqueVisitors int64 `json:"uniqueVisitors"`
	TotalVisits    int64 `json:"totalVisits"`
}

type TrackResult struct {
	IsNewVisitor   bool  `json:"isNewVisitor"`
	UniqueVisitors int64 `json:"uniqueVisitors"`
	TotalVisits    int64 `json:"totalVisits"`
}

type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type ListResult struct {
	Visitors    []Visitor `json:"visitors"`
	Total       int64     `json:"total"`
	TotalPages  int64     `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// Champs de tri autorisés (nom externe -> colonne), tout le reste retombe
// silencieusement sur last_visit. Les deux graphies camelCase et snake_case
// sont acceptées.
var sortColumns = map[string]string{
	"visitorId":   "visitor_id",
	"visitor_id":  "visitor_id",
	"ipAddress":   "ip_address",
	"ip_address":  "ip_address",
	"lastVisit":   "last_visit",
	"last_visit":  "last_visit",
	"visitCount":  "visit_count",
	"visit_count": "visit_count",
	"createdAt":   "created_at",
	"created_at":  "created_at",
}

type TrackerService struct {
	db    *gorm.DB
	redis *redis.Client
	geo   *GeoResolver
	cron  *cron.Cron
}

// NewTrackerService construit le tracker ; redisClient et geo sont
// optionnels (nil pour désactiver)
func NewTrackerService(db *gorm.DB, redisClient *redis.Client, geo *GeoResolver) *TrackerService {
	return &TrackerService{
		db:    db,
		redis: redisClient,
		geo:   geo,
	}
}

// Identify dérive l'empreinte stable d'un client depuis son IP et son
// user-agent. Même entrée, même identifiant, y compris entre redémarrages.
// Le digest sha256 est tronqué à 32 hexa (128 bits), suffisant comme clé
// de déduplication.
func Identify(ip, userAgent string) string {
	if ip == "" {
		ip = UnknownSentinel
	}
	if userAgent == "" {
		userAgent = UnknownSentinel
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s", ip, userAgent)))
	return hex.EncodeToString(hash[:])[:32]
}

// Track enregistre un passage et retourne les compteurs à jour.
//
// L'insertion passe par un upsert sur l'index unique visitor_id : en cas
// de course entre deux premières visites, le perdant voit RowsAffected==0
// et bascule sur le chemin revisite. L'incrément est un UPDATE conditionnel
// unique, deux courses sur le même last_visit ne peuvent pas s'appliquer
// deux fois.
func (ts *TrackerService) Track(ctx context.Context, client ClientContext) (*TrackResult, error) {
	now := time.Now()
	visitorID := Identify(client.IP, client.UserAgent)

	ip := client.IP
	if ip == "" {
		ip = UnknownSentinel
	}
	userAgent := client.UserAgent
	if userAgent == "" {
		userAgent = UnknownSentinel
	}

	visitor := Visitor{
		VisitorID:  visitorID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		VisitCount: 1,
		LastVisit:  now,
	}
	result := ts.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}},
			DoNothing: true,
		}).
		Create(&visitor)
	if result.Error != nil {
		return nil, fmt.Errorf("error inserting visitor: %w", result.Error)
	}

	isNew := result.RowsAffected == 1

	if !isNew {
		// Revisite : incrémenter seulement hors fenêtre
		cutoff := now.Add(-RevisitWindow)
		err := ts.db.WithContext(ctx).Model(&Visitor{}).
			Where("visitor_id = ? AND last_visit <= ?", visitorID, cutoff).
			Updates(map[string]interface{}{
				"visit_count": gorm.Expr("visit_count + 1"),
				"last_visit":  now,
				"ip_address":  ip,
				"user_agent":  userAgent,
			}).Error
		if err != nil {
			return nil, fmt.Errorf("error updating visitor: %w", err)
		}
	}

	// Effets secondaires détachés : erreurs loguées, jamais propagées
	go ts.recordDailyCounters(visitorID)
	if isNew {
		go ts.stampCountry(visitorID, ip)
	}

	counts, err := ts.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return &TrackResult{
		IsNewVisitor:   isNew,
		UniqueVisitors: counts.UniqueVisitors,
		TotalVisits:    counts.TotalVisits,
	}, nil
}

// Counts recalcule les agrégats depuis le store à chaque appel, aucun
// cache partagé en mémoire
func (ts *TrackerService) Counts(ctx context.Context) (*Counts, error) {
	var unique int64
	err := ts.db.WithContext(ctx).Model(&Visitor{}).Count(&unique).Error
	if err != nil {
		return nil, fmt.Errorf("error counting unique visitors: %w", err)
	}

	var total int64
	err = ts.db.WithContext(ctx).Model(&Visitor{}).
		Select("COALESCE(SUM(visit_count), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("error summing visits: %w", err)
	}

	return &Counts{UniqueVisitors: unique, TotalVisits: total}, nil
}

// List retourne une page stable de visiteurs ; les bornes hors politique
// sont corrigées silencieusement, jamais rejetées
func (ts *TrackerService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "last_visit"
	}
	direction := "DESC"
	if params.SortOrder == "asc" {
		direction = "ASC"
	}

	var total int64
	err := ts.db.WithContext(ctx).Model(&Visitor{}).Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("error counting visitors: %w", err)
	}

	var visitors []Visitor
	err = ts.db.WithContext(ctx).
		Order(fmt.Sprintf("%s %s", column, direction)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&visitors).Error
	if err != nil {
		return nil, fmt.Errorf("error listing visitors: %w", err)
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &ListResult{
		Visitors:    visitors,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// TakeSnapshot fige les compteurs du jour (upsert sur la date)
func (ts *TrackerService) TakeSnapshot(ctx context.Context) error {
	counts, err := ts.Counts(ctx)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		Date:           time.Now().Format("2006-01-02"),
		UniqueVisitors: counts.UniqueVisitors,
		TotalVisits:    counts.TotalVisits,
	}
	return ts.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"unique_visitors", "total_visits"}),
		}).
		Create(&snapshot).Error
}

// Snapshots retourne les derniers instantanés journaliers
func (ts *TrackerService) Snapshots(ctx context.Context, days int) ([]Snapshot, error) {
	if days < 1 {
		days = 30
	}

	var snapshots []Snapshot
	err := ts.db.WithContext(ctx).
		Order("date DESC").
		Limit(days).
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("error listing snapshots: %w", err)
	}
	return snapshots, nil
}

// RealtimeStats lit les compteurs du jour depuis Redis
func (ts *TrackerService) RealtimeStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{
		"today_tracked_visits":  int64(0),
		"today_unique_visitors": int64(0),
	}
	if ts.redis == nil {
		return stats, nil
	}

	today := time.Now().Format("2006-01-02")

	visits, err := ts.redis.HGet(ctx, "visitors:daily:"+today, "tracked_visits").Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	unique, err := ts.redis.SCard(ctx, "visitors:set:"+today).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	stats["today_tracked_visits"] = visits
	stats["today_unique_visitors"] = unique
	return stats, nil
}

// StartSnapshotCron programme l'instantané journalier à 2h du matin
func (ts *TrackerService) StartSnapshotCron() {
	if ts.cron != nil {
		return
	}
	ts.cron = cron.New()
	_, err := ts.cron.AddFunc("0 2 * * *", func() {
		if err := ts.TakeSnapshot(context.Background()); err != nil {
			log.Error().Err(err).Msg("visitor snapshot failed")
		} else {
			log.Info().Msg("visitor snapshot completed")
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("visitor snapshot cron scheduling failed")
	}
	ts.cron.Start()
}

// StopSnapshotCron arrête le cron (utilisé à l'extinction)
func (ts *TrackerService) StopSnapshotCron() {
	if ts.cron != nil {
		ts.cron.Stop()
	}
}

// recordDailyCounters met à jour les compteurs Redis du jour, en mode
// meilleur effort
func (ts *TrackerService) recordDailyCounters(visitorID string) {
	if ts.redis == nil {
		return
	}
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	dailyKey := "visitors:daily:" + today
	if err := ts.redis.HIncrBy(ctx, dailyKey, "tracked_visits", 1).Err(); err != nil {
		log.Warn().Err(err).Msg("redis daily counter update failed")
		return
	}
	ts.redis.Expire(ctx, dailyKey, 31*24*time.Hour)

	setKey := "visitors:set:" + today
	if err := ts.redis.SAdd(ctx, setKey, visitorID).Err(); err != nil {
		log.Warn().Err(err).Msg("redis visitor set update failed")
		return
	}
	ts.redis.Expire(ctx, setKey, 31*24*time.Hour)
}

// stampCountry renseigne le pays du visiteur via GeoIP, en mode meilleur
// effort
func (ts *TrackerService) stampCountry(visitorID, ip string) {
	if ts.geo == nil {
		return
	}
	country := ts.geo.CountryCode(ip)
	if country == "" {
		return
	}

	err := ts.db.Model(&Visitor{}).
		Where("visitor_id = ? AND country = ''", visitorID).
		Update("country", country).Error
	if err != nil {
		log.Warn().Err(err).Str("visitor_id", visitorID).Msg("country stamp failed")
	}
}
