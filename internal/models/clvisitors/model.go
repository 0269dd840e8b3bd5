package clvisitors

import "time"

// Visitor représente une empreinte visiteur dédupliquée
type Visitor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VisitorID string    `gorm:"uniqueIndex;not null;size:64" json:"visitor_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Country   string    `gorm:"size:2" json:"country,omitempty"`
	// Incrémenté d'exactement 1 par visite hors fenêtre, jamais décrémenté
	VisitCount int       `gorm:"not null;default:1" json:"visit_count"`
	LastVisit  time.Time `gorm:"index" json:"last_visit"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Snapshot fige les compteurs agrégés une fois par jour
type Snapshot struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Date           string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	UniqueVisitors int64     `json:"unique_visitors"`
	TotalVisits    int64     `json:"total_visits"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Visitor) TableName() string {
	return "visitors"
}

func (Snapshot) TableName() string {
	return "visitor_snapshots"
}
