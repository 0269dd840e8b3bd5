package clvisitors

import (
	"net/netip"

	"github.com/oschwald/geoip2-golang/v2"
	"github.com/rs/zerolog/log"
)

// GeoResolver résout le code pays d'une IP depuis une base mmdb locale
type GeoResolver struct {
	reader *geoip2.Reader
}

// NewGeoResolver ouvre la base GeoIP ; path vide retourne nil (désactivé)
func NewGeoResolver(path string) (*GeoResolver, error) {
	if path == "" {
		return nil, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("GeoIP database loaded")
	return &GeoResolver{reader: reader}, nil
}

// CountryCode retourne le code ISO du pays, vide si inconnu
func (g *GeoResolver) CountryCode(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}

	record, err := g.reader.Country(addr)
	if err != nil {
		return ""
	}
	return record.Country.ISOCode
}

func (g *GeoResolver) Close() error {
	return g.reader.Close()
}
