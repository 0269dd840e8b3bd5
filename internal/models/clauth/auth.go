package clauth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"littlefolio/internal/clconfig"
	"littlefolio/internal/models/clerrors"

	"github.com/andskur/argon2-hashing"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

const tokenTTL = 24 * time.Hour

// Service authentifie l'admin et délivre des tokens bearer.
// L'API ne fait que vérifier un token et en extraire le rôle, tout le
// reste (refresh, multi-utilisateurs) est hors périmètre.
type Service struct {
	secret []byte
	login  string
	hash   string
}

func New(cfg *clconfig.Config) *Service {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Secret éphémère : les tokens ne survivent pas à un redémarrage
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatal().Err(err).Msg("génération du secret éphémère impossible")
		}
		secret = hex.EncodeToString(key)
		log.Warn().Msg("auth.jwtsecret absent de la configuration, secret éphémère généré")
	}

	return &Service{
		secret: []byte(secret),
		login:  cfg.User.Login,
		hash:   cfg.User.Hash,
	}
}

// EnsureHash hashe user.pass en argon2 dans user.hash au premier
// lancement puis réécrit la configuration sans le mot de passe en clair
func EnsureHash(cfg *clconfig.Config, configFile string) error {
	if cfg.User.Pass == "" || cfg.User.Hash != "" {
		return nil
	}

	hash, err := argon2.GenerateFromPassword([]byte(cfg.User.Pass), argon2.DefaultParams)
	if err != nil {
		return err
	}

	cfg.User.Hash = string(hash)
	cfg.User.Pass = ""

	if configFile != "" {
		if err := clconfig.WriteConfigYaml(configFile, cfg); err != nil {
			return err
		}
		log.Info().Msg("mot de passe admin hashé en argon2 dans la configuration")
	}
	return nil
}

// Login vérifie les identifiants et retourne un token signé portant le
// rôle admin
func (s *Service) Login(username, password string) (string, error) {
	if username != s.login || s.hash == "" {
		return "", clerrors.Unauthorized("identifiants invalides")
	}
	if err := argon2.CompareHashAndPassword([]byte(s.hash), []byte(password)); err != nil {
		return "", clerrors.Unauthorized("identifiants invalides")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken vérifie la signature et l'expiration puis retourne les
// claims
func (s *Service) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, clerrors.Unauthorized("méthode de signature inattendue")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, clerrors.Unauthorized("token invalide ou expiré")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, clerrors.Unauthorized("token invalide")
	}
	return claims, nil
}

// Role extrait le claim de rôle, vide si absent
func Role(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return role
}
