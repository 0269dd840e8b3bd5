package clcaptchas

import (
	"strings"

	"littlefolio/internal/models/clerrors"
	"littlefolio/internal/models/clredis"

	"github.com/mojocn/base64Captcha"
	"github.com/redis/go-redis/v9"
)

// Captchas protège le formulaire de contact contre le spam
type Captchas struct {
	store  base64Captcha.Store
	driver base64Captcha.Driver
}

// New construit le captcha ; host vide bascule sur le store mémoire
func New(host string, db int) *Captchas {
	var store base64Captcha.Store
	if host != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: host,
			DB:   db,
		})
		store = clredis.New(redisClient)
	} else {
		store = base64Captcha.DefaultMemStore
	}

	driver := base64Captcha.NewDriverMath(
		80,  // hauteur
		240, // largeur
		6,   // nombre d'opérations à afficher
		base64Captcha.OptionShowHollowLine,
		nil, // couleur de fond
		nil, // police
		nil, // couleurs
	)

	return &Captchas{
		store:  store,
		driver: driver,
	}
}

// GenerateCaptcha génère un défi ; la réponse n'est exposée qu'en
// développement (pratique pour les tests)
func (cap *Captchas) GenerateCaptcha(production bool) (map[string]any, error) {
	captcha := base64Captcha.NewCaptcha(cap.driver, cap.store)

	id, b64s, answer, err := captcha.Generate()
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"captcha_id": id,
		"image":      b64s,
		"answer":     "",
	}

	if !production {
		data["answer"] = answer
	}

	return data, nil
}

// VerifyCaptcha valide la réponse et consomme le défi
func (cap *Captchas) VerifyCaptcha(captchaID string, captchaAnswer string) error {
	captchaID = strings.TrimSpace(captchaID)
	captchaAnswer = strings.TrimSpace(captchaAnswer)

	if captchaID == "" || captchaAnswer == "" {
		return clerrors.Validation("CAPTCHA manquant")
	}

	if !cap.store.Verify(captchaID, captchaAnswer, true) {
		return clerrors.Validation("CAPTCHA incorrect")
	}
	return nil
}
