package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"littlefolio/internal/clconfig"
	"littlefolio/internal/models/cldatabase"
	"littlefolio/internal/models/cllog"
	"littlefolio/internal/models/clmarkdown"

	"github.com/andskur/argon2-hashing"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ============= Setup et Teardown =============

func setupTestConfig(t *testing.T) *clconfig.Config {
	hash, err := argon2.GenerateFromPassword([]byte("secret1234"), argon2.DefaultParams)
	require.NoError(t, err)

	cfg := &clconfig.Config{
		Database: clconfig.DatabaseConfig{
			Db:   "sqlite",
			Path: ":memory:",
		},
		User: clconfig.UserConfig{
			Login: "admin",
			Hash:  string(hash),
		},
		Auth: clconfig.AuthConfig{
			JWTSecret: "test-secret-for-jwt",
		},
		Site: clconfig.SiteConfig{
			Name:        "Test Portfolio",
			Description: "Description de test",
		},
		Production: false,
		Logger:     clconfig.LoggerConfig{Level: "error"},
	}
	cllog.InitLogger(cfg.Logger, false)
	clmarkdown.InitMarkdown()

	return cfg
}

func setupTestApp(t *testing.T) (*gin.Engine, *services) {
	gin.SetMode(gin.TestMode)
	cfg := setupTestConfig(t)

	db, err := cldatabase.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, cldatabase.Migrate(db))

	svc := newServices(cfg, db)

	r := gin.New()
	setRoutes(r, cfg, svc)

	return r, svc
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func loginToken(t *testing.T, r *gin.Engine) string {
	w := doJSON(r, "POST", "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": "secret1234",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// ============= Tests =============

func TestTrackAndCountEndpoints(t *testing.T) {
	r, _ := setupTestApp(t)

	w := doJSON(r, "POST", "/api/visitors/track", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var track struct {
		IsNewVisitor   bool  `json:"isNewVisitor"`
		UniqueVisitors int64 `json:"uniqueVisitors"`
		TotalVisits    int64 `json:"totalVisits"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &track))
	assert.True(t, track.IsNewVisitor)
	assert.Equal(t, int64(1), track.UniqueVisitors)

	// Même client dans la fenêtre : rien ne bouge
	w = doJSON(r, "POST", "/api/visitors/track", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &track))
	assert.False(t, track.IsNewVisitor)
	assert.Equal(t, int64(1), track.TotalVisits)

	w = doJSON(r, "GET", "/api/visitors/count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var counts struct {
		UniqueVisitors int64 `json:"uniqueVisitors"`
		TotalVisits    int64 `json:"totalVisits"`
	}
	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, int64(1), counts.UniqueVisitors)
	assert.Equal(t, int64(1), counts.TotalVisits)
}

func TestHomepageConfigEndpoint(t *testing.T) {
	r, _ := setupTestApp(t)

	w := doJSON(r, "GET", "/api/homepage-config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var config struct {
		Name     string   `json:"name"`
		IsActive bool     `json:"is_active"`
		Order    []string `json:"order"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &config))

	assert.Equal(t, "default", config.Name)
	assert.True(t, config.IsActive)
	assert.Equal(t, []string{"hero", "about", "projects", "skills", "contact"}, config.Order)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := setupTestApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/visitors"},
		{"GET", "/api/homepage-config/all"},
		{"POST", "/api/projects"},
		{"GET", "/api/contact"},
	}

	for _, p := range paths {
		w := doJSON(r, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p.path)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Message)
	}
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := setupTestApp(t)

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(r, "POST", "/api/auth/login", "", gin.H{
			"username": "admin",
			"password": "mauvais",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid credentials give a working token", func(t *testing.T) {
		token := loginToken(t, r)

		w := doJSON(r, "GET", "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"admin"`)
	})
}

func TestVisitorAdminListing(t *testing.T) {
	r, _ := setupTestApp(t)

	w := doJSON(r, "POST", "/api/visitors/track", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	token := loginToken(t, r)

	w = doJSON(r, "GET", "/api/visitors?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Visitors    []map[string]any `json:"visitors"`
		Total       int64            `json:"total"`
		TotalPages  int64            `json:"totalPages"`
		CurrentPage int              `json:"currentPage"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &list))

	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, int64(1), list.TotalPages)
	assert.Equal(t, 1, list.CurrentPage)
	require.Len(t, list.Visitors, 1)
	assert.NotEmpty(t, list.Visitors[0]["visitor_id"])
}

func TestHomepageConfigAdminWorkflow(t *testing.T) {
	r, _ := setupTestApp(t)
	token := loginToken(t, r)

	// La lecture publique crée la configuration par défaut
	w := doJSON(r, "GET", "/api/homepage-config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Créer une seconde configuration active
	w = doJSON(r, "POST", "/api/homepage-config", token, gin.H{
		"name":      "alternative",
		"is_active": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Elle devient l'active, l'ancienne est désactivée
	w = doJSON(r, "GET", "/api/homepage-config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"alternative"`)

	// Impossible de supprimer l'active
	w = doJSON(r, "POST", fmt.Sprintf("/api/homepage-config/%d/delete", created.ID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Section inconnue refusée
	w = doJSON(r, "POST", fmt.Sprintf("/api/homepage-config/%d/update", created.ID), token, gin.H{
		"sections": gin.H{"sidebar": gin.H{"enabled": true}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectWorkflow(t *testing.T) {
	r, _ := setupTestApp(t)
	token := loginToken(t, r)

	// Créer un projet non publié
	w := doJSON(r, "POST", "/api/projects", token, gin.H{
		"title":       "Mon Projet",
		"description": "Un projet **démo**.",
		"tags":        []string{"go"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var project struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, "mon-projet", project.Slug)

	// Invisible publiquement tant que non publié
	w = doJSON(r, "GET", "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "mon-projet")

	w = doJSON(r, "GET", "/api/projects/mon-projet", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Publication
	w = doJSON(r, "POST", fmt.Sprintf("/api/projects/%d/update", project.ID), token, gin.H{
		"published": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", "/api/projects/mon-projet", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "description_html")

	// Doublon de slug
	w = doJSON(r, "POST", "/api/projects", token, gin.H{"title": "Mon Projet"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestContactWorkflow(t *testing.T) {
	r, _ := setupTestApp(t)

	// Hors production la réponse du captcha est exposée
	w := doJSON(r, "GET", "/api/captcha", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var captcha struct {
		CaptchaID string `json:"captcha_id"`
		Answer    string `json:"answer"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &captcha))
	require.NotEmpty(t, captcha.Answer)

	w = doJSON(r, "POST", "/api/contact", "", gin.H{
		"name":           "Alice",
		"email":          "alice@example.com",
		"subject":        "Bonjour",
		"body":           "Un message de test.",
		"captcha_id":     captcha.CaptchaID,
		"captcha_answer": captcha.Answer,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Captcha consommé : rejouer la même réponse échoue
	w = doJSON(r, "POST", "/api/contact", "", gin.H{
		"name":           "Alice",
		"email":          "alice@example.com",
		"body":           "Encore un message.",
		"captcha_id":     captcha.CaptchaID,
		"captcha_answer": captcha.Answer,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// L'admin retrouve le message
	token := loginToken(t, r)
	w = doJSON(r, "GET", "/api/contact", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestSkillsAndTechstacksPublicListing(t *testing.T) {
	r, _ := setupTestApp(t)
	token := loginToken(t, r)

	w := doJSON(r, "POST", "/api/skills", token, gin.H{
		"name":  "Go",
		"level": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, "POST", "/api/techstacks", token, gin.H{
		"name":     "Gin",
		"category": "Backend",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, "GET", "/api/skills", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Go"`)

	w = doJSON(r, "GET", "/api/techstacks", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Gin"`)
}

func TestCreateExampleConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")

	written, err := clconfig.CreateExampleConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, written)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	var cfg clconfig.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "sqlite", cfg.Database.Db)
	assert.Equal(t, "admin", cfg.User.Login)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}
