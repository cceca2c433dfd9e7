package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/handler"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider/iam"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider/sis"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/refresh"
	"github.com/adhocteam/va-mobile-sampleweb/internal/config"
	"github.com/adhocteam/va-mobile-sampleweb/internal/middleware"
	"github.com/adhocteam/va-mobile-sampleweb/internal/mobileapi"
	"github.com/adhocteam/va-mobile-sampleweb/internal/session"
	"github.com/adhocteam/va-mobile-sampleweb/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	tokenStore := token.NewPostgresStore(infra.DB)

	// Provider descriptors are built once and cached for the process
	// lifetime; a missing secret or URL is fatal here, not at login time.
	iamDesc, err := provider.IAMDescriptor(cfg)
	if err != nil {
		return nil, nil, err
	}
	iamFlow, err := iam.New(ctx, iamDesc, cfg.IAMVerifyIDToken)
	if err != nil {
		return nil, nil, err
	}

	sisDesc, err := provider.SISDescriptor(cfg)
	if err != nil {
		return nil, nil, err
	}
	sisFlow := sis.New(sisDesc)

	registry := provider.NewRegistry(iamFlow, sisFlow)

	if cfg.TokenAPIUser == "" || cfg.TokenAPIPassword == "" {
		return nil, nil, &auth.ConfigError{Field: "TOKEN_API_USER"}
	}

	refresher := refresh.New(registry, tokenStore, sessionStore)
	apiClient := mobileapi.New(cfg.APIBaseURL)

	authHandler := handler.NewHandler(
		registry,
		sessionStore,
		tokenStore,
		refresher,
		apiClient,
		cfg.Verbose,
	)

	loadSession := middleware.LoadSession(sessionStore)
	requireLogin := middleware.RequireLogin()
	basicAuth := middleware.RequireBasicAuth(cfg.TokenAPIUser, cfg.TokenAPIPassword)

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router, loadSession, requireLogin, basicAuth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Login entry point. Unauthenticated requests land here.
	router.GET("/", loadSession, func(c *gin.Context) {
		if sess, ok := middleware.SessionFromContext(c); ok && sess.User != nil {
			c.JSON(http.StatusOK, gin.H{
				"authenticated": true,
				"provider":      sess.User.Provider,
				"email":         sess.User.Email,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"login":         []string{"/auth/iam", "/auth/sis"},
		})
	})

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
