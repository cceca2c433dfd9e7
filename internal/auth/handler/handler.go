package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/refresh"
	"github.com/adhocteam/va-mobile-sampleweb/internal/logger"
	"github.com/adhocteam/va-mobile-sampleweb/internal/middleware"
	"github.com/adhocteam/va-mobile-sampleweb/internal/mobileapi"
	"github.com/adhocteam/va-mobile-sampleweb/internal/session"
	"github.com/adhocteam/va-mobile-sampleweb/internal/token"
)

type Handler struct {
	providers *provider.Registry
	sessions  session.Store
	tokens    token.Store
	refresher *refresh.Service
	api       *mobileapi.Client
	verbose   bool
}

func NewHandler(
	registry *provider.Registry,
	sessions session.Store,
	tokens token.Store,
	refresher *refresh.Service,
	api *mobileapi.Client,
	verbose bool,
) *Handler {
	return &Handler{
		providers: registry,
		sessions:  sessions,
		tokens:    tokens,
		refresher: refresher,
		api:       api,
		verbose:   verbose,
	}
}

// RegisterRoutes wires the auth surface. The paths are contract: external
// clients and the provider redirect registrations depend on them.
func (h *Handler) RegisterRoutes(r *gin.Engine, loadSession, requireLogin, basicAuth gin.HandlerFunc) {
	// gin's router cannot hold the static /auth/refresh next to the
	// /auth/:provider wildcard, so the provider route dispatches its one
	// static sibling itself.
	r.GET("/auth/:provider", loadSession, h.authDispatch)
	r.GET("/auth/:provider/login-success", loadSession, h.callback)
	r.GET("/auth/:provider/token/:email", basicAuth, h.serverToServerToken)
	r.GET("/logout", loadSession, h.logout)

	r.GET("/user", loadSession, requireLogin, h.userProfile)
	r.GET("/messaging", loadSession, requireLogin, h.messagingFolders)
	r.GET("/messaging/:folderId", loadSession, requireLogin, h.folderMessages)
}

// errorView is the generic failure response for the interactive flow. It
// never exposes provider details and never mutates the session.
func errorView(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (h *Handler) authDispatch(c *gin.Context) {
	if c.Param("provider") == "refresh" {
		h.refresh(c)
		return
	}
	h.login(c)
}

func (h *Handler) login(c *gin.Context) {
	providerKey := c.Param("provider")

	flow, err := h.providers.Get(providerKey)
	if err != nil {
		errorView(c, http.StatusBadRequest, "unknown provider")
		return
	}

	attempt := uuid.NewString()
	state := setState(c)

	var challenge string
	if flow.Descriptor().PKCE == provider.PKCEEnabled {
		_, challenge = generatePKCE(c)
	}

	logger.Info("login initiated",
		zap.String("provider", providerKey),
		zap.String("attempt", attempt),
	)

	c.Redirect(http.StatusFound, flow.AuthCodeURL(state, challenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerKey := c.Param("provider")

	flow, err := h.providers.Get(providerKey)
	if err != nil {
		errorView(c, http.StatusBadRequest, "unknown provider")
		return
	}
	desc := flow.Descriptor()

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider callback returned error",
			zap.String("provider", providerKey),
			zap.String("error", errParam),
			zap.String("description", c.Query("error_description")),
		)
		errorView(c, http.StatusUnauthorized, "authentication failed")
		return
	}

	code := c.Query("code")
	if code == "" {
		errorView(c, http.StatusBadRequest, "missing authorization code")
		return
	}

	// The pending authorization request: state plus, in PKCE mode, the
	// per-attempt verifier. The sis flow carries a fixed verifier and does
	// not bind it to the originating request.
	var verifier string
	if desc.PKCE == provider.PKCEEnabled {
		if !validateState(c) {
			errorView(c, http.StatusUnauthorized, "invalid state")
			return
		}
		verifier = getPKCEVerifier(c)
		if verifier == "" {
			errorView(c, http.StatusUnauthorized, "missing pkce verifier")
			return
		}
	} else {
		verifier = desc.CodeVerifier
	}

	ctx := c.Request.Context()

	ts, err := flow.Exchange(ctx, code, verifier)
	if err != nil {
		logger.Error("token exchange failed",
			zap.String("provider", providerKey),
			zap.Error(err),
		)
		errorView(c, exchangeStatus(err), "authentication failed")
		return
	}

	identity, err := flow.ResolveIdentity(ctx, ts)
	if err != nil {
		logger.Error("identity resolution failed",
			zap.String("provider", providerKey),
			zap.Error(err),
		)
		errorView(c, exchangeStatus(err), "authentication failed")
		return
	}

	// Persist before binding: a failed upsert leaves the session exactly
	// as it was.
	if err := h.tokens.Upsert(ctx, providerKey, identity.Email,
		ts.AccessToken, ts.RefreshToken); err != nil {
		logger.Error("token upsert failed", zap.Error(err))
		errorView(c, http.StatusInternalServerError, "authentication failed")
		return
	}

	if err := h.bindSession(c, identity, ts, providerKey); err != nil {
		logger.Error("session bind failed", zap.Error(err))
		errorView(c, http.StatusInternalServerError, "authentication failed")
		return
	}

	h.logLogin(providerKey, identity, ts)
	c.Redirect(http.StatusFound, "/")
}

// bindSession merges the exchange result into the current session user, or
// creates a session when the request carries none.
func (h *Handler) bindSession(c *gin.Context, identity *auth.Identity, ts *auth.TokenSet, providerKey string) error {
	ctx := c.Request.Context()

	sess, ok := middleware.SessionFromContext(c)
	if ok {
		var base session.User
		if sess.User != nil {
			base = *sess.User
		}
		merged := base.Merge(identity, ts, providerKey)
		sess.User = &merged
		return h.sessions.Update(ctx, *sess)
	}

	id, err := session.GenerateID()
	if err != nil {
		return err
	}
	now := time.Now()
	merged := session.User{}.Merge(identity, ts, providerKey)
	newSess := session.Session{
		SessionID: id,
		User:      &merged,
		CreatedAt: now,
		ExpiresAt: now.Add(session.Lifetime),
	}
	if err := h.sessions.Create(ctx, newSess); err != nil {
		return err
	}
	session.SetCookie(c.Writer, id, newSess.ExpiresAt)
	return nil
}

func (h *Handler) logout(c *gin.Context) {
	if sess, ok := middleware.SessionFromContext(c); ok {
		h.refresher.Revoke(c.Request.Context(), sess)
	}
	session.ClearCookie(c.Writer)
	c.Redirect(http.StatusFound, "/")
}

// logLogin follows the verbosity contract: raw token material only when
// verbose logging is enabled, otherwise a digest.
func (h *Handler) logLogin(providerKey string, identity *auth.Identity, ts *auth.TokenSet) {
	if h.verbose {
		logger.Debug("login succeeded",
			zap.String("provider", providerKey),
			zap.String("email", identity.Email),
			zap.String("access_token", ts.AccessToken),
			zap.Any("claims", identity.Claims),
		)
		return
	}
	logger.Info("login succeeded",
		zap.String("provider", providerKey),
		zap.String("email", identity.Email),
		zap.String("access_token_digest", logger.Digest(ts.AccessToken)),
	)
}

func exchangeStatus(err error) int {
	if errors.Is(err, auth.ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusUnauthorized
}
