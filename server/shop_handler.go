package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/auth"
	"github.com/thev1ndu/xp/errors"
	"github.com/thev1ndu/xp/shop"
	"github.com/thev1ndu/xp/types"
)

// ShopHandler handles the site's pages and the purchase API
//
// Flow: HTTP Request -> ShopHandler -> shop.Service
//
// Responsibilities:
// - Parse form and JSON input
// - Render pages
// - Map service errors to HTTP responses
type ShopHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewShopHandler creates a new shop handler
func NewShopHandler(app *App) *ShopHandler {
	return &ShopHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "shop").Logger(),
	}
}

// Healthcheck reports that the process is serving
func (h *ShopHandler) Healthcheck(c *gin.Context) {
	OK(c, types.HealthResponse{Status: "ok"})
}

// LoginPage renders the site password form
func (h *ShopHandler) LoginPage(c *gin.Context) {
	if h.app.sessions.Authenticated(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login checks the site password and starts a session
func (h *ShopHandler) Login(c *gin.Context) {
	if !h.app.sessions.Login(c, c.PostForm("password")) {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid password"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout ends the session
func (h *ShopHandler) Logout(c *gin.Context) {
	h.app.sessions.Logout(c)
	c.Redirect(http.StatusFound, "/login")
}

// Index renders the landing page
func (h *ShopHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// RegisterPage renders the registration form
func (h *ShopHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Register issues a token and sends the player to the shop
func (h *ShopHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))

	token, err := h.app.shop.Register(c.Request.Context(), username)
	if err != nil {
		c.HTML(errors.HTTPStatusFromCode(errors.GetCode(err)), "register.html", gin.H{
			"Error":    errors.PublicMessage(err),
			"Username": username,
		})
		return
	}

	query := url.Values{}
	query.Set("username", username)
	query.Set("token", token)
	c.Redirect(http.StatusFound, "/shop?"+query.Encode())
}

// APIRegister issues a token for a JSON client
func (h *ShopHandler) APIRegister(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Username is required")
		return
	}

	token, err := h.app.shop.Register(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, types.TokenResponse{Token: token})
}

// Shop renders the balance and skill list for a registered player
func (h *ShopHandler) Shop(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Query("username")
	token := c.Query("token")

	if !h.app.shop.Authorize(ctx, username, token) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	page := gin.H{
		"Username": username,
		"Token":    token,
		"Balance":  h.app.shop.DisplayBalance(ctx, username),
		"Currency": h.app.config.Shop.Currency,
		"Skills":   h.app.shop.Catalog().Skills(),
	}
	if claims, ok := auth.GetClaims(c); ok && claims.ExpiresAt != nil {
		page["SessionExpires"] = humanize.Time(claims.ExpiresAt.Time)
	}

	c.HTML(http.StatusOK, "shop.html", page)
}

// BuyXP runs a purchase from the shop form. Missing fields are categorized by
// the purchase itself: no token is an invalid session, no skill an unknown skill.
func (h *ShopHandler) BuyXP(c *gin.Context) {
	// An unparseable amount is zero, which the purchase rejects after the session and skill checks
	amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("amount")))
	if err != nil {
		amount = decimal.Zero
	}

	result, err := h.app.shop.Purchase(c.Request.Context(), &shop.PurchaseRequest{
		Username: c.PostForm("username"),
		Token:    c.PostForm("token"),
		Skill:    c.PostForm("skill"),
		Amount:   amount,
	})
	if err != nil {
		Error(c, err)
		return
	}

	PurchaseOK(c, result)
}
