package app

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-acme/lego/v4/challenge/dns01"

	"github.com/0xfelix/linode-dns01-hook/pkg/challenge"
	"github.com/0xfelix/linode-dns01-hook/pkg/config"
	"github.com/0xfelix/linode-dns01-hook/pkg/zone"
)

const fqdnValueMissing = "fqdn or value is missing\n"

type Batcher interface {
	Deploy(ctx context.Context, challenges []challenge.Challenge) ([]challenge.Deployment, error)
	Clean(ctx context.Context, challenges []challenge.Challenge) error
}

// Message is the body of lego's httpreq provider in default mode.
type Message struct {
	FQDN  string `json:"fqdn" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func New(cfg *config.Config, b Batcher) (http.Handler, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(logRequests, gin.Recovery())
	if cfg.Debug {
		r.Use(logDebug)
	}

	routes := r.Group("/")
	if cfg.Auth.Username != "" {
		routes.Use(gin.BasicAuth(gin.Accounts{cfg.Auth.Username: cfg.Auth.Password}))
	}
	routes.Use(contentTypeJSON, bind, newAuthorizer(cfg.AllowedDomains))
	routes.POST("/present", present(b))
	routes.POST("/cleanup", cleanup(b))

	return r, nil
}

func bind(c *gin.Context) {
	msg := &Message{}
	if err := c.ShouldBindJSON(msg); err != nil {
		c.String(http.StatusBadRequest, fqdnValueMissing)
		c.Abort()
		return
	}
	c.Set(messageKey, msg)
}

func present(b Batcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg := c.MustGet(messageKey).(*Message)
		log.Printf("received request to present '%s' at '%s'", msg.Value, msg.FQDN)

		if _, err := b.Deploy(c.Request.Context(), []challenge.Challenge{toChallenge(msg)}); err != nil {
			log.Printf("failed to present record: %v", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, msg)
	}
}

func cleanup(b Batcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg := c.MustGet(messageKey).(*Message)
		log.Printf("received request to clean up '%s' at '%s'", msg.Value, msg.FQDN)

		if err := b.Clean(c.Request.Context(), []challenge.Challenge{toChallenge(msg)}); err != nil {
			log.Printf("failed to clean up record: %v", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, msg)
	}
}

// toChallenge accepts the record name with or without the challenge label.
func toChallenge(msg *Message) challenge.Challenge {
	domain := dns01.UnFqdn(msg.FQDN)
	prefix := zone.ChallengeLabel + "."
	if len(domain) > len(prefix) && strings.EqualFold(domain[:len(prefix)], prefix) {
		domain = domain[len(prefix):]
	}
	return challenge.Challenge{DomainName: domain, Token: msg.Value}
}

const messageKey = "message"

func logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	LogRequest(c.Request, start, c.Writer.Status())
}

// LogRequest logs a completed request in a fixed column layout.
func LogRequest(r *http.Request, start time.Time, statusCode int) {
	const methodWidth = 8
	methodPadding := strings.Repeat(" ", max(methodWidth-len(r.Method), 1))
	log.Printf(
		"| %d | %13v | %15s | %s \"%s\"",
		statusCode, time.Since(start), r.RemoteAddr, r.Method+methodPadding, r.URL,
	)
}
