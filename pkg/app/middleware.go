package app

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerContentType = "Content-Type"
	applicationJSON   = "application/json"
	wildcard          = "*"
)

func contentTypeJSON(c *gin.Context) {
	if c.GetHeader(headerContentType) != applicationJSON {
		c.String(http.StatusBadRequest, "Content-Type must be application/json\n")
		c.Abort()
	}
}

// logDebug dumps headers and body of every request while keeping the body
// readable for later handlers.
func logDebug(c *gin.Context) {
	buf, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("failed to read request body: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(buf))

	log.Printf("HEADER %+v", c.Request.Header)
	log.Printf("BODY   %s", buf)
}

func newAuthorizer(allowedDomains []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg := c.MustGet(messageKey).(*Message)
		domain := toChallenge(msg).DomainName

		for _, allowed := range allowedDomains {
			if allowed == wildcard || strings.EqualFold(domain, allowed) || isSubDomain(domain, allowed) {
				return
			}
		}

		log.Printf("client '%s' is not allowed to update '%s'", c.ClientIP(), domain)
		c.AbortWithStatus(http.StatusForbidden)
	}
}

func isSubDomain(sub, parent string) bool {
	return strings.HasSuffix(strings.ToLower(sub), "."+strings.ToLower(parent))
}
