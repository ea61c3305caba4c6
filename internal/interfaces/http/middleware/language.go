package middleware

import (
	"github.com/erp/manufacturing/internal/infrastructure/i18n"
	"github.com/gin-gonic/gin"
)

// Language stores the response language in the request context. The
// Accept-Language header wins over the language claim of the token.
func Language(translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := translator.DefaultLanguage()
		if header := c.GetHeader("Accept-Language"); header != "" {
			tag = translator.MatchAcceptLanguage(header)
		} else if claims := GetJWTClaims(c); claims != nil && claims.Language != "" {
			tag = translator.MatchAcceptLanguage(claims.Language)
		}

		c.Request = c.Request.WithContext(i18n.WithLanguage(c.Request.Context(), tag))
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}
