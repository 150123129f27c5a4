package auth

import "github.com/gin-gonic/gin"

// claimsKey is the single gin-context key the binder owns. Identity travels
// as one typed Claims value, not as loose string fields.
const claimsKey = "auth_claims"

// Bind stores the resolved claims on the current request. The token
// middleware is the only writer.
func Bind(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
}

// Current resolves the caller's claims for this request.
func Current(c *gin.Context) (*Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// IsAuthenticated reports whether the request carries resolved claims.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := Current(c)
	return ok
}

// Clear drops the bound claims from the request.
func Clear(c *gin.Context) {
	c.Set(claimsKey, (*Claims)(nil))
}
