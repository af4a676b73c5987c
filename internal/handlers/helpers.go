package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// tolerant of value types (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// instanceFromCtx resolves the tenant for the request: the authenticated
// user's instance, or instance 1 for unauthenticated/legacy calls.
func instanceFromCtx(c *gin.Context) int {
	if id, ok := getIntFromCtx(c, "instance_id"); ok && id > 0 {
		return id
	}
	return 1
}

func usernameFromCtx(c *gin.Context) string {
	if v, ok := c.Get("username"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
