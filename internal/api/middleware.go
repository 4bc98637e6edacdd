package api

import (
	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/moex-history-service/pkg/util"
)

// requestContext stamps every request with a request id and the client ip,
// so log lines emitted anywhere below the handler carry them.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := util.WithRequestID(c.Request.Context(), c.GetHeader("X-Request-ID"))
		ctx = util.WithClientIP(ctx, c.ClientIP())

		c.Header("X-Request-ID", util.GetRequestID(ctx))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
