package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SuccessResponse wraps handler payloads in the shared response envelope.
func SuccessResponse(message string, data interface{}) gin.H {
	return gin.H{
		"success": true,
		"message": message,
		"data":    data,
	}
}

func ErrorResponse(message, detail string) gin.H {
	resp := gin.H{
		"success": false,
		"message": message,
	}
	if detail != "" {
		resp["error"] = detail
	}
	return resp
}

func UnixTimeToTime(unix int64) time.Time {
	return time.Unix(unix, 0)
}
