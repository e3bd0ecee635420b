package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering HTTP module.
// Public modules register on /api, admin modules on /api/admin.
type Module interface {
	RegisterRoutes(group *gin.RouterGroup)
}
