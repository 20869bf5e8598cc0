package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerInfo holds the API metadata shown in the Swagger UI
type SwaggerInfo struct {
	Title       string
	Description string
	Version     string
	BasePath    string
}

// SwaggerInfoUpdater copies SwaggerInfo into the registered docs package.
// Example: func(info server.SwaggerInfo) { docs.SwaggerInfo.Title = info.Title }
type SwaggerInfoUpdater func(info SwaggerInfo)

// RegisterSwagger serves the Swagger UI under /swagger/. The docs package must
// be imported by the caller so its document is registered with swag.
//
// update runs once, before the route is served. The host is left empty so the
// UI calls whichever host it was loaded from, including behind a proxy.
func (a *App) RegisterSwagger(info SwaggerInfo, update SwaggerInfoUpdater) {
	if update != nil {
		update(info)
	}

	a.engine.GET("/swagger/*any", a.swaggerHandler())

	a.logger.Info().
		Str("path", "/swagger/index.html").
		Str("title", info.Title).
		Msg("Swagger UI registered")
}

func (a *App) swaggerHandler() gin.HandlerFunc {
	return ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
	)
}
