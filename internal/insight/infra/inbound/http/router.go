package http

import "github.com/gin-gonic/gin"

// RegisterInsightRoutes registra las rutas HTTP del dashboard.
func RegisterInsightRoutes(r gin.IRouter, handler *InsightHandler) {
	// Agrupamos la API de datos bajo el prefijo "/api"
	api := r.Group("/api")
	{
		api.GET("/data", handler.GetData) // Consulta filtrada y paginada
	}
}
