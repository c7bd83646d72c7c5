// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/middleware"
)

// Router wires handlers and middleware into a Chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMW uses the default configuration.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	// ========================
	// Health and Metrics
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Dashboard API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.AccessLog(middleware.DefaultSlowRequest))
		if router.auth != nil {
			r.Use(router.auth.Authenticate)
		}

		r.Route("/sessions", func(r chi.Router) {
			// Compression breaks the websocket hijack, so it stays off /ws.
			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Compress(5))
				r.With(router.chiMiddleware.RateLimitSessionCreate()).Post("/", router.handler.CreateSession)
				r.Get("/{id}", router.handler.GetSession)
				r.Delete("/{id}", router.handler.DeleteSession)
				r.Patch("/{id}/filters", router.handler.UpdateFilters)
				r.Post("/{id}/query", router.handler.Search)
				r.Post("/{id}/viewport", router.handler.ReportViewport)
				r.Post("/{id}/page", router.handler.SetPage)
				r.Post("/{id}/refresh", router.handler.Refresh)
			})
			r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/{id}/ws", router.handler.SessionWebSocket)
		})

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5))
			r.Get("/likes", router.handler.ListLikes)
			r.With(router.chiMiddleware.RateLimitWrite()).Put("/likes", router.handler.LikeEvent)
			r.With(router.chiMiddleware.RateLimitWrite()).Delete("/likes/{key}", router.handler.UnlikeEvent)
			r.With(router.chiMiddleware.RateLimitWrite()).Put("/preferences", router.handler.UpdatePreference)
			r.Get("/countries", router.handler.Countries)
		})
	})

	return r
}
