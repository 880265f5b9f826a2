package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"topicwire/internal/db"
	"topicwire/internal/globaltime"
	"topicwire/internal/trending"
)

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.pool.DB().PingContext(ctx); err != nil {
		s.logger.Error().Err(err).Msg("health check ping failed")
		return internalError(c, "database unreachable")
	}

	return success(c, map[string]any{
		"status": "ok",
		"time":   globaltime.UTC(),
	})
}

func (s *Server) handleTrending(c echo.Context) error {
	window, err := trending.ParseWindow(strings.TrimSpace(c.QueryParam("window")))
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	limit := parseLimit(c.QueryParam("limit"))

	clusters, err := s.trending.Trending(c.Request().Context(), window, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("trending query failed")
		return internalError(c, "failed to load trending clusters")
	}

	return success(c, map[string]any{
		"window":   window,
		"clusters": clusters,
	})
}

func (s *Server) handleBreaking(c echo.Context) error {
	limit := parseLimit(c.QueryParam("limit"))

	clusters, err := s.trending.Breaking(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("breaking query failed")
		return internalError(c, "failed to load breaking clusters")
	}

	return success(c, map[string]any{
		"clusters": clusters,
	})
}

func (s *Server) handleClusters(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && status != "active" && status != "merged" {
		return fail(c, http.StatusBadRequest, "status must be active or merged")
	}
	limit := parseLimit(c.QueryParam("limit"))

	clusters, err := s.pool.ListClusterSummaries(c.Request().Context(), status, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("cluster list query failed")
		return internalError(c, "failed to load clusters")
	}

	return success(c, map[string]any{
		"clusters": clusters,
	})
}

func (s *Server) handleClusterDetail(c echo.Context) error {
	clusterID, err := strconv.ParseInt(strings.TrimSpace(c.Param("cluster_id")), 10, 64)
	if err != nil || clusterID <= 0 {
		return fail(c, http.StatusBadRequest, "cluster_id must be a positive integer")
	}

	ctx := c.Request().Context()
	summary, err := s.pool.GetClusterSummary(ctx, clusterID)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "cluster not found")
		}
		s.logger.Error().Err(err).Int64("cluster_id", clusterID).Msg("cluster detail query failed")
		return internalError(c, "failed to load cluster")
	}

	articles, err := s.pool.ListClusterArticles(ctx, clusterID, parseLimit(c.QueryParam("limit")))
	if err != nil {
		s.logger.Error().Err(err).Int64("cluster_id", clusterID).Msg("cluster article query failed")
		return internalError(c, "failed to load cluster articles")
	}

	return success(c, map[string]any{
		"cluster":  summary,
		"articles": articles,
	})
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
