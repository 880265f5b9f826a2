package cluster

import (
	"context"
	"fmt"

	"topicwire/internal/index"
)

// Reconcile repairs clusters whose centroid vector is missing from the
// index. The relational store and the vector index share no transaction, so
// a crash between the two writes can leave an active cluster without a
// centroid; this sweep re-derives it from the centroid article's embedding.
// Returns the number of centroids restored.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("cluster service is not initialized")
	}

	clusters, err := s.pool.ListActiveClusters(ctx, mergeScanLimit)
	if err != nil {
		return 0, fmt.Errorf("load active clusters: %w", err)
	}
	if len(clusters) == 0 {
		return 0, nil
	}

	centroids := s.loadCentroids(ctx, clusters)

	restored := 0
	for _, c := range clusters {
		if _, ok := centroids[c.ClusterID]; ok {
			continue
		}
		if c.CentroidArticleID == nil {
			s.logger.Warn().
				Int64("cluster_id", c.ClusterID).
				Msg("cluster has no centroid vector and no centroid article, cannot repair")
			continue
		}

		articleKey := ArticleKey(*c.CentroidArticleID)
		vectors, err := s.idx.Get(ctx, index.NamespaceArticles, []string{articleKey})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("cluster_id", c.ClusterID).
				Msg("failed to load centroid article embedding")
			continue
		}
		vec, ok := vectors[articleKey]
		if !ok || len(vec) == 0 {
			s.logger.Warn().
				Int64("cluster_id", c.ClusterID).
				Int64("article_id", *c.CentroidArticleID).
				Msg("centroid article has no stored embedding")
			continue
		}

		if err := s.idx.Upsert(ctx, index.NamespaceClusters, ClusterKey(c.ClusterID), vec, nil); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("cluster_id", c.ClusterID).
				Msg("failed to restore cluster centroid")
			continue
		}

		s.logger.Info().
			Int64("cluster_id", c.ClusterID).
			Int64("article_id", *c.CentroidArticleID).
			Msg("restored missing cluster centroid from its seed article")
		restored++
	}
	return restored, nil
}
