package cluster

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"topicwire/internal/config"
	"topicwire/internal/db"
	"topicwire/internal/globaltime"
	"topicwire/internal/index"
)

const (
	candidateNeighbors = 5
	mergeScanLimit     = 5000

	centroidOldWeight = 0.7
	centroidNewWeight = 0.3
)

// Service runs the clustering batch jobs: assignment, merge, and centroid
// reconciliation.
type Service struct {
	pool   *db.Pool
	idx    index.Index
	cfg    *config.Config
	logger zerolog.Logger
}

func NewService(pool *db.Pool, idx index.Index, cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if idx == nil {
		return nil, fmt.Errorf("index is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return &Service{
		pool:   pool,
		idx:    idx,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// ArticleKey is the index key of an article embedding.
func ArticleKey(articleID int64) string {
	return "article_" + strconv.FormatInt(articleID, 10)
}

// ClusterKey is the index key of a cluster centroid.
func ClusterKey(clusterID int64) string {
	return "cluster_" + strconv.FormatInt(clusterID, 10)
}

// ParseClusterKey extracts the cluster id from a centroid key.
func ParseClusterKey(key string) (int64, bool) {
	raw, ok := strings.CutPrefix(key, "cluster_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ProcessBatch assigns the next batch of unassigned articles to clusters and
// returns how many articles were assigned. Failures inside the batch are
// logged and skipped; the job is idempotent and re-runs pick up whatever
// stayed unassigned.
func (s *Service) ProcessBatch(ctx context.Context) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("cluster service is not initialized")
	}

	articles, err := s.pool.ListUnassignedArticles(ctx, s.cfg.BatchLimit)
	if err != nil {
		return 0, fmt.Errorf("load unassigned articles: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	followers := s.detectDuplicates(articles)
	inputs := s.loadEmbeddings(ctx, articles, followers)
	if len(inputs) == 0 {
		return 0, nil
	}

	groups := BuildGroups(inputs, s.cfg.SimilarityThreshold)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Members) > len(groups[j].Members)
	})

	assigned := 0
	for _, group := range groups {
		count, err := s.assignGroup(ctx, group, followers)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("seed_article_id", group.Seed.ArticleID).
				Int("group_size", len(group.Members)).
				Msg("skipping group after assignment failure")
			continue
		}
		assigned += count
	}

	s.logger.Info().
		Int("batch_size", len(articles)).
		Int("groups", len(groups)).
		Int("assigned", assigned).
		Msg("processed clustering batch")
	return assigned, nil
}

// detectDuplicates returns follower article id -> representative id for
// near-identical texts in the batch. The detector is advisory: any problem
// just means no duplicates are folded this run.
func (s *Service) detectDuplicates(articles []db.ClusteringArticle) map[int64]int64 {
	items := make([]DedupeItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, DedupeItem{
			ID:       a.ArticleID,
			Text:     strings.TrimSpace(a.Title + " " + a.Summary),
			Language: a.Language,
		})
	}

	followers := make(map[int64]int64)
	for rep, dups := range GroupNearDuplicates(items, s.cfg.NearDuplicateThreshold) {
		for _, id := range dups {
			followers[id] = rep
		}
	}
	if len(followers) > 0 {
		s.logger.Debug().
			Int("duplicates", len(followers)).
			Msg("folded near-duplicate articles into their representatives")
	}
	return followers
}

// loadEmbeddings fetches article vectors in sub-batches. A failed sub-batch
// is logged and skipped; a missing vector leaves that article unassigned for
// the next run.
func (s *Service) loadEmbeddings(ctx context.Context, articles []db.ClusteringArticle, followers map[int64]int64) []GroupInput {
	representatives := make([]db.ClusteringArticle, 0, len(articles))
	for _, a := range articles {
		if _, isFollower := followers[a.ArticleID]; isFollower {
			continue
		}
		representatives = append(representatives, a)
	}

	inputs := make([]GroupInput, 0, len(representatives))
	for start := 0; start < len(representatives); start += s.cfg.SubBatchSize {
		end := min(start+s.cfg.SubBatchSize, len(representatives))
		chunk := representatives[start:end]

		keys := make([]string, 0, len(chunk))
		for _, a := range chunk {
			keys = append(keys, ArticleKey(a.ArticleID))
		}

		vectors, err := s.idx.Get(ctx, index.NamespaceArticles, keys)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("sub_batch_size", len(chunk)).
				Msg("skipping sub-batch after embedding fetch failure")
			continue
		}

		for _, a := range chunk {
			vec, ok := vectors[ArticleKey(a.ArticleID)]
			if !ok || len(vec) == 0 {
				s.logger.Debug().
					Int64("article_id", a.ArticleID).
					Msg("article has no stored embedding, leaving unassigned")
				continue
			}
			inputs = append(inputs, GroupInput{Article: a, Embedding: vec})
		}
	}
	return inputs
}

func (s *Service) assignGroup(ctx context.Context, group Group, followers map[int64]int64) (int, error) {
	matches, err := s.idx.Nearest(ctx, index.NamespaceClusters, group.Representative, candidateNeighbors)
	if err != nil {
		return 0, fmt.Errorf("query candidate centroids: %w", err)
	}

	candidateIDs := make([]int64, 0, len(matches))
	similarities := make(map[int64]float64, len(matches))
	for _, m := range matches {
		id, ok := ParseClusterKey(m.Key)
		if !ok {
			continue
		}
		candidateIDs = append(candidateIDs, id)
		similarities[id] = m.Similarity
	}

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin assignment tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := db.AcquireClusteringLock(ctx, tx); err != nil {
		return 0, err
	}

	active, err := db.GetActiveClustersByID(ctx, tx, candidateIDs)
	if err != nil {
		return 0, err
	}

	candidates := make([]Candidate, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		cluster, ok := active[id]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			ClusterID:  id,
			Similarity: similarities[id],
			Keywords:   cluster.Keywords,
		})
	}

	decision := SelectCluster(group.Keywords, candidates, s.cfg.SimilarityThreshold, s.cfg.HighSimilarityThreshold)

	memberships, articleIDs := buildMemberships(group, followers)
	firstSeen, lastSeen := groupSeenWindow(group)

	if decision.Matched {
		target := active[decision.ClusterID]

		inserted, err := db.InsertArticleTopics(ctx, tx, decision.ClusterID, memberships)
		if err != nil {
			return 0, err
		}
		if err := db.ApplyClusterGrowth(ctx, tx, decision.ClusterID, target.Version, int(inserted), group.Seed.ArticleID, lastSeen); err != nil {
			return 0, err
		}
		if err := s.pool.MarkArticlesClustered(ctx, tx, articleIDs); err != nil {
			return 0, err
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("commit assignment tx: %w", err)
		}

		if len(group.Members) > 1 {
			s.blendCentroid(ctx, decision.ClusterID, group)
		}
		return int(inserted), nil
	}

	labelCandidates := make([]TitleCandidate, 0, len(group.Members))
	for _, m := range group.Members {
		labelCandidates = append(labelCandidates, TitleCandidate{
			Title:       m.Article.Title,
			Credibility: m.Article.SourceCredibility,
			PublishedAt: m.Article.PublishedAt,
		})
	}
	label := GenerateLabel(labelCandidates, globaltime.UTC())

	seedID := group.Seed.ArticleID
	clusterID, err := db.InsertCluster(ctx, tx, label, group.Keywords, len(memberships), &seedID, firstSeen, lastSeen)
	if err != nil {
		return 0, err
	}
	if _, err := db.InsertArticleTopics(ctx, tx, clusterID, memberships); err != nil {
		return 0, err
	}
	if err := s.pool.MarkArticlesClustered(ctx, tx, articleIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit new-cluster tx: %w", err)
	}

	if err := s.idx.Upsert(ctx, index.NamespaceClusters, ClusterKey(clusterID), group.Representative, map[string]any{"label": label}); err != nil {
		// The reconcile sweep re-derives the centroid from the seed article.
		s.logger.Warn().
			Err(err).
			Int64("cluster_id", clusterID).
			Msg("failed to store new cluster centroid")
	}

	s.logger.Info().
		Int64("cluster_id", clusterID).
		Str("label", label).
		Int("members", len(memberships)).
		Msg("created new topic cluster")
	return len(memberships), nil
}

// blendCentroid folds the group's mean vector into the stored centroid as
// 0.7*old + 0.3*mean. Failures are non-fatal drift handled by reconcile.
func (s *Service) blendCentroid(ctx context.Context, clusterID int64, group Group) {
	key := ClusterKey(clusterID)

	stored, err := s.idx.Get(ctx, index.NamespaceClusters, []string{key})
	if err != nil {
		s.logger.Warn().Err(err).Int64("cluster_id", clusterID).Msg("failed to load centroid for blending")
		return
	}
	old, ok := stored[key]
	if !ok {
		s.logger.Warn().Int64("cluster_id", clusterID).Msg("centroid missing from index, skipping blend")
		return
	}

	vectors := make([]index.Vector, 0, len(group.Members))
	for _, m := range group.Members {
		vectors = append(vectors, m.Embedding)
	}
	mean, err := index.Mean(vectors)
	if err != nil {
		s.logger.Warn().Err(err).Int64("cluster_id", clusterID).Msg("failed to average member vectors")
		return
	}

	blended, err := index.Blend(old, mean, centroidOldWeight, centroidNewWeight)
	if err != nil {
		s.logger.Warn().Err(err).Int64("cluster_id", clusterID).Msg("failed to blend centroid")
		return
	}

	if err := s.idx.Upsert(ctx, index.NamespaceClusters, key, blended, nil); err != nil {
		s.logger.Warn().Err(err).Int64("cluster_id", clusterID).Msg("failed to store blended centroid")
	}
}

// MergeClusters folds together active clusters whose centroids are nearly
// identical and returns the number of merges performed.
func (s *Service) MergeClusters(ctx context.Context) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("cluster service is not initialized")
	}

	clusters, err := s.pool.ListActiveClusters(ctx, mergeScanLimit)
	if err != nil {
		return 0, fmt.Errorf("load active clusters: %w", err)
	}
	if len(clusters) < 2 {
		return 0, nil
	}

	centroids := s.loadCentroids(ctx, clusters)

	candidates := make([]MergeCandidate, 0, len(clusters))
	for _, c := range clusters {
		centroid, ok := centroids[c.ClusterID]
		if !ok {
			continue
		}
		candidates = append(candidates, MergeCandidate{
			ClusterID:    c.ClusterID,
			ArticleCount: c.ArticleCount,
			Centroid:     centroid,
		})
	}

	plan := PlanMerges(candidates, s.cfg.MergeThreshold)

	lastSeenByID := make(map[int64]time.Time, len(clusters))
	for _, c := range clusters {
		lastSeenByID[c.ClusterID] = c.LastSeen
	}

	merged := 0
	for _, pair := range plan {
		if err := s.mergePair(ctx, pair, lastSeenByID[pair.SourceID]); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("target_id", pair.TargetID).
				Int64("source_id", pair.SourceID).
				Msg("skipping merge pair after failure")
			continue
		}
		merged++
	}

	s.logger.Info().
		Int("active_clusters", len(clusters)).
		Int("planned", len(plan)).
		Int("merged", merged).
		Msg("finished cluster merge pass")
	return merged, nil
}

func (s *Service) loadCentroids(ctx context.Context, clusters []db.ActiveCluster) map[int64]index.Vector {
	out := make(map[int64]index.Vector, len(clusters))
	for start := 0; start < len(clusters); start += s.cfg.SubBatchSize {
		end := min(start+s.cfg.SubBatchSize, len(clusters))
		chunk := clusters[start:end]

		keys := make([]string, 0, len(chunk))
		for _, c := range chunk {
			keys = append(keys, ClusterKey(c.ClusterID))
		}

		vectors, err := s.idx.Get(ctx, index.NamespaceClusters, keys)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("sub_batch_size", len(chunk)).
				Msg("skipping centroid sub-batch after fetch failure")
			continue
		}
		for _, c := range chunk {
			if vec, ok := vectors[ClusterKey(c.ClusterID)]; ok && len(vec) > 0 {
				out[c.ClusterID] = vec
			}
		}
	}
	return out
}

func (s *Service) mergePair(ctx context.Context, pair MergePair, sourceLastSeen time.Time) error {
	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := db.AcquireClusteringLock(ctx, tx); err != nil {
		return err
	}

	active, err := db.GetActiveClustersByID(ctx, tx, []int64{pair.TargetID, pair.SourceID})
	if err != nil {
		return err
	}
	if _, ok := active[pair.TargetID]; !ok {
		return fmt.Errorf("target cluster %d is no longer active", pair.TargetID)
	}
	if _, ok := active[pair.SourceID]; !ok {
		return fmt.Errorf("source cluster %d is no longer active", pair.SourceID)
	}

	dropped, err := db.DeleteOverlappingArticleTopics(ctx, tx, pair.SourceID, pair.TargetID)
	if err != nil {
		return err
	}
	moved, err := db.RepointArticleTopics(ctx, tx, pair.SourceID, pair.TargetID)
	if err != nil {
		return err
	}
	seenAt := sourceLastSeen
	if seenAt.IsZero() {
		seenAt = globaltime.UTC()
	}
	count, err := db.RecountCluster(ctx, tx, pair.TargetID, seenAt)
	if err != nil {
		return err
	}
	if err := db.MarkClusterMerged(ctx, tx, pair.SourceID, pair.TargetID); err != nil {
		return err
	}
	if err := db.DeleteClusterStats(ctx, tx, pair.SourceID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit merge tx: %w", err)
	}

	if err := s.idx.Delete(ctx, index.NamespaceClusters, ClusterKey(pair.SourceID)); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("source_id", pair.SourceID).
			Msg("failed to drop merged cluster centroid from index")
	}

	s.logger.Info().
		Int64("target_id", pair.TargetID).
		Int64("source_id", pair.SourceID).
		Float64("similarity", pair.Similarity).
		Int64("moved", moved).
		Int64("duplicates_dropped", dropped).
		Int("target_count", count).
		Msg("merged clusters")
	return nil
}

func buildMemberships(group Group, followers map[int64]int64) ([]db.ArticleTopic, []int64) {
	reverse := make(map[int64][]int64)
	for follower, rep := range followers {
		reverse[rep] = append(reverse[rep], follower)
	}

	memberships := make([]db.ArticleTopic, 0, len(group.Members))
	articleIDs := make([]int64, 0, len(group.Members))
	for _, m := range group.Members {
		memberships = append(memberships, db.ArticleTopic{
			ArticleID:  m.Article.ArticleID,
			Similarity: m.Similarity,
		})
		articleIDs = append(articleIDs, m.Article.ArticleID)

		// Near-duplicate followers ride with their representative.
		for _, follower := range reverse[m.Article.ArticleID] {
			memberships = append(memberships, db.ArticleTopic{
				ArticleID:  follower,
				Similarity: m.Similarity,
			})
			articleIDs = append(articleIDs, follower)
		}
	}
	return memberships, articleIDs
}

func groupSeenWindow(group Group) (time.Time, time.Time) {
	now := globaltime.UTC()
	first, last := now, now

	initialized := false
	for _, m := range group.Members {
		published := m.Article.PublishedAt
		if published == nil {
			continue
		}
		at := published.UTC()
		if !initialized {
			first, last = at, at
			initialized = true
			continue
		}
		if at.Before(first) {
			first = at
		}
		if at.After(last) {
			last = at
		}
	}
	return first, last
}
