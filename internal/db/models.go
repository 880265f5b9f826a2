package db

import (
	"encoding/json"
	"time"
)

// Article maps news.articles. Rows are written by the ingestion pipeline;
// this module only reads them and advances cluster_status.
type Article struct {
	ArticleID         int64      `gorm:"column:article_id;primaryKey;autoIncrement"`
	ArticleUUID       string     `gorm:"column:article_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Title             string     `gorm:"column:title;type:text;not null"`
	Summary           string     `gorm:"column:summary;type:text;not null;default:''"`
	URL               *string    `gorm:"column:url;type:text"`
	Source            string     `gorm:"column:source;type:text;not null"`
	SourceCredibility string     `gorm:"column:source_credibility;type:text;not null;default:unknown"`
	Language          string     `gorm:"column:language;type:text;not null;default:und"`
	PublishedAt       *time.Time `gorm:"column:published_at;type:timestamptz"`
	ClusterStatus     string     `gorm:"column:cluster_status;type:text;not null;default:pending"`
	CreatedAt         time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Article) TableName() string { return "news.articles" }

// TopicCluster maps news.topic_clusters.
type TopicCluster struct {
	ClusterID         int64           `gorm:"column:cluster_id;primaryKey;autoIncrement"`
	ClusterUUID       string          `gorm:"column:cluster_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Label             string          `gorm:"column:label;type:text;not null"`
	Keywords          json.RawMessage `gorm:"column:keywords;type:jsonb;not null;default:'[]'"`
	ArticleCount      int             `gorm:"column:article_count;type:integer;not null;default:0"`
	CentroidArticleID *int64          `gorm:"column:centroid_article_id;type:bigint"`
	Status            string          `gorm:"column:status;type:news.cluster_status;not null;default:active"`
	MergedIntoID      *int64          `gorm:"column:merged_into_id;type:bigint"`
	Version           int64           `gorm:"column:version;type:bigint;not null;default:0"`
	FirstSeen         time.Time       `gorm:"column:first_seen;type:timestamptz;not null"`
	LastSeen          time.Time       `gorm:"column:last_seen;type:timestamptz;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (TopicCluster) TableName() string { return "news.topic_clusters" }

// ArticleTopic maps news.article_topics. One row per article while its
// cluster is active.
type ArticleTopic struct {
	ArticleID        int64     `gorm:"column:article_id;type:bigint;primaryKey"`
	ClusterID        int64     `gorm:"column:cluster_id;type:bigint;not null"`
	ArticleTopicUUID string    `gorm:"column:article_topic_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Similarity       float64   `gorm:"column:similarity;type:double precision;not null"`
	AssignedAt       time.Time `gorm:"column:assigned_at;type:timestamptz;not null;default:now()"`
}

func (ArticleTopic) TableName() string { return "news.article_topics" }

// ClusterStatsDaily maps news.cluster_stats_daily.
type ClusterStatsDaily struct {
	ClusterID          int64     `gorm:"column:cluster_id;type:bigint;primaryKey"`
	StatDate           time.Time `gorm:"column:stat_date;type:date;primaryKey"`
	ArticleCount       int       `gorm:"column:article_count;type:integer;not null;default:0"`
	DistinctSources    int       `gorm:"column:distinct_sources;type:integer;not null;default:0"`
	ExternalEventCount int       `gorm:"column:external_event_count;type:integer;not null;default:0"`
	UpdatedAt          time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (ClusterStatsDaily) TableName() string { return "news.cluster_stats_daily" }

// ClusterStatsHourly maps news.cluster_stats_hourly.
type ClusterStatsHourly struct {
	ClusterID       int64     `gorm:"column:cluster_id;type:bigint;primaryKey"`
	StatHour        time.Time `gorm:"column:stat_hour;type:timestamptz;primaryKey"`
	ArticleCount    int       `gorm:"column:article_count;type:integer;not null;default:0"`
	DistinctSources int       `gorm:"column:distinct_sources;type:integer;not null;default:0"`
	IsSpike         bool      `gorm:"column:is_spike;type:boolean;not null;default:false"`
	SpikeMagnitude  float64   `gorm:"column:spike_magnitude;type:double precision;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (ClusterStatsHourly) TableName() string { return "news.cluster_stats_hourly" }

// ClusterExternalEvent maps news.cluster_external_events. Written by outside
// systems (social mentions, wire alerts); read here for the trending bonus.
type ClusterExternalEvent struct {
	EventID    int64     `gorm:"column:event_id;primaryKey;autoIncrement"`
	EventUUID  string    `gorm:"column:event_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	ClusterID  int64     `gorm:"column:cluster_id;type:bigint;not null"`
	Source     string    `gorm:"column:source;type:text;not null"`
	EventType  string    `gorm:"column:event_type;type:text;not null"`
	OccurredAt time.Time `gorm:"column:occurred_at;type:timestamptz;not null;default:now()"`
}

func (ClusterExternalEvent) TableName() string { return "news.cluster_external_events" }

// IndexVector maps news.index_vectors, the pgvector store behind both the
// article and cluster namespaces.
type IndexVector struct {
	Namespace string          `gorm:"column:namespace;type:text;primaryKey"`
	VectorKey string          `gorm:"column:vector_key;type:text;primaryKey"`
	Embedding string          `gorm:"column:embedding;type:vector(1536);not null"`
	Metadata  json.RawMessage `gorm:"column:metadata;type:jsonb"`
	UpdatedAt time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (IndexVector) TableName() string { return "news.index_vectors" }

func autoMigrateModels() []any {
	return []any{
		&Article{},
		&TopicCluster{},
		&ArticleTopic{},
		&ClusterStatsDaily{},
		&ClusterStatsHourly{},
		&ClusterExternalEvent{},
		&IndexVector{},
	}
}
