package model

// FeatureStats summarizes one feature over the members of a cluster.
type FeatureStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
}

// Cluster is one archetype produced by a clustering run.
type Cluster struct {
	ClusterID     int            `json:"cluster_id"`
	ArchetypeName string         `json:"archetype_name"`
	Description   string         `json:"description"`
	Centroid      []float64      `json:"centroid"`
	MemberIDs     []string       `json:"member_ids"`
	Size          int            `json:"size"`
	SummaryStats  []FeatureStats `json:"summary_stats"`
}

// ArchetypeShare is one row of a cluster overview.
type ArchetypeShare struct {
	ArchetypeName string  `json:"archetype_name"`
	Size          int     `json:"size"`
	Percentage    float64 `json:"percentage"`
}

// ClusterOverview summarizes a whole clustering run.
type ClusterOverview struct {
	TotalClusters     int              `json:"total_clusters"`
	TotalParticipants int              `json:"total_participants"`
	Archetypes        []ArchetypeShare `json:"archetypes"`
}
