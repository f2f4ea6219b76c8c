package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
)

// CreateCluster stores a hub-and-spoke cluster and registers the hub as its
// first member.
func (c *Client) CreateCluster(cluster *models.Cluster) error {
	return c.withTx("create cluster", func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRow(`SELECT id FROM clusters WHERE id = ?`, cluster.ID).Scan(&existing)
		if err == nil {
			return &storage.DuplicateError{Entity: "cluster", Key: cluster.ID}
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing cluster: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO clusters (id, name, description, hub_topic_id, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			cluster.ID, cluster.Name, cluster.Description, cluster.HubTopicID, cluster.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert cluster: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO cluster_members (cluster_id, topic_id, role, position)
			VALUES (?, ?, ?, 0)`,
			cluster.ID, cluster.HubTopicID, models.ClusterRoleHub)
		if err != nil {
			return fmt.Errorf("failed to register hub member: %w", err)
		}

		return nil
	})
}

// AddClusterSpoke attaches a topic to a cluster as a spoke.
func (c *Client) AddClusterSpoke(clusterID, topicID string, position int) error {
	return c.withTx("add cluster spoke", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO cluster_members (cluster_id, topic_id, role, position)
			VALUES (?, ?, ?, ?)`,
			clusterID, topicID, models.ClusterRoleSpoke, position)
		if err != nil {
			return fmt.Errorf("failed to add cluster spoke: %w", err)
		}
		return nil
	})
}

// GetCluster returns a cluster by id, or nil.
func (c *Client) GetCluster(id string) (*models.Cluster, error) {
	var (
		cluster   models.Cluster
		createdAt int64
	)
	err := c.db.QueryRow(`
		SELECT id, name, description, hub_topic_id, created_at
		FROM clusters WHERE id = ?`, id).
		Scan(&cluster.ID, &cluster.Name, &cluster.Description, &cluster.HubTopicID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	cluster.CreatedAt = time.Unix(createdAt, 0)
	return &cluster, nil
}

// GetClusterForTopic returns the cluster a topic belongs to, or nil when the
// topic is unclustered.
func (c *Client) GetClusterForTopic(topicID string) (*models.Cluster, error) {
	var clusterID string
	err := c.db.QueryRow(`SELECT cluster_id FROM cluster_members WHERE topic_id = ?`, topicID).Scan(&clusterID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cluster membership: %w", err)
	}

	return c.GetCluster(clusterID)
}

// GetClusterMembers returns the members of a cluster, hub first, then spokes
// in position order.
func (c *Client) GetClusterMembers(clusterID string) ([]models.ClusterMember, error) {
	rows, err := c.db.Query(`
		SELECT cluster_id, topic_id, role, position
		FROM cluster_members
		WHERE cluster_id = ?
		ORDER BY CASE role WHEN 'hub' THEN 0 ELSE 1 END, position`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster members: %w", err)
	}
	defer rows.Close()

	var members []models.ClusterMember
	for rows.Next() {
		var m models.ClusterMember
		if err := rows.Scan(&m.ClusterID, &m.TopicID, &m.Role, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan cluster member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
