package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
)

func setupCluster(t *testing.T, client *Client) *models.Cluster {
	t.Helper()

	mustInsertTopic(t, client, "hub")
	mustInsertTopic(t, client, "spoke-1")
	mustInsertTopic(t, client, "spoke-2")

	cluster := &models.Cluster{
		ID:         "cluster-1",
		Name:       "Patagonia hiking",
		HubTopicID: "hub",
		CreatedAt:  time.Unix(time.Now().Unix(), 0),
	}
	if err := client.CreateCluster(cluster); err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}
	if err := client.AddClusterSpoke("cluster-1", "spoke-1", 1); err != nil {
		t.Fatalf("AddClusterSpoke(spoke-1): %v", err)
	}
	if err := client.AddClusterSpoke("cluster-1", "spoke-2", 2); err != nil {
		t.Fatalf("AddClusterSpoke(spoke-2): %v", err)
	}

	return cluster
}

func TestCreateClusterRegistersHub(t *testing.T) {
	client := setupTestDB(t)
	setupCluster(t, client)

	members, err := client.GetClusterMembers("cluster-1")
	if err != nil {
		t.Fatalf("GetClusterMembers: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("members = %d, want 3", len(members))
	}
	if members[0].TopicID != "hub" || members[0].Role != models.ClusterRoleHub {
		t.Errorf("first member = %+v, want the hub", members[0])
	}
	if members[1].TopicID != "spoke-1" || members[2].TopicID != "spoke-2" {
		t.Errorf("spokes out of position order: %v", members)
	}
}

func TestCreateClusterDuplicate(t *testing.T) {
	client := setupTestDB(t)
	cluster := setupCluster(t, client)

	err := client.CreateCluster(cluster)
	var dup *storage.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}

func TestGetClusterForTopic(t *testing.T) {
	client := setupTestDB(t)
	setupCluster(t, client)
	mustInsertTopic(t, client, "loner")

	cluster, err := client.GetClusterForTopic("spoke-1")
	if err != nil {
		t.Fatalf("GetClusterForTopic: %v", err)
	}
	if cluster == nil || cluster.ID != "cluster-1" {
		t.Errorf("GetClusterForTopic = %+v, want cluster-1", cluster)
	}

	none, err := client.GetClusterForTopic("loner")
	if err != nil {
		t.Fatalf("GetClusterForTopic(loner): %v", err)
	}
	if none != nil {
		t.Errorf("unclustered topic resolved to %+v", none)
	}
}

func TestClusterMembersFollowTopicDelete(t *testing.T) {
	client := setupTestDB(t)
	setupCluster(t, client)

	if err := client.DeleteTopic("spoke-1"); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}

	members, err := client.GetClusterMembers("cluster-1")
	if err != nil {
		t.Fatalf("GetClusterMembers: %v", err)
	}
	for _, m := range members {
		if m.TopicID == "spoke-1" {
			t.Error("membership row survived topic delete")
		}
	}
}
