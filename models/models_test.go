package models

import (
	"errors"
	"testing"
)

func sampleCatalog() ([]Category, []Community) {
	categories := []Category{
		{ID: "sport", Name: "Sport", Color: "#ff0000"},
		{ID: "science", Name: "Science", Color: "#00ff00"},
	}
	communities := []Community{
		{ID: "chess", Name: "Chess Club", CategoryIDs: []string{"sport", "science"}, MainCategoryID: "science"},
		{ID: "run", Name: "Running", CategoryIDs: []string{"sport"}},
		{ID: "robots", Name: "Robotics", CategoryIDs: []string{"science"}},
	}
	return categories, communities
}

func TestBuildGraph(t *testing.T) {
	categories, communities := sampleCatalog()

	g, err := BuildGraph("catalog", categories, communities, []Link{{Source: "chess", Target: "robots"}})
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	if len(g.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 5 {
		t.Fatalf("expected 5 edges, got %d", len(g.Edges))
	}
	if g.ID == "" {
		t.Error("graph should have an ID")
	}

	sport, err := g.FindNodeByID("sport")
	if err != nil {
		t.Fatalf("sport not found: %v", err)
	}
	if sport.Kind != KindCategory || sport.Size != CategorySize || sport.Color != "#ff0000" {
		t.Errorf("unexpected category node %+v", sport)
	}

	chess, _ := g.FindNodeByID("chess")
	if chess.Kind != KindCommunity || chess.Size != CommunitySize || chess.Color != CommunityColor {
		t.Errorf("unexpected community node %+v", chess)
	}

	mains := 0
	for _, e := range g.Edges {
		if e.Source == "chess" && e.Target == "science" {
			if !e.IsMain || e.Weight != 2 || e.ID != "chess-science" || e.Color != "#00ff00" {
				t.Errorf("main edge wrong: %+v", e)
			}
		}
		if e.Source == "chess" && e.Target == "sport" && e.IsMain {
			t.Errorf("secondary edge marked main: %+v", e)
		}
		if e.Source == "run" && !e.IsMain {
			t.Errorf("first category should be main when none is set: %+v", e)
		}
		if e.Kind == EdgeCommunityCommunity && e.Weight != 1 {
			t.Errorf("link weight should default to 1, got %v", e.Weight)
		}
		if e.IsMain {
			mains++
		}
	}
	if mains != 3 {
		t.Errorf("expected one main edge per community, got %d", mains)
	}
}

func TestBuildGraphRejectsBadReferences(t *testing.T) {
	categories, _ := sampleCatalog()

	tests := []struct {
		name        string
		communities []Community
		links       []Link
	}{
		{"unknown category", []Community{{ID: "x", CategoryIDs: []string{"nope"}}}, nil},
		{"duplicate id", []Community{{ID: "sport"}}, nil},
		{"self loop", []Community{{ID: "x"}}, []Link{{Source: "x", Target: "x"}}},
		{"unknown link target", []Community{{ID: "x"}}, []Link{{Source: "x", Target: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildGraph("bad", categories, tt.communities, tt.links); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAddCommunityUnknownCategoryLeavesGraphUnchanged(t *testing.T) {
	categories, communities := sampleCatalog()
	g, err := BuildGraph("catalog", categories, communities, nil)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	nodes, edges := len(g.Nodes), len(g.Edges)

	err = g.AddCommunity(Community{ID: "poetry", Name: "Poetry", CategoryIDs: []string{"sport", "arts"}}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown category")
	}
	if len(g.Nodes) != nodes || len(g.Edges) != edges {
		t.Errorf("graph changed: %d nodes, %d edges, want %d and %d", len(g.Nodes), len(g.Edges), nodes, edges)
	}
	if _, err := g.FindNodeByID("poetry"); err == nil {
		t.Error("community node left behind")
	}

	// a community is not a category
	if err := g.AddCommunity(Community{ID: "poetry", CategoryIDs: []string{"chess"}}, nil); err == nil {
		t.Error("expected an error when a community is used as a category")
	}
}

func TestQueries(t *testing.T) {
	categories, communities := sampleCatalog()
	g, err := BuildGraph("catalog", categories, communities, nil)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	if _, err := g.FindNodeByID("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	if got := len(g.FindNodesByKind(KindCategory)); got != 2 {
		t.Errorf("expected 2 categories, got %d", got)
	}

	connected := g.ConnectedNodes("science")
	if len(connected) != 2 || connected[0] != "chess" || connected[1] != "robots" {
		t.Errorf("unexpected connected nodes %v", connected)
	}

	counts := g.CommunityCounts()
	if counts["sport"] != 2 || counts["science"] != 2 {
		t.Errorf("unexpected community counts %v", counts)
	}
}

func TestFilterByCategory(t *testing.T) {
	categories, communities := sampleCatalog()
	g, _ := BuildGraph("catalog", categories, communities, nil)

	sub := g.FilterByCategory("sport")
	ids := map[string]bool{}
	for _, n := range sub.Nodes {
		ids[n.ID] = true
	}
	if len(ids) != 3 || !ids["sport"] || !ids["chess"] || !ids["run"] {
		t.Errorf("unexpected filtered nodes %v", ids)
	}
	for _, e := range sub.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("edge %s leaks outside the subgraph", e.ID)
		}
	}
	if len(sub.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(sub.Edges))
	}

	if g.FilterByCategory("") != g {
		t.Error("empty category should return the full graph")
	}
}

func TestRemoveNodeAndClone(t *testing.T) {
	categories, communities := sampleCatalog()
	g, _ := BuildGraph("catalog", categories, communities, nil)

	clone := g.Clone()
	g.RemoveNode("chess")

	if _, err := g.FindNodeByID("chess"); err == nil {
		t.Error("chess should be removed")
	}
	for _, e := range g.Edges {
		if e.Source == "chess" || e.Target == "chess" {
			t.Errorf("edge %s should be removed with its node", e.ID)
		}
	}
	if _, err := clone.FindNodeByID("chess"); err != nil {
		t.Error("clone should be unaffected by removal")
	}
}
