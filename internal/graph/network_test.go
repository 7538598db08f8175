package graph

import (
	"testing"

	"github.com/passbi/passbi_planner/internal/models"
	"github.com/passbi/passbi_planner/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgeByID(t *testing.T, edges []search.Edge, id int64) search.Edge {
	t.Helper()
	for _, e := range edges {
		if e.(ModelEdge).Model().ID == id {
			return e
		}
	}
	t.Fatalf("edge %d not found", id)
	return nil
}

func TestNetworkEdgesFrom(t *testing.T) {
	g := fixture()

	t.Run("Forward uses outgoing edges", func(t *testing.T) {
		n := NewNetwork(g, baseProfile(), false)
		edges := n.EdgesFrom(1)
		require.Len(t, edges, 2)
		assert.IsType(t, rideEdge{}, edgeByID(t, edges, 10))
		assert.IsType(t, walkEdge{}, edgeByID(t, edges, 13))
	})

	t.Run("Reverse uses incoming edges", func(t *testing.T) {
		n := NewNetwork(g, baseProfile(), true)
		assert.True(t, n.Reversed())

		edges := n.EdgesFrom(4)
		require.Len(t, edges, 2)

		root := search.Root(4, nil)
		next, ok := edgeByID(t, edges, 13).Traverse(&root)
		require.True(t, ok)
		assert.Equal(t, search.Location(1), next.Location)

		next, ok = edgeByID(t, edges, 12).Traverse(&root)
		require.True(t, ok)
		assert.Equal(t, search.Location(3), next.Location)
	})

	t.Run("Unknown edge types are dropped", func(t *testing.T) {
		g := NewInMemoryGraph(
			[]models.Node{{ID: 1}, {ID: 2}},
			[]models.Edge{{ID: 1, FromNodeID: 1, ToNodeID: 2, Type: "ELEVATOR"}},
		)
		assert.Empty(t, NewNetwork(g, baseProfile(), false).EdgesFrom(1))
	})

	t.Run("Location without edges", func(t *testing.T) {
		assert.Empty(t, NewNetwork(g, baseProfile(), false).EdgesFrom(4))
	})
}

func TestWalkTraversal(t *testing.T) {
	g := fixture()
	profile := &Profile{WalkReluctance: 2, WalkDistanceFactor: 0.5}
	walk := edgeByID(t, NewNetwork(g, profile, false).EdgesFrom(1), 13)

	root := search.Root(1, nil)
	root.Weight = 10

	t.Run("Cost and criteria", func(t *testing.T) {
		next, ok := walk.Traverse(&root)
		require.True(t, ok)
		assert.Equal(t, search.Location(4), next.Location)
		assert.Equal(t, 10+1500*2+2000*0.5, next.Weight)
		assert.Equal(t, 1500.0, next.Criteria.At(CriterionElapsed))
		assert.Equal(t, 2000.0, next.Criteria.At(CriterionWalk))
		assert.Equal(t, 0.0, next.Criteria.At(CriterionTransfers))
		assert.True(t, next.Final)
		assert.Nil(t, root.Criteria, "parent criteria must not change")
	})

	t.Run("Walk cap forbids the edge", func(t *testing.T) {
		profile.MaxWalkMeters = 1000
		defer func() { profile.MaxWalkMeters = 0 }()
		_, ok := walk.Traverse(&root)
		assert.False(t, ok)
	})
}

func TestRideTraversal(t *testing.T) {
	g := fixture()
	root := search.Root(1, nil)

	t.Run("Costs ride time", func(t *testing.T) {
		ride := edgeByID(t, NewNetwork(g, baseProfile(), false).EdgesFrom(1), 10)
		next, ok := ride.Traverse(&root)
		require.True(t, ok)
		assert.Equal(t, 300.0, next.Weight)
		assert.Equal(t, 300.0, next.Criteria.At(CriterionElapsed))
		assert.True(t, next.Final)
	})

	t.Run("Banned route", func(t *testing.T) {
		p := baseProfile()
		p.Ban("R1")
		ride := edgeByID(t, NewNetwork(g, p, false).EdgesFrom(1), 10)
		_, ok := ride.Traverse(&root)
		assert.False(t, ok)
	})

	t.Run("Mode not allowed", func(t *testing.T) {
		p := baseProfile()
		p.Allow(models.ModeBRT)
		n := NewNetwork(g, p, false)

		_, ok := edgeByID(t, n.EdgesFrom(1), 10).Traverse(&root)
		assert.False(t, ok)

		brt := search.Root(3, nil)
		_, ok = edgeByID(t, n.EdgesFrom(3), 12).Traverse(&brt)
		assert.True(t, ok)
	})
}

func TestTransferTraversal(t *testing.T) {
	g := fixture()
	root := search.Root(2, nil)

	t.Run("Penalty and non-final state", func(t *testing.T) {
		p := baseProfile()
		p.TransferPenalty = 300
		transfer := edgeByID(t, NewNetwork(g, p, false).EdgesFrom(2), 11)

		next, ok := transfer.Traverse(&root)
		require.True(t, ok)
		assert.Equal(t, 480.0, next.Weight)
		assert.Equal(t, 1.0, next.Criteria.At(CriterionTransfers))
		assert.False(t, next.Final)
	})

	t.Run("Forbidden transfers", func(t *testing.T) {
		p := baseProfile()
		p.ForbidTransfers = true
		transfer := edgeByID(t, NewNetwork(g, p, false).EdgesFrom(2), 11)
		_, ok := transfer.Traverse(&root)
		assert.False(t, ok)
	})
}

func TestHeuristic(t *testing.T) {
	g := fixture()
	target, _ := g.GetNode(4)

	h := Heuristic(g, []models.Node{target}, 30)
	require.NotNil(t, h)
	assert.Equal(t, 0.0, h(4))
	assert.Greater(t, h(1), h(2))
	assert.Equal(t, 0.0, h(99), "unknown nodes estimate zero")

	// never above the fastest real path from A: 720 seconds
	assert.Less(t, h(1), 720.0)

	assert.Nil(t, Heuristic(g, []models.Node{target}, 0))
	assert.Nil(t, Heuristic(g, nil, 30))
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		valid   bool
	}{
		{"Valid", Profile{WalkReluctance: 1}, true},
		{"Reluctance below one", Profile{WalkReluctance: 0.5}, false},
		{"Negative distance factor", Profile{WalkReluctance: 1, WalkDistanceFactor: -1}, false},
		{"Negative transfer penalty", Profile{WalkReluctance: 1, TransferPenalty: -1}, false},
		{"Negative max walk", Profile{WalkReluctance: 1, MaxWalkMeters: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidProfile)
			}
		})
	}
}

func TestProfileClone(t *testing.T) {
	p := baseProfile()
	p.Ban("R1")
	p.Allow(models.ModeBus)

	c := p.Clone()
	c.Ban("R2")
	c.Allow(models.ModeBRT)
	c.WalkReluctance = 5

	assert.False(t, p.BannedRoutes["R2"])
	assert.False(t, p.AllowedModes[models.ModeBRT])
	assert.Equal(t, 1.0, p.WalkReluctance)
	assert.True(t, c.BannedRoutes["R1"])
}
