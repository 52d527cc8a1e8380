package onlineharmonic

import (
	"testing"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

func TestScoreLikedNodeShortCircuitsToOne(t *testing.T) {
	liked := ids.NodeID(1)
	s := NewScorer(nil, []ids.NodeID{liked}, nil)
	require.Equal(t, 1.0, s.Score(liked))
}

func TestScoreDislikedNodeShortCircuitsToZero(t *testing.T) {
	disliked := ids.NodeID(2)
	s := NewScorer(nil, nil, []ids.NodeID{disliked})
	require.Equal(t, 0.0, s.Score(disliked))
}

func TestScoreUsesProxyDistances(t *testing.T) {
	liked := ids.NodeID(10)
	candidate := ids.NodeID(20)
	proxy := ProxyNode{
		ID:           99,
		DistToNode:   map[ids.NodeID]uint8{liked: 1},
		DistFromNode: map[ids.NodeID]uint8{candidate: 1},
	}
	s := NewScorer([]ProxyNode{proxy}, []ids.NodeID{liked}, nil)
	score := s.Score(candidate)
	require.Greater(t, score, 0.0)
}

func TestScoreMemoizes(t *testing.T) {
	s := NewScorer(nil, []ids.NodeID{1}, nil)
	a := s.Score(5)
	b := s.Score(5)
	require.Equal(t, a, b)
}
