package cluster

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

func TestDetect_TwoSeparatedGroups(t *testing.T) {
	points := append(blob(30.0, 75.0, 20, 0.005, "Group A"), blob(25.0, 70.0, 20, 0.005, "Group B")...)

	labeled, clusters, err := Detect(points, 0.08, 5)

	require.NoError(t, err)
	require.Len(t, labeled, 40)
	require.Len(t, clusters, 2)

	for _, c := range clusters {
		assert.Equal(t, 20, c.Count)
	}

	byGroup := map[string]domain.DensityCluster{}
	for _, c := range clusters {
		byGroup[c.DominantGroup] = c
	}
	a, b := byGroup["Group A"], byGroup["Group B"]
	assert.InDelta(t, 30.0, a.Centroid.Lat, 0.05)
	assert.InDelta(t, 75.0, a.Centroid.Lon, 0.05)
	assert.InDelta(t, 25.0, b.Centroid.Lat, 0.05)
	assert.InDelta(t, 70.0, b.Centroid.Lon, 0.05)

	for i, l := range labeled {
		assert.NotEqual(t, Noise, l.Cluster, "point %d", i)
		assert.Equal(t, points[i], l.Event, "labeled points keep input order")
	}
	assert.Equal(t, labeled[0].Cluster, labeled[19].Cluster)
	assert.NotEqual(t, labeled[0].Cluster, labeled[20].Cluster)
}

func TestDetect_NoiseRejected(t *testing.T) {
	points := blob(30.0, 75.0, 10, 0.01, "Group A")
	points = append(points, pt(35.0, 80.0, "Group B"), pt(20.0, 60.0, "Group C"))

	labeled, clusters, err := Detect(points, 0.08, 4)

	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 10, clusters[0].Count)
	assert.Equal(t, "Group A", clusters[0].DominantGroup)
	assert.Equal(t, Noise, labeled[10].Cluster)
	assert.Equal(t, Noise, labeled[11].Cluster)
}

func TestDetect_BorderPointJoinsCluster(t *testing.T) {
	// Four points tightly packed plus one 0.09 away from the nearest of them:
	// within eps of a core point, but not itself dense.
	points := []domain.Event{
		pt(30.00, 75.00, "Group A"),
		pt(30.01, 75.00, "Group A"),
		pt(30.00, 75.01, "Group A"),
		pt(30.01, 75.01, "Group A"),
		pt(30.10, 75.01, "Group B"),
	}

	labeled, clusters, err := Detect(points, 0.1, 4)

	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 5, clusters[0].Count)
	assert.Equal(t, clusters[0].ID, labeled[4].Cluster)
	assert.Equal(t, "Group A", clusters[0].DominantGroup)
}

func TestDetect_BorderPointSeenAsNoiseFirst(t *testing.T) {
	// The border point comes first in input order, so it is visited and
	// rejected before its dense neighbourhood is discovered.
	points := []domain.Event{
		pt(30.10, 75.01, "Group B"),
		pt(30.00, 75.00, "Group A"),
		pt(30.01, 75.00, "Group A"),
		pt(30.00, 75.01, "Group A"),
		pt(30.01, 75.01, "Group A"),
	}

	labeled, clusters, err := Detect(points, 0.1, 4)

	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 0, labeled[0].Cluster)
	assert.Equal(t, 5, clusters[0].Count)
}

func TestDetect_ChainIsTransitive(t *testing.T) {
	// Points every 0.05 along a line: each is core with eps 0.06 and
	// min_samples 3, so the chain forms a single cluster.
	var points []domain.Event
	for i := 0; i < 20; i++ {
		points = append(points, pt(30.0+float64(i)*0.05, 75.0, "Group A"))
	}

	_, clusters, err := Detect(points, 0.06, 3)

	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 20, clusters[0].Count)
}

func TestDetect_MinSamplesIncludesSelf(t *testing.T) {
	points := []domain.Event{pt(30.0, 75.0, "Group A"), pt(30.01, 75.0, "Group A")}

	_, clusters, err := Detect(points, 0.05, 2)
	require.NoError(t, err)
	assert.Len(t, clusters, 1)

	_, clusters, err = Detect(points, 0.05, 3)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestDetect_EpsInclusive(t *testing.T) {
	points := []domain.Event{pt(0, 0, "Group A"), pt(0, 0.5, "Group A")}

	_, clusters, err := Detect(points, 0.5, 2)

	require.NoError(t, err)
	assert.Len(t, clusters, 1)
}

func TestDetect_EmptyAndAllNoise(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		labeled, clusters, err := Detect(nil, 0.08, 6)
		require.NoError(t, err)
		assert.Empty(t, labeled)
		assert.Empty(t, clusters)
	})

	t.Run("all noise", func(t *testing.T) {
		points := []domain.Event{pt(10, 10, "Group A"), pt(20, 20, "Group A"), pt(30, 30, "Group A")}
		labeled, clusters, err := Detect(points, 0.08, 2)
		require.NoError(t, err)
		assert.Empty(t, clusters)
		for _, l := range labeled {
			assert.Equal(t, Noise, l.Cluster)
		}
	})
}

func TestDetect_InvalidParams(t *testing.T) {
	points := blob(30, 75, 5, 0.01, "Group A")

	_, _, err := Detect(points, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, _, err = Detect(points, -0.1, 5)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, _, err = Detect(points, 0.08, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestDetect_Deterministic(t *testing.T) {
	points := uniform(3000, 7, 23, 37, 68, 89)
	points = append(points, blob(30, 75, 40, 0.01, "Group A")...)
	points = append(points, blob(26, 80, 40, 0.01, "Group B")...)

	labels1, clusters1, err := Detect(points, 0.08, 6)
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		labels2, clusters2, err := Detect(points, 0.08, 6)
		require.NoError(t, err)
		if diff := cmp.Diff(labels1, labels2); diff != "" {
			t.Fatalf("labels differ (-first +repeat):\n%s", diff)
		}
		if diff := cmp.Diff(clusters1, clusters2); diff != "" {
			t.Fatalf("clusters differ (-first +repeat):\n%s", diff)
		}
	}
	assert.GreaterOrEqual(t, len(clusters1), 2)
}

func TestDetect_SummariesSortedByCount(t *testing.T) {
	points := append(blob(25, 70, 10, 0.01, "Group B"), blob(30, 75, 25, 0.01, "Group A")...)

	_, clusters, err := Detect(points, 0.05, 3)

	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, 25, clusters[0].Count)
	assert.Equal(t, 1, clusters[0].ID, "ids follow discovery order, not size")
	assert.Equal(t, 10, clusters[1].Count)
	assert.Equal(t, 0, clusters[1].ID)
}

func TestDetect_RadiusKm(t *testing.T) {
	points := []domain.Event{
		pt(0, -0.01, "Group A"),
		pt(0, 0, "Group A"),
		pt(0, 0.01, "Group A"),
	}

	_, clusters, err := Detect(points, 0.05, 3)

	require.NoError(t, err)
	require.Len(t, clusters, 1)
	// 0.01 degrees of longitude at the equator.
	expected := 0.01 * math.Pi / 180 * earthRadiusKm
	assert.InDelta(t, expected, clusters[0].RadiusKm, 1e-6)
}

func TestScan_ExpandQueuesEachPointOnce(t *testing.T) {
	// Every point neighbours every other, the worst case for seed growth.
	points := toPlanar(blob(30, 75, 400, 0.001, "Group A"))
	s := newScan(points, 0.5, 6)

	seeds := s.index.neighbors(0, s.eps)
	require.Len(t, seeds, 400)
	assert.Equal(t, 400, s.expand(0, seeds))
	for i, l := range s.labels {
		require.Equal(t, 0, l, "point %d", i)
	}
}

// bruteForceLabels is a reference DBSCAN with linear neighbour scans and no
// seed deduplication.
func bruteForceLabels(points []domain.Event, eps float64, minSamples int) []int {
	pts := toPlanar(points)
	neighbors := func(i int) []int {
		var out []int
		for j := range pts {
			dx, dy := pts[i][0]-pts[j][0], pts[i][1]-pts[j][1]
			if dx*dx+dy*dy <= eps*eps {
				out = append(out, j)
			}
		}
		return out
	}

	labels := make([]int, len(pts))
	for i := range labels {
		labels[i] = unclassified
	}
	next := 0
	for i := range pts {
		if labels[i] != unclassified {
			continue
		}
		seeds := neighbors(i)
		if len(seeds) < minSamples {
			labels[i] = Noise
			continue
		}
		id := next
		next++
		labels[i] = id
		for j := 0; j < len(seeds); j++ {
			q := seeds[j]
			if labels[q] == Noise {
				labels[q] = id
			}
			if labels[q] != unclassified {
				continue
			}
			labels[q] = id
			if more := neighbors(q); len(more) >= minSamples {
				seeds = append(seeds, more...)
			}
		}
	}
	return labels
}

func TestDetect_MatchesBruteForce(t *testing.T) {
	tests := []struct {
		name       string
		eps        float64
		minSamples int
	}{
		{"sparse", 0.05, 6},
		{"medium", 0.15, 5},
		{"dense", 0.4, 4},
	}
	points := uniform(600, 11, 23, 27, 68, 72)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labeled, _, err := Detect(points, tt.eps, tt.minSamples)
			require.NoError(t, err)

			got := make([]int, len(labeled))
			for i, e := range labeled {
				got[i] = e.Cluster
			}
			if diff := cmp.Diff(bruteForceLabels(points, tt.eps, tt.minSamples), got); diff != "" {
				t.Errorf("labels differ from reference (-want +got):\n%s", diff)
			}
		})
	}
}
