package correlation

import "sort"

// clusterDetectors partitions the detector set into connected components of
// the redundancy graph: an edge joins A and B iff |pearson_r| >= threshold.
// Traversal is breadth-first over lexically sorted detector ids so the
// partition is deterministic. Every detector lands in exactly one cluster;
// detectors with no qualifying edge (including those whose pairs were
// omitted) become singletons.
func clusterDetectors(detectors []string, pairs []PairResult, threshold float64) []Cluster {
	adjacency := make(map[string][]string, len(detectors))
	for _, p := range pairs {
		r := p.PearsonR
		if r < 0 {
			r = -r
		}
		if r >= threshold {
			adjacency[p.DetectorA] = append(adjacency[p.DetectorA], p.DetectorB)
			adjacency[p.DetectorB] = append(adjacency[p.DetectorB], p.DetectorA)
		}
	}

	ordered := make([]string, len(detectors))
	copy(ordered, detectors)
	sort.Strings(ordered)

	visited := make(map[string]bool, len(ordered))
	var clusters []Cluster

	for _, start := range ordered {
		if visited[start] {
			continue
		}
		visited[start] = true

		members := []string{start}
		queue := []string{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, neighbor := range adjacency[current] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				members = append(members, neighbor)
				queue = append(queue, neighbor)
			}
		}

		sort.Strings(members)
		clusters = append(clusters, Cluster{Detectors: members})
	}

	return clusters
}

// ClusterOf returns the index of the cluster containing detectorID, or -1.
func ClusterOf(clusters []Cluster, detectorID string) int {
	for i, c := range clusters {
		if c.Contains(detectorID) {
			return i
		}
	}
	return -1
}
