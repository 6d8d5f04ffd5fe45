package versioning

// CleanupPlan partitions a version list under a retention policy.
type CleanupPlan struct {
	Keep   []string `json:"keep"`   // newest first
	Remove []string `json:"remove"` // newest first
}

// Cleanup keeps the keep most recent versions and marks the remainder for removal.
// Exactly min(len(versions), keep) versions are kept; a negative keep counts as zero.
func Cleanup(versions []string, keep int) CleanupPlan {
	if keep < 0 {
		keep = 0
	}
	sorted := Sort(versions, true)
	if keep > len(sorted) {
		keep = len(sorted)
	}
	return CleanupPlan{
		Keep:   sorted[:keep],
		Remove: sorted[keep:],
	}
}
