package thumbnail

import "context"

// PrecomputeTask renders all configured widths for one image on the
// worker pool.
type PrecomputeTask struct {
	Service      *Service
	RelativePath string
}

// Execute implements worker.Task.
func (t *PrecomputeTask) Execute() {
	t.Service.Precompute(context.Background(), t.RelativePath)
}

// RemoveTask deletes the stored thumbnails for one image on the
// worker pool.
type RemoveTask struct {
	Service      *Service
	RelativePath string
}

// Execute implements worker.Task.
func (t *RemoveTask) Execute() {
	t.Service.Remove(context.Background(), t.RelativePath)
}
