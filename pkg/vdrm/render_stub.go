//go:build noebiten

package vdrm

import "github.com/opd-ai/go-vdrm/internal/render"

// runRenderLoop never opens a window in noebiten builds; the instance runs
// until it is stopped.
func (v *viewerImpl) runRenderLoop(*render.Game) {
	v.mu.RLock()
	ctx := v.ctx
	v.mu.RUnlock()
	<-ctx.Done()
}
