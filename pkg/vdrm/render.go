//go:build !noebiten

package vdrm

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-vdrm/internal/render"
)

// runRenderLoop runs the window loop. It blocks until the window is closed
// or the context is cancelled.
func (v *viewerImpl) runRenderLoop(game *render.Game) {
	if err := game.Run(); err != nil && !errors.Is(err, render.ErrGameTerminated) {
		v.notifyError(NewCategorizedError(fmt.Errorf("render loop error: %w", err), ErrorCategoryRender, SeverityCritical))
	}
}
