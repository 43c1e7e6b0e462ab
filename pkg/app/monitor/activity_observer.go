package monitor

import (
	"context"
	"sync/atomic"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
)

// activityObserver re-checks the session when the document comes back into
// view and flags a docked developer tools panel from the viewport geometry.
type activityObserver struct {
	monitor      *SecurityMonitor
	threshold    int
	devtoolsOpen atomic.Bool
}

func newActivityObserver(m *SecurityMonitor, threshold int) *activityObserver {
	return &activityObserver{monitor: m, threshold: threshold}
}

func (o *activityObserver) subscribe(ctx context.Context, window platform.Window) []func() {
	return []func(){
		window.OnVisibilityChange(func(visible bool) {
			if visible {
				o.monitor.CheckSession(ctx)
			}
		}),
		window.OnFocusChange(func(focused bool) {
			if focused {
				o.monitor.CheckSession(ctx)
			}
		}),
		window.OnResize(func(v platform.Viewport) {
			o.onResize(ctx, v)
		}),
	}
}

// onResize records one event per closed to open transition.
func (o *activityObserver) onResize(ctx context.Context, v platform.Viewport) {
	widthDelta := v.OuterWidth - v.InnerWidth
	heightDelta := v.OuterHeight - v.InnerHeight
	open := widthDelta > o.threshold || heightDelta > o.threshold

	if !open {
		o.devtoolsOpen.Store(false)
		return
	}
	if !o.devtoolsOpen.CompareAndSwap(false, true) {
		return
	}
	o.monitor.record(ctx, security.PartialEvent{
		Severity: security.Medium,
		Details: security.DevtoolsOpenedDetails{
			WidthDelta:  widthDelta,
			HeightDelta: heightDelta,
		},
	})
}
