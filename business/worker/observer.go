package worker

import (
	"time"

	"github.com/superfeelapi/goRaphael/foundation/metrics"
	"github.com/superfeelapi/goRaphael/foundation/pubsub"
	"github.com/superfeelapi/goRaphael/foundation/state"
)

// phaseWatcher reports a phase only when it differs from the last one it
// reported. The first poll always reports.
type phaseWatcher struct {
	state   *state.State
	last    state.Phase
	started bool
}

func (p *phaseWatcher) poll() (state.Phase, bool) {
	current := p.state.Get()
	if p.started && current == p.last {
		return current, false
	}
	p.started = true
	p.last = current
	return current, true
}

func (w *Worker) stateObserverOperation() {
	w.logger.Infow("worker: stateObserverOperation: G started")
	defer w.logger.Infow("worker: stateObserverOperation: G completed")

	watcher := phaseWatcher{state: w.state}

	ticker := time.NewTicker(w.config.ObserverInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			phase, changed := watcher.poll()
			if !changed {
				continue
			}
			metrics.PhaseChanges.WithLabelValues(phase.String()).Inc()
			if err := w.broker.Publish(phaseTopic, phase); err != nil {
				w.logger.Errorw("worker: stateObserverOperation", "ERROR", err)
			}

		case <-w.shut:
			w.logger.Infow("worker: stateObserverOperation: received shut signal")
			return
		}
	}
}

func (w *Worker) visualizerOperation(v Visualizer, sub *pubsub.Subscriber) {
	w.logger.Infow("worker: visualizerOperation: G started")
	defer w.logger.Infow("worker: visualizerOperation: G completed")

	defer w.broker.UnSubscribe(phaseTopic, sub)

	for {
		select {
		case data := <-sub.GetChannel():
			phase, ok := data.(state.Phase)
			if !ok {
				w.logger.Errorw("worker: visualizerOperation: unexpected payload", "payload", data)
				continue
			}
			v.OnPhaseChanged(phase)

		case <-w.shut:
			w.logger.Infow("worker: visualizerOperation: received shut signal")
			return
		}
	}
}
