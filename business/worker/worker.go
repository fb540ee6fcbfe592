package worker

import (
	"context"
	"sync"
	"time"

	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/foundation/pubsub"
	"github.com/superfeelapi/goRaphael/foundation/speechgate"
	"github.com/superfeelapi/goRaphael/foundation/state"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultListenDuration   = 5 * time.Second
	defaultObserverInterval = 100 * time.Millisecond

	journalTimeout = 3 * time.Second

	phaseTopic = "phase"
)

type Worker struct {
	config Config
	state  *state.State
	logger *zap.SugaredLogger

	listener    Listener
	analyzer    Analyzer
	gate        *speechgate.Gate
	policy      *policy.Table
	face        FaceRenderer
	visualizers []Visualizer
	journal     Journal
	journalOn   atomic.Bool

	broker *pubsub.Broker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	shut   chan struct{}
	once   sync.Once

	faceCh chan faceUpdate
}

// Run starts the conversation loop and its observers. The loop runs until
// Shutdown is called.
func Run(s Settings) *Worker {
	if s.ListenDuration <= 0 {
		s.ListenDuration = defaultListenDuration
	}
	if s.ObserverInterval <= 0 {
		s.ObserverInterval = defaultObserverInterval
	}
	if s.Policy == nil {
		s.Policy = policy.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		config:      s.Config,
		state:       state.NewState(),
		logger:      s.Logger,
		listener:    s.Listener,
		analyzer:    s.Analyzer,
		gate:        speechgate.New(s.Synthesizer, s.Logger),
		policy:      s.Policy,
		face:        s.Face,
		visualizers: s.Visualizers,
		journal:     s.Journal,
		broker:      pubsub.NewBroker(),
		ctx:         ctx,
		cancel:      cancel,
		shut:        make(chan struct{}),
		faceCh:      make(chan faceUpdate, 8),
	}
	w.journalOn.Store(s.Journal != nil)

	operations := []func(){
		w.conversationOperation,
	}

	if w.face != nil {
		operations = append(operations, w.faceOperation)
	}

	if len(w.visualizers) > 0 {
		operations = append(operations, w.stateObserverOperation)

		// Subscribe before any goroutine starts so the first phase is not missed.
		for _, v := range w.visualizers {
			sub := pubsub.NewSubscriber(16)
			w.broker.Subscribe(phaseTopic, sub)

			v := v
			operations = append(operations, func() { w.visualizerOperation(v, sub) })
		}
	}

	g := len(operations)
	w.wg.Add(g)

	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return w
}

// State exposes the shared phase for read-only observers.
func (w *Worker) State() *state.State {
	return w.state
}

// Shutdown stops every operation and waits for them to return. In-flight
// collaborator calls see their context cancelled.
func (w *Worker) Shutdown() {
	w.once.Do(func() {
		w.logger.Infow("worker: shutdown: started")
		defer w.logger.Infow("worker: shutdown: completed")

		w.logger.Infow("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.cancel()

		w.wg.Wait()
	})
}

// =====================================================================================================================

func (w *Worker) showFace(expression string, status string) {
	if w.face == nil {
		return
	}
	select {
	case w.faceCh <- faceUpdate{expression: expression, status: status}:
	default:
		w.logger.Errorw("worker: showFace: face renderer is not keeping up, update dropped", "expression", expression, "status", status)
	}
}

func (w *Worker) faceOperation() {
	w.logger.Infow("worker: faceOperation: G started")
	defer w.logger.Infow("worker: faceOperation: G completed")

	for {
		select {
		case u := <-w.faceCh:
			w.face.UpdateFace(u.expression, u.status)

		case <-w.shut:
			w.logger.Infow("worker: faceOperation: received shut signal")
			return
		}
	}
}

// record journals a finished turn without holding up the loop. Shutdown waits
// for the write, so the journal is never used after its owner closes it.
func (w *Worker) record(rec TurnRecord) {
	if !w.journalOn.Load() {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()

		if err := w.journal.Produce(ctx, rec); err != nil {
			w.journalOn.Store(false)
			w.logger.Errorw("worker: record: journal disabled", "ERROR", err)
		}
	}()
}
