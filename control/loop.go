package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/autodrome/avcore/spatialmath"
)

// Vehicle is the actuation interface the loop drives: a pose/telemetry
// source and a command sink.
type Vehicle interface {
	// State returns the current vehicle pose and forward speed.
	State(ctx context.Context) (*spatialmath.Transform, float64, error)
	// Apply sends one command to the actuators.
	Apply(ctx context.Context, cmd Command) error
}

// LoopConfig configures the periodic scheduler driving a mixer.
type LoopConfig struct {
	// Frequency is the control tick rate in Hz.
	Frequency float64 `json:"frequency"`
}

// Loop ticks a Mixer against a Vehicle at a fixed frequency. The mixer and
// its controllers stay synchronous and single-writer; the loop is the one
// goroutine calling them.
type Loop struct {
	mu                      sync.Mutex
	cfg                     LoopConfig
	mixer                   *Mixer
	vehicle                 Vehicle
	logger                  golog.Logger
	clock                   clock.Clock
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
	running                 bool
}

// NewLoop constructs a control loop. A nil clock defaults to wall time.
func NewLoop(logger golog.Logger, cfg LoopConfig, mixer *Mixer, vehicle Vehicle, clk clock.Clock) (*Loop, error) {
	if cfg.Frequency <= 0 || cfg.Frequency > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	if mixer == nil || vehicle == nil {
		return nil, errors.New("loop needs a mixer and a vehicle")
	}
	if clk == nil {
		clk = clock.New()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		cfg:       cfg,
		mixer:     mixer,
		vehicle:   vehicle,
		logger:    logger,
		clock:     clk,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// Start begins ticking in the background.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("control loop already running")
	}
	dt := time.Duration(float64(time.Second) / l.cfg.Frequency)
	ticker := l.clock.Ticker(dt)
	l.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer l.activeBackgroundWorkers.Done()
		defer ticker.Stop()
		for {
			select {
			case <-l.cancelCtx.Done():
				return
			case <-ticker.C:
			}
			l.tick(l.cancelCtx)
		}
	})
	l.running = true
	return nil
}

// tick runs one control step. Missing vehicle state means no frame this
// tick: the neutral command is substituted rather than acting on stale
// data.
func (l *Loop) tick(ctx context.Context) {
	pose, speed, err := l.vehicle.State(ctx)
	if err != nil {
		l.logger.Debugw("no vehicle state this tick", "error", err)
		if err := l.vehicle.Apply(ctx, NeutralCommand()); err != nil {
			l.logger.Errorw("cannot apply neutral command", "error", err)
		}
		return
	}
	cmd, err := l.mixer.Tick(pose, speed)
	if err != nil {
		l.logger.Errorw("control tick failed", "error", err)
		cmd = NeutralCommand()
	}
	if err := l.vehicle.Apply(ctx, cmd); err != nil {
		l.logger.Errorw("cannot apply command", "error", err)
	}
}

// Stop halts ticking and waits for the worker to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.cancel()
	l.activeBackgroundWorkers.Wait()
	l.running = false
}
