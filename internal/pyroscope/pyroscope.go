package pyroscope

import (
	"context"
	"sort"
	"strings"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/logger"
	"github.com/grafana/pyroscope-go"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

// Service runs the continuous profiler and labels hot paths such as engine runs
type Service struct {
	cfg      *config.Configuration
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

var profileTypesByName = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// defaultProfileTypes cover parsing, which is CPU and allocation bound
var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
}

func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks starts the profiler on start and stops it on shutdown
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("pyroscope disabled")
				return nil
			}

			profiler, err := pyroscope.Start(svc.profilerConfig())
			if err != nil {
				svc.logger.Errorw("failed to start pyroscope", "error", err)
				return err
			}
			svc.logger.Infow("pyroscope started",
				"application_name", svc.cfg.Pyroscope.ApplicationName,
				"server_address", svc.cfg.Pyroscope.ServerAddress,
			)

			svc.profiler = profiler
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if svc.profiler == nil {
				return nil
			}
			return svc.profiler.Stop()
		},
	})
}

func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg.Pyroscope.Enabled
}

func (s *Service) profilerConfig() pyroscope.Config {
	pc := s.cfg.Pyroscope
	return pyroscope.Config{
		ApplicationName:   pc.ApplicationName,
		ServerAddress:     pc.ServerAddress,
		BasicAuthUser:     pc.BasicAuthUser,
		BasicAuthPassword: pc.BasicAuthPass,
		ProfileTypes:      s.profileTypes(),
		SampleRate:        pc.SampleRate,
		DisableGCRuns:     pc.DisableGCRuns,
		Tags:              map[string]string{"mode": string(s.cfg.Deployment.Mode)},
		Logger:            s,
	}
}

// profileTypes resolves configured names, skipping unknown ones
func (s *Service) profileTypes() []pyroscope.ProfileType {
	if len(s.cfg.Pyroscope.ProfileTypes) == 0 {
		return defaultProfileTypes
	}

	return lo.FilterMap(s.cfg.Pyroscope.ProfileTypes, func(name string, _ int) (pyroscope.ProfileType, bool) {
		pt, ok := profileTypesByName[strings.ToLower(name)]
		if !ok {
			s.logger.Warnw("unknown pyroscope profile type", "type", name)
		}
		return pt, ok
	})
}

// TagWrapper runs fn with profiling labels. Labels are applied in key order.
func (s *Service) TagWrapper(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if !s.IsEnabled() || len(labels) == 0 {
		fn(ctx)
		return
	}

	keys := lo.Keys(labels)
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, labels[k])
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// Debugf implements pyroscope.Logger. Profiler debug output is dropped.
func (s *Service) Debugf(format string, args ...interface{}) {}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("pyroscope: "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("pyroscope: "+format, args...)
}
