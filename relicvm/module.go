package relicvm

import (
	"github.com/reusee/dscope"
	"github.com/reusee/relic/configs"
	"github.com/reusee/relic/logs"
	"github.com/xyproto/env/v2"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}

func (Module) Config(
	files configs.Files,
) Config {
	loader := configs.NewLoader(files, ConfigSchema)
	config := DefaultConfig()
	if err := loader.AssignFirst("runtime", &config); err != nil && !configs.IsNotFound(err) {
		panic(err)
	}
	// the env cache is filled at init; hosts may set variables later
	env.Load()
	config.HeapCapacity = env.Int("RELIC_HEAP_CAPACITY", config.HeapCapacity)
	config.Debug = env.Str("RELIC_DEBUG", config.Debug)
	return config.withDefaults()
}

// Preload lists the packages to import before running, in file order.
type Preload []string

func (Module) Preload(
	files configs.Files,
) (ret Preload) {
	loader := configs.NewLoader(files, ConfigSchema)
	for names := range configs.All[[]string](loader, "preload") {
		ret = append(ret, names...)
	}
	return
}

func (Module) Runtime(
	config Config,
	logger logs.Logger,
) *Runtime {
	return New(config, logger)
}
