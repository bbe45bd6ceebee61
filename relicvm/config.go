package relicvm

import (
	"fmt"
	"strings"
)

type Config struct {
	HeapCapacity  int     `json:"heap_capacity"`
	GrowthFactor  float64 `json:"growth_factor"`
	GCThreshold   float64 `json:"gc_threshold"`
	StackCapacity int     `json:"stack_capacity"`
	Debug         string  `json:"debug"`
}

const ConfigSchema = `
runtime?: {
	heap_capacity?: int & >0
	growth_factor?: number & >1
	gc_threshold?: number & >0 & <=1
	stack_capacity?: int & >0
	debug?: "off" | "normal" | "next" | "step"
}
preload?: [...string]
`

func DefaultConfig() Config {
	return Config{
		HeapCapacity:  1024,
		GrowthFactor:  2,
		GCThreshold:   1,
		StackCapacity: 256,
		Debug:         "off",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HeapCapacity <= 0 {
		c.HeapCapacity = def.HeapCapacity
	}
	if c.GrowthFactor <= 1 {
		c.GrowthFactor = def.GrowthFactor
	}
	if c.GCThreshold <= 0 || c.GCThreshold > 1 {
		c.GCThreshold = def.GCThreshold
	}
	if c.StackCapacity <= 0 {
		c.StackCapacity = def.StackCapacity
	}
	if c.Debug == "" {
		c.Debug = def.Debug
	}
	return c
}

type DebugState int32

const (
	DebugOff DebugState = iota
	DebugNormal
	DebugNext
	DebugStep
)

func (d DebugState) String() string {
	switch d {
	case DebugOff:
		return "off"
	case DebugNormal:
		return "normal"
	case DebugNext:
		return "next"
	case DebugStep:
		return "step"
	}
	return fmt.Sprintf("debug(%d)", int32(d))
}

func ParseDebugState(str string) (DebugState, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "", "off":
		return DebugOff, nil
	case "normal":
		return DebugNormal, nil
	case "next":
		return DebugNext, nil
	case "step":
		return DebugStep, nil
	}
	return DebugOff, fmt.Errorf("unknown debug state: %s", str)
}
