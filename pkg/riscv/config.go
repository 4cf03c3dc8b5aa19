package riscv

// Config carries the parameters of a Machine instance. The zero value is
// not valid; use NewConfig, with Options as needed, to build one.
type Config struct {
	// Base is the fixed physical load address of the emulated image.
	Base uint32
	// MemSize is the size, in bytes, of the linear memory backing the
	// machine's address space [Base, Base+MemSize).
	MemSize uint32
	// TohostCSR is the CSR address the SYSTEM/CSRRW(I) path compares
	// against to recognize the riscv-tests termination convention.
	TohostCSR uint32
	// Trace, when true, causes Machine.Run to log one line per retired
	// instruction via the configured logger.
	Trace bool
}

const (
	// DefaultBase is the fixed physical load address riscv-tests images
	// are linked against.
	DefaultBase = 0x8000_0000
	// DefaultMemSize is the working default memory size (64 KiB).
	DefaultMemSize = 64 * 1024
	// DefaultTohostCSR is the tohost termination CSR address.
	DefaultTohostCSR = 0xC00
)

// Option mutates a Config being built by NewConfig.
type Option func(*Config)

// NewConfig returns the default Config (64 KiB of memory starting at
// 0x8000_0000, tohost at 0xC00) with any Options applied.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		Base:      DefaultBase,
		MemSize:   DefaultMemSize,
		TohostCSR: DefaultTohostCSR,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMemSize overrides the memory size.
func WithMemSize(size uint32) Option {
	return func(c *Config) { c.MemSize = size }
}

// WithBase overrides the base load address.
func WithBase(base uint32) Option {
	return func(c *Config) { c.Base = base }
}

// WithTrace enables per-instruction tracing.
func WithTrace(trace bool) Option {
	return func(c *Config) { c.Trace = trace }
}
