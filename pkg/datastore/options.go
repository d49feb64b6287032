package datastore

// GetOption configures a ranged read.
type GetOption func(*GetOptions)

// GetOptions holds the resolved options of a Get call. The zero value
// reads the whole object from the start.
type GetOptions struct {
	// Offset is the first byte to read.
	Offset int64
	// Size is the number of bytes to read. Meaningful only when
	// HasSize is set; otherwise the read extends to the end of the
	// object.
	Size    int64
	HasSize bool
}

// WithOffset sets the first byte to read.
func WithOffset(offset int64) GetOption {
	return func(o *GetOptions) {
		o.Offset = offset
	}
}

// WithSize bounds the read to size bytes.
func WithSize(size int64) GetOption {
	return func(o *GetOptions) {
		o.Size = size
		o.HasSize = true
	}
}

// NewGetOptions resolves a list of options.
func NewGetOptions(opts ...GetOption) GetOptions {
	var o GetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate checks the option combination before any backend call.
func (o GetOptions) Validate() error {
	if o.Offset < 0 {
		return InvalidArgument("offset argument should be >= 0")
	}
	if o.HasSize && o.Size <= 0 {
		return InvalidArgument("size argument should be > 0")
	}
	return nil
}

// End returns the inclusive end index of the read, or -1 when the read
// extends to the end of the object.
func (o GetOptions) End() int64 {
	if !o.HasSize {
		return -1
	}
	return o.Offset + o.Size - 1
}

// RmOption configures a removal.
type RmOption func(*RmOptions)

// RmOptions holds the resolved options of a Rm call.
type RmOptions struct {
	// Recursive removes every object under the key prefix instead of
	// the single key.
	Recursive bool
	// MaxDepth bounds recursion depth. No store supports it; it is
	// carried only so the unsupported combination can be rejected.
	MaxDepth    int
	HasMaxDepth bool
}

// WithRecursive removes the whole prefix.
func WithRecursive() RmOption {
	return func(o *RmOptions) {
		o.Recursive = true
	}
}

// WithMaxDepth bounds recursion depth.
func WithMaxDepth(depth int) RmOption {
	return func(o *RmOptions) {
		o.MaxDepth = depth
		o.HasMaxDepth = true
	}
}

// NewRmOptions resolves a list of options.
func NewRmOptions(opts ...RmOption) RmOptions {
	var o RmOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate checks the option combination before any backend call.
func (o RmOptions) Validate() error {
	if o.HasMaxDepth {
		return NotImplemented("maxdepth is not supported")
	}
	return nil
}
