package ports

// Segment is a read-only view of the producer's shared region.
type Segment interface {
	// Bytes returns the current contents. The producer may rewrite them
	// at any moment; callers copy before decoding.
	Bytes() []byte
	Close() error
}

type SegmentOpener interface {
	Open() (Segment, error)
}

// SegmentOpenerFunc adapts a function to SegmentOpener.
type SegmentOpenerFunc func() (Segment, error)

func (f SegmentOpenerFunc) Open() (Segment, error) { return f() }
