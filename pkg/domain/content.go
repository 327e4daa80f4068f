package domain

import "bytes"

// Content is the opaque paint payload of a node.
// The core never interprets pixel data; it only needs to copy it when a clone is
// reincarnated and to know whether a node contributes anything when computing the
// region to refresh after a removal.
type Content interface {
	// Snapshot returns an independent copy of the content as it is now.
	Snapshot() Content
	// BearsContent reports whether the node contributes pixels to the composition.
	BearsContent() bool
}

// Raster is a byte-backed Content implementation.
type Raster struct {
	Data []byte
}

// NewRaster copies data into a new Raster.
func NewRaster(data []byte) *Raster {
	return &Raster{Data: bytes.Clone(data)}
}

// Snapshot implements Content.
func (r *Raster) Snapshot() Content {
	if r == nil {
		return Empty
	}
	return NewRaster(r.Data)
}

// BearsContent implements Content.
func (r *Raster) BearsContent() bool {
	return r != nil && len(r.Data) > 0
}

// Bytes returns the raw payload of c when it is a Raster, or nil.
func Bytes(c Content) []byte {
	if r, ok := c.(*Raster); ok && r != nil {
		return r.Data
	}
	return nil
}

type emptyContent struct{}

func (emptyContent) Snapshot() Content  { return Empty }
func (emptyContent) BearsContent() bool { return false }

// Empty is the content of a dangling clone and of nodes without pixels.
var Empty Content = emptyContent{}
