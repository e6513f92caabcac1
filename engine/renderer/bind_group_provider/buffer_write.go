package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Pending reports whether the write has a GPU buffer to land in.
func (w BufferWrite) Pending() bool {
	return w.Provider != nil && w.Provider.Buffer(w.Binding) != nil && len(w.Data) > 0
}
