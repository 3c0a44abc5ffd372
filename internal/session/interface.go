package session

// FileSink receives finished export files.
// The session depends on this interface, not on a concrete file manager.
//
//go:generate mockgen -destination=mocks/mock_sink.go -source=interface.go FileSink
type FileSink interface {
	// WriteFile stores data under name and returns where it was written.
	WriteFile(name string, data []byte) (string, error)
}
